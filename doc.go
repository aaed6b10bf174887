// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the content-vote API server.

content-vote runs single-choice polls attached to user-generated content
(maps, mods). Each user casts at most one vote per poll, may change it while
the poll is active, and everyone can read live per-option results.

# Starting the Server

Configuration comes from the environment, an optional .env file, or flags:

	DATABASE_URL=votes.db TOKEN_SALT=... go run .

	go run . -p 3318 -t postgres -d "postgres://..." -token-salt ...

# Configuration

Required settings:

  - DATABASE_URL (-d): Connection string or SQLite path
  - TOKEN_SALT (-token-salt): Secret for user token signatures and IP hashing

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - MAX_VOTES_PER_INTERVAL (-max-votes): Rate limit (default: 10)
  - VOTE_INTERVAL (-vote-interval): Rate limit window (default: 1h)
  - STORE_TIMEOUT (-store-timeout): Per-request store deadline (default: 5s)
  - LOG_LEVEL (-log-level), LOG_FILE (-log-file): JSON logging, rotated when a file is set

# Architecture

  - voting: Vote casting engine, results aggregator, poll lifecycle
  - policy: Ordered eligibility checks
  - store: Store contract with SQL and in-memory implementations
  - handlers, router, middleware: HTTP surface
  - metrics: Prometheus counters
  - db, models, auth, cliparse, logging: supporting packages

See package documentation for each component.
*/
package main
