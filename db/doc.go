// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens database connections and creates the schema.

# Connections

Open supports two database types:

  - sqlite: modernc.org/sqlite (pure Go), used by default and in tests
  - postgres: github.com/lib/pq

	conn, err := db.Open(ctx, db.TypeSQLite, "votes.db")

SQLite connections are limited to a single open connection and get
foreign_keys and busy_timeout pragmas.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - app_user: users (role, banned flag)
  - poll: poll metadata and lifecycle state
  - option: options per poll, ordered by position
  - vote: one vote per (user_id, poll_id), constraint uq_vote_user_poll
  - vote_log: append-only vote attempt audit

# Relationships

	poll 1──* option
	poll 1──* vote
	app_user 1──* vote
	option 1──* vote

# Indexes

  - poll.(content_type, content_key, status)
  - option.poll_id
  - vote.(poll_id, option_id) for grouped counts
  - vote.(user_id, updated_at) for recent-vote counts
  - vote_log.poll_id
*/
package db
