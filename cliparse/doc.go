// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL connection string or SQLite path (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - TokenSalt: Secret for user token signing and IP hashing (required)
  - MaxVotesPerInterval: Votes a user may write per interval (default: 10)
  - VoteInterval: Rate limit window (default: 1h)
  - StoreTimeout: Deadline for each request's store work (default: 5s)
  - LogLevel, LogFile: Logger settings (default: info, stdout)

# Environment Variables

Flags fall back to environment variables:

	PORT                   → -p
	DATABASE_URL           → -d
	DATABASE_TYPE          → -t
	TOKEN_SALT             → -token-salt
	MAX_VOTES_PER_INTERVAL → -max-votes
	VOTE_INTERVAL          → -vote-interval
	STORE_TIMEOUT          → -store-timeout
	LOG_LEVEL              → -log-level
	LOG_FILE               → -log-file

CLI flags take precedence over environment variables. Before falling back,
ParseFlags loads a .env file (path set by -env) with godotenv; variables that
are already set are left alone, and a missing file is ignored.

# Validation

ParseFlags returns an error if required values are missing or malformed:

  - DATABASE_URL must be provided
  - TOKEN_SALT must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - numeric and duration values must parse and be positive
*/
package cliparse
