// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types shared by the
voting engine, the store, and the HTTP adapter.

# Domain Types

  - User: identity, role, banned flag (the engine reads only ID and Banned)
  - Poll: content classification, opaque title/description keys, lifecycle
    status and optional StartsAt/EndsAt window
  - Option: one selectable answer, ordered by Position
  - Vote: one user's choice for a poll; unique per (user, poll)
  - VoteAttempt: audit record of a cast attempt

A poll is effectively active only when Status is active and now lies in
[StartsAt, EndsAt). See Poll.IsActiveAt.

# Reason Codes

Outcomes are reported as opaque ReasonCode values, never as human text:

	USER_NOT_FOUND, POLL_NOT_FOUND, OPTION_NOT_IN_POLL   (KindNotFound)
	USER_BANNED, POLL_NOT_ACTIVE, ALREADY_VOTED,
	TOO_MANY_VOTES                                        (KindDenied)

# Results

ResultsSummary carries integer Counts per option (authoritative), the Total,
and informational Percentages rounded to two decimals.

# Constants

Status values:

	StatusDraft  = "draft"
	StatusActive = "active"
	StatusClosed = "closed"

Roles:

	RolePlayer = "player"
	RoleAdmin  = "admin"
*/
package models
