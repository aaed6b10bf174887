// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the content voting API.

# Handler Types

Each handler is a struct over an interface from the voting package plus the
config:

  - VotingHandler: vote casting (VoteCaster, i.e. *voting.Engine)
  - ResultsHandler: live results (ResultsReader, i.e. *voting.Aggregator)
  - PollHandler: poll lookups and admin transitions (PollReader, PollLifecycle)

	votingHandler := handlers.NewVotingHandler(engine, cfg)

Every handler bounds its store work with cfg.StoreTimeout.

# Endpoints

	POST /polls/{id}/votes    → CastVote ({option_id, change})
	GET  /polls/{id}/results  → GetResults
	GET  /polls/{id}          → GetPoll
	GET  /polls?content_type=&content_key= → ListActive
	POST /polls/{id}/activate → ActivatePoll (admin)
	POST /polls/{id}/close    → ClosePoll (admin)

Authenticated endpoints require the X-User-Token header (see package auth).

# Errors

Error bodies are {"error": CODE}. StatusFor maps each reason code to its
status: not-found codes to 404, USER_BANNED and FORBIDDEN to 403,
POLL_NOT_ACTIVE and ALREADY_VOTED to 409, TOO_MANY_VOTES to 429, and store
failures to 503 with STORE_UNAVAILABLE.
*/
package handlers
