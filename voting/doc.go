// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting casts votes on content polls and tallies them.

# Casting

Engine.CastVote resolves the user, poll and option, asks the eligibility
policy, then inserts a vote or moves an existing one:

	out, err := engine.CastVote(ctx, voting.CastRequest{
		UserID:   userID,
		PollID:   pollID,
		OptionID: optionID,
		Change:   true,
	})

A request that cannot be honoured returns Outcome{Reason: code} and a nil
error. A non-nil error always wraps ErrStore and means the store failed;
nothing about the vote can be inferred from it.

At most one vote exists per (user, poll). The store enforces this with a
unique constraint, so two concurrent first votes end with one row: the loser
is rejected with ALREADY_VOTED, or folded into a change when Change is set.

Every completed attempt is handed to the audit sink. Audit failures are
logged and do not affect the outcome.

# Results

Aggregator.Results returns per-option counts, the total and percentages
rounded to two decimals. Options with no votes are listed with a zero count.
Percentages are omitted when nobody has voted.

# Lifecycle and Catalog

Lifecycle moves polls between draft, active and closed. Catalog looks up a
poll with its options, or the polls currently open for a content item.
*/
package voting
