// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package policy decides whether a vote attempt is admissible.

Decide is a pure function of its Input: no I/O, no clock reads. Checks run
in a fixed order and the first failing one wins:

 1. user banned        → USER_BANNED
 2. poll not active    → POLL_NOT_ACTIVE
 3. existing vote      → ALREADY_VOTED (skipped when ChangeRequested)
 4. recent votes ≥ max → TOO_MANY_VOTES
 5. otherwise allowed

	p := policy.New(10)
	d := p.Decide(policy.Input{User: u, Poll: poll, Now: now})
*/
package policy
