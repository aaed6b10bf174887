// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// ReasonCode is an opaque machine-readable outcome identifier.
type ReasonCode string

const (
	ReasonUserNotFound    ReasonCode = "USER_NOT_FOUND"
	ReasonPollNotFound    ReasonCode = "POLL_NOT_FOUND"
	ReasonOptionNotInPoll ReasonCode = "OPTION_NOT_IN_POLL"

	ReasonUserBanned    ReasonCode = "USER_BANNED"
	ReasonPollNotActive ReasonCode = "POLL_NOT_ACTIVE"
	ReasonAlreadyVoted  ReasonCode = "ALREADY_VOTED"
	ReasonTooManyVotes  ReasonCode = "TOO_MANY_VOTES"

	// Boundary-only codes, never produced by the engine.
	ReasonInvalidRequest   ReasonCode = "INVALID_REQUEST"
	ReasonUnauthorized     ReasonCode = "UNAUTHORIZED"
	ReasonForbidden        ReasonCode = "FORBIDDEN"
	ReasonStoreUnavailable ReasonCode = "STORE_UNAVAILABLE"
)

type ReasonKind int

const (
	KindNone ReasonKind = iota
	KindNotFound
	KindDenied
	KindBoundary
)

// Kind classifies a code: not-found codes are caller errors that should not
// be retried, denials are normal policy outcomes.
func (c ReasonCode) Kind() ReasonKind {
	switch c {
	case "":
		return KindNone
	case ReasonUserNotFound, ReasonPollNotFound, ReasonOptionNotInPoll:
		return KindNotFound
	case ReasonUserBanned, ReasonPollNotActive, ReasonAlreadyVoted, ReasonTooManyVotes:
		return KindDenied
	default:
		return KindBoundary
	}
}

func (c ReasonCode) String() string {
	return string(c)
}
