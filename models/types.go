// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Poll status constants
const (
	StatusDraft  = "draft"
	StatusActive = "active"
	StatusClosed = "closed"
)

// Content type constants
const (
	ContentTypeMap = "map"
	ContentTypeMod = "mod"
)

// User role constants
const (
	RolePlayer = "player"
	RoleAdmin  = "admin"
)

// ValidStatus reports whether s is one of the three poll lifecycle states.
func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusActive || s == StatusClosed
}

// Domain types

type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	Banned       bool      `json:"banned" db:"banned"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Poll struct {
	ID             string     `json:"id" db:"id"`
	ContentType    string     `json:"content_type" db:"content_type"`
	ContentKey     string     `json:"content_key" db:"content_key"`
	TitleKey       string     `json:"title_key" db:"title_key"`
	DescriptionKey *string    `json:"description_key,omitempty" db:"description_key"`
	Status         string     `json:"status" db:"status"`
	StartsAt       *time.Time `json:"starts_at,omitempty" db:"starts_at"`
	EndsAt         *time.Time `json:"ends_at,omitempty" db:"ends_at"`
	CreatedBy      string     `json:"created_by" db:"created_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// IsActiveAt reports whether the poll accepts votes at now: status is active,
// the start (if any) has been reached and the end (if any) has not.
func (p Poll) IsActiveAt(now time.Time) bool {
	if p.Status != StatusActive {
		return false
	}
	if p.StartsAt != nil && now.Before(*p.StartsAt) {
		return false
	}
	if p.EndsAt != nil && !now.Before(*p.EndsAt) {
		return false
	}
	return true
}

type Option struct {
	ID       string `json:"id" db:"id"`
	PollID   string `json:"poll_id" db:"poll_id"`
	LabelKey string `json:"label_key" db:"label_key"`
	Position int    `json:"position" db:"position"`
	Active   bool   `json:"active" db:"active"`
}

type PollWithOptions struct {
	Poll    Poll     `json:"poll"`
	Options []Option `json:"options"`
}

type Vote struct {
	ID         string    `json:"id" db:"id"`
	PollID     string    `json:"poll_id" db:"poll_id"`
	OptionID   string    `json:"option_id" db:"option_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
	IPHash     *string   `json:"-" db:"ip_hash"`    // Never expose in JSON
	UserAgent  *string   `json:"-" db:"user_agent"` // Never expose in JSON
	ContextKey *string   `json:"-" db:"context_key"`
}

// VoteAttempt is one audit record of a cast, accepted or not.
type VoteAttempt struct {
	PollID    string
	UserID    string
	IPHash    string
	UserAgent string
	VoteID    *string
	Reason    *ReasonCode
	At        time.Time
}

// Results types

type PollSummary struct {
	ID          string `json:"id"`
	ContentType string `json:"content_type"`
	ContentKey  string `json:"content_key"`
	TitleKey    string `json:"title_key"`
	Status      string `json:"status"`
}

func SummaryOf(p Poll) PollSummary {
	return PollSummary{
		ID:          p.ID,
		ContentType: p.ContentType,
		ContentKey:  p.ContentKey,
		TitleKey:    p.TitleKey,
		Status:      p.Status,
	}
}

type OptionResult struct {
	OptionID string  `json:"option_id"`
	LabelKey string  `json:"label_key"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

type ResultsSummary struct {
	Poll        PollSummary        `json:"poll"`
	Counts      map[string]int     `json:"counts"`
	Total       int                `json:"total"`
	Percentages map[string]float64 `json:"percentages"`
	Options     []OptionResult     `json:"options"`
}

// Request types

type CastVoteRequest struct {
	OptionID string `json:"option_id"`
	Change   bool   `json:"change"`
}

// Response types

type CastVoteResponse struct {
	VoteID  string `json:"vote_id"`
	Changed bool   `json:"changed"`
}

type PollStatusResponse struct {
	PollID string `json:"poll_id"`
	Status string `json:"status"`
}

type PollListResponse struct {
	Polls []Poll `json:"polls"`
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
}
