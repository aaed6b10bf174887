// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/content-vote/cliparse"
	"github.com/danielhkuo/content-vote/middleware"
	"github.com/danielhkuo/content-vote/models"
	"github.com/danielhkuo/content-vote/store"
)

// PollReader is implemented by *voting.Catalog.
type PollReader interface {
	Poll(ctx context.Context, pollID string) (models.PollWithOptions, error)
	ActiveByContent(ctx context.Context, contentType, contentKey string) ([]models.Poll, error)
}

// PollLifecycle is implemented by *voting.Lifecycle.
type PollLifecycle interface {
	Activate(ctx context.Context, pollID string) (models.Poll, error)
	Close(ctx context.Context, pollID string) (models.Poll, error)
}

type PollHandler struct {
	polls     PollReader
	lifecycle PollLifecycle
	users     store.Users
	cfg       cliparse.Config
}

func NewPollHandler(polls PollReader, lifecycle PollLifecycle, users store.Users, cfg cliparse.Config) *PollHandler {
	return &PollHandler{polls: polls, lifecycle: lifecycle, users: users, cfg: cfg}
}

// GetPoll handles GET /polls/{id}
// Returns the poll and its options in display order.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		reasonResponse(w, models.ReasonInvalidRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.StoreTimeout)
	defer cancel()

	poll, err := h.polls.Poll(ctx, pollID)
	if err != nil {
		errorResponse(w, err, "poll_id", pollID)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// ListActive handles GET /polls?content_type=&content_key=
func (h *PollHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	contentType := r.URL.Query().Get("content_type")
	contentKey := r.URL.Query().Get("content_key")
	if contentType == "" || contentKey == "" {
		reasonResponse(w, models.ReasonInvalidRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.StoreTimeout)
	defer cancel()

	polls, err := h.polls.ActiveByContent(ctx, contentType, contentKey)
	if err != nil {
		errorResponse(w, err, "content_type", contentType, "content_key", contentKey)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollListResponse{Polls: polls})
}

// ActivatePoll handles POST /polls/{id}/activate
// Requires an admin user token.
func (h *PollHandler) ActivatePoll(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "activate", h.lifecycle.Activate)
}

// ClosePoll handles POST /polls/{id}/close
// Requires an admin user token.
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "close", h.lifecycle.Close)
}

func (h *PollHandler) transition(w http.ResponseWriter, r *http.Request, action string,
	apply func(ctx context.Context, pollID string) (models.Poll, error)) {
	pollID := r.PathValue("id")
	if pollID == "" {
		reasonResponse(w, models.ReasonInvalidRequest)
		return
	}

	userID, ok := userFromToken(w, r, h.cfg.TokenSalt)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.StoreTimeout)
	defer cancel()

	// Verify the caller is a current admin
	user, found, err := h.users.FindUserByID(ctx, userID)
	if err != nil {
		slog.Error("failed to load admin user", "error", err, "user_id", userID)
		reasonResponse(w, models.ReasonStoreUnavailable)
		return
	}
	if !found {
		reasonResponse(w, models.ReasonUnauthorized)
		return
	}
	if !user.IsAdmin() || user.Banned {
		reasonResponse(w, models.ReasonForbidden)
		return
	}

	poll, err := apply(ctx, pollID)
	if err != nil {
		errorResponse(w, err, "poll_id", pollID, "action", action)
		return
	}

	slog.Info("poll transition applied", "poll_id", poll.ID, "action", action, "status", poll.Status, "admin_id", user.ID)

	middleware.JSONResponse(w, http.StatusOK, models.PollStatusResponse{
		PollID: poll.ID,
		Status: poll.Status,
	})
}
