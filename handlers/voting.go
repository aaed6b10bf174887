// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"

	"github.com/danielhkuo/content-vote/auth"
	"github.com/danielhkuo/content-vote/cliparse"
	"github.com/danielhkuo/content-vote/middleware"
	"github.com/danielhkuo/content-vote/models"
	"github.com/danielhkuo/content-vote/voting"
)

// VoteCaster is implemented by *voting.Engine.
type VoteCaster interface {
	CastVote(ctx context.Context, req voting.CastRequest) (voting.Outcome, error)
}

type VotingHandler struct {
	engine VoteCaster
	cfg    cliparse.Config
}

func NewVotingHandler(engine VoteCaster, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{engine: engine, cfg: cfg}
}

// CastVote handles POST /polls/{id}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		reasonResponse(w, models.ReasonInvalidRequest)
		return
	}

	userID, ok := userFromToken(w, r, h.cfg.TokenSalt)
	if !ok {
		return
	}

	// Parse request
	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		reasonResponse(w, models.ReasonInvalidRequest)
		return
	}
	if req.OptionID == "" {
		reasonResponse(w, models.ReasonInvalidRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.StoreTimeout)
	defer cancel()

	out, err := h.engine.CastVote(ctx, voting.CastRequest{
		UserID:    userID,
		PollID:    pollID,
		OptionID:  req.OptionID,
		IP:        auth.HashIP(middleware.GetClientIP(r), h.cfg.TokenSalt),
		UserAgent: r.UserAgent(),
		Change:    req.Change,
	})
	if err != nil {
		// The engine has already logged the failure.
		errorResponse(w, err)
		return
	}
	if !out.Accepted {
		reasonResponse(w, out.Reason)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{
		VoteID:  out.VoteID,
		Changed: out.Changed,
	})
}
