// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/content-vote/middleware"
	"github.com/danielhkuo/content-vote/models"
	"github.com/danielhkuo/content-vote/voting"
)

// StatusFor maps a reason code to the HTTP status it is reported with.
func StatusFor(code models.ReasonCode) int {
	switch code {
	case models.ReasonUserNotFound, models.ReasonPollNotFound, models.ReasonOptionNotInPoll:
		return http.StatusNotFound
	case models.ReasonUserBanned, models.ReasonForbidden:
		return http.StatusForbidden
	case models.ReasonPollNotActive, models.ReasonAlreadyVoted:
		return http.StatusConflict
	case models.ReasonTooManyVotes:
		return http.StatusTooManyRequests
	case models.ReasonInvalidRequest:
		return http.StatusBadRequest
	case models.ReasonUnauthorized:
		return http.StatusUnauthorized
	case models.ReasonStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func reasonResponse(w http.ResponseWriter, code models.ReasonCode) {
	middleware.ErrorResponse(w, StatusFor(code), code)
}

// errorResponse reports an error from the voting package. Rejections carry
// their code; everything else is a store failure and is logged here.
func errorResponse(w http.ResponseWriter, err error, attrs ...any) {
	if code, ok := voting.ReasonOf(err); ok {
		reasonResponse(w, code)
		return
	}
	if !errors.Is(err, voting.ErrStore) {
		slog.Error("unexpected handler error", append(attrs, "error", err)...)
	}
	reasonResponse(w, models.ReasonStoreUnavailable)
}
