// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/content-vote/auth"
	"github.com/danielhkuo/content-vote/middleware"
	"github.com/danielhkuo/content-vote/models"
)

// userFromToken verifies the X-User-Token header and returns the user id it
// names. On failure it writes 401 and returns false.
func userFromToken(w http.ResponseWriter, r *http.Request, salt string) (string, bool) {
	token := r.Header.Get(middleware.UserTokenHeader)
	if token == "" {
		reasonResponse(w, models.ReasonUnauthorized)
		return "", false
	}
	userID, err := auth.ParseUserToken(token, salt)
	if err != nil {
		reasonResponse(w, models.ReasonUnauthorized)
		return "", false
	}
	return userID, true
}
