// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrInvalidSignature = errors.New("invalid token signature")
)

func sign(userID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(userID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner tokens
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// SignUserToken issues the bearer token the HTTP layer accepts in place of a
// login session: the user id and its HMAC, separated by a dot.
// This is deterministic and verifiable without storage.
func SignUserToken(userID, salt string) string {
	encoded := strings.TrimRight(base64.URLEncoding.EncodeToString([]byte(userID)), "=")
	return encoded + "." + sign(userID, salt)
}

// ParseUserToken verifies a token from SignUserToken and returns its user id.
func ParseUserToken(token, salt string) (string, error) {
	encoded, mac, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || mac == "" {
		return "", ErrInvalidToken
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(raw) == 0 {
		return "", ErrInvalidToken
	}
	userID := string(raw)
	if !hmac.Equal([]byte(mac), []byte(sign(userID, salt))) {
		return "", ErrInvalidSignature
	}
	return userID, nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	if ip == "" {
		return ""
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
