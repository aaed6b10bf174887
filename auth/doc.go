// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides user token signing and IP hashing.

# User Tokens

A user token is the user id and an HMAC-SHA256 of it, both URL-safe base64
encoded without padding and joined by a dot:

	token := auth.SignUserToken(userID, salt)
	userID, err := auth.ParseUserToken(token, salt)

Tokens are deterministic, so they can be verified without storing them.
Clients send them in the X-User-Token header. Whether the user exists, is
banned or is an admin is decided against the store, not the token.

# IP Hashing

For privacy-preserving audit records:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256. Raw addresses are
never stored.
*/
package auth
