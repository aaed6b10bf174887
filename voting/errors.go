// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"errors"
	"fmt"

	"github.com/danielhkuo/content-vote/models"
)

// ErrStore marks infrastructure failures. Callers may retry an operation
// that failed with it; domain outcomes never wrap it.
var ErrStore = errors.New("vote store failure")

// Rejection carries a reason code out of operations whose only result type
// is an error (results reads, lifecycle transitions).
type Rejection struct {
	Reason models.ReasonCode
}

func (r *Rejection) Error() string {
	return "rejected: " + string(r.Reason)
}

func reject(reason models.ReasonCode) error {
	return &Rejection{Reason: reason}
}

// ReasonOf extracts the reason code from a Rejection anywhere in err's chain.
func ReasonOf(err error) (models.ReasonCode, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason, true
	}
	return "", false
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
