// Package sqlxrepos implements the domain repository interfaces against
// Postgres via sqlx.
package sqlxrepos

import (
	"fmt"

	"github.com/ispeaktu/backend/core"
)

// unavailable tags a driver error as remote-store unavailability so the
// services can degrade to cached data.
func unavailable(err error, op string) error {
	return fmt.Errorf("%s: %v: %w", op, err, core.ErrDataUnavailable)
}
