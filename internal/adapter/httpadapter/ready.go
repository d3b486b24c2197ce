package httpadapter

import (
	"context"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// AllReady is ready when every non-nil checker is.
type AllReady []sharedobs.ReadinessChecker

// CheckReadiness returns the first failing check.
func (a AllReady) CheckReadiness(ctx context.Context) error {
	for _, c := range a {
		if c == nil {
			continue
		}
		if err := c.CheckReadiness(ctx); err != nil {
			return err
		}
	}
	return nil
}
