package external

import "context"

// AnonymousName is shown when a profile is missing or a sender hides their identity
const AnonymousName = "Someone"

// ProfileReader is a read-only view over the identity store
type ProfileReader interface {
	// DisplayName returns the user's display name, or AnonymousName when unknown
	DisplayName(ctx context.Context, userID uint64) (string, error)
}
