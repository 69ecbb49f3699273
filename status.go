package titan

import "context"

// Usage is a message quota snapshot.
type Usage struct {
	Used      int
	Limit     int
	Remaining int
}

// UserStatus describes who the service thinks the client is.
type UserStatus struct {
	LoggedIn bool
	// Anonymous is true for a guest session with a message quota.
	Anonymous bool
	// NeedsSession is true when no server session exists yet.
	NeedsSession bool
	SessionID    string
	Plan         string
	Features     []string
	Usage        Usage
}

// HasFeature reports whether the user's plan includes feature.
func (s UserStatus) HasFeature(feature string) bool {
	for _, f := range s.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// StatusChecker is implemented by clients that can report the user's plan
// and quota.
type StatusChecker interface {
	UserStatus(ctx context.Context) (UserStatus, error)
}
