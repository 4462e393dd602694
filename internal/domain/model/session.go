package model

import "time"

// IdleThreshold is how long a session may go without user activity before it
// is considered expired.
const IdleThreshold = 15 * time.Minute

// SessionState is derived from credential presence and activity age. It is
// never stored.
type SessionState string

const (
	SessionValid   SessionState = "valid"
	SessionExpired SessionState = "expired"
	SessionAbsent  SessionState = "absent"
)

// IsIdle reports whether a session last active at lastActivity has exceeded
// IdleThreshold at now. A zero lastActivity means no activity was ever
// recorded and is always idle. The threshold itself is still active.
func IsIdle(now, lastActivity time.Time) bool {
	if lastActivity.IsZero() {
		return true
	}
	return now.Sub(lastActivity) > IdleThreshold
}

// EvaluateSession computes the SessionState without touching storage.
func EvaluateSession(now, lastActivity time.Time, hasCredential bool) SessionState {
	if !hasCredential {
		return SessionAbsent
	}
	if IsIdle(now, lastActivity) {
		return SessionExpired
	}
	return SessionValid
}
