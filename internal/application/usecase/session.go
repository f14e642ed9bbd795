// internal/application/usecase/session.go
package usecase

import "strings"

// SessionMode identifies which cart backend owns the current shopper's cart:
// a guest session (anonymous, Postgres) or an authenticated user (Firestore).
// Exactly one id is set; the usecases pick the repository from it instead of
// listening to auth state globally.
type SessionMode struct {
	userID    string
	sessionID string
}

func UserSession(userID string) SessionMode {
	return SessionMode{userID: strings.TrimSpace(userID)}
}

func GuestSession(sessionID string) SessionMode {
	return SessionMode{sessionID: strings.TrimSpace(sessionID)}
}

func (m SessionMode) IsUser() bool { return m.userID != "" }

// Key is the storage key: userId for authenticated sessions, session id for
// guests. Empty means the mode is unusable.
func (m SessionMode) Key() string {
	if m.userID != "" {
		return m.userID
	}
	return m.sessionID
}

func (m SessionMode) Valid() bool { return m.Key() != "" }
