// Package session holds the client-local state that survives across
// fetches: the authenticated user, the currently selected agent, and the
// presence of a bearer token. Everything else is immutable snapshots.
package session

import "github.com/arena-dashboard/pkg/api"

// TokenStore is the durable side of the session. Token reads always go
// through it so a restarted client rehydrates its auth state.
type TokenStore interface {
	Token() (string, bool)
	SetToken(token string) error
	ClearToken() error
}

type Session struct {
	store TokenStore

	currentUser   *api.UserProfile
	selectedAgent string
}

func New(store TokenStore) *Session {
	return &Session{store: store}
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.store.Token()
	return ok
}

// Token implements api.Credentials.
func (s *Session) Token() (string, bool) {
	return s.store.Token()
}

func (s *Session) SetToken(token string) {
	_ = s.store.SetToken(token)
}

// Clear drops the token and the decoded user. The terms-accepted preference
// lives in the store and is untouched.
func (s *Session) Clear() {
	_ = s.store.ClearToken()
	s.currentUser = nil
}

func (s *Session) SetCurrentUser(u *api.UserProfile) {
	s.currentUser = u
}

// CurrentUser is nil whenever no token is present: a decoded profile without
// a credential is never valid UI state.
func (s *Session) CurrentUser() *api.UserProfile {
	if !s.IsAuthenticated() {
		return nil
	}
	return s.currentUser
}

func (s *Session) SetSelectedAgent(id string) {
	s.selectedAgent = id
}

func (s *Session) ClearSelectedAgent() {
	s.selectedAgent = ""
}

// SelectedAgent returns the selected agent id, or false when no agent
// context is active.
func (s *Session) SelectedAgent() (string, bool) {
	return s.selectedAgent, s.selectedAgent != ""
}
