package auth

import (
	"context"
	"sync"
)

// Session is one client's authentication state.
type Session struct {
	provider *Provider

	mu        sync.Mutex
	user      *User
	token     string
	listeners map[int]func(*User)
	nextID    int
}

// NewSession returns a signed-out session backed by p.
func NewSession(p *Provider) *Session {
	return &Session{
		provider:  p,
		listeners: make(map[int]func(*User)),
	}
}

// Restore signs the session in from a previously issued token. It reports
// whether the token was valid; an invalid token leaves the session signed out.
func (s *Session) Restore(token string) bool {
	if token == "" {
		return false
	}
	u, err := s.provider.ParseToken(token)
	if err != nil {
		return false
	}
	s.set(&u, token)
	return true
}

// SignIn verifies the credentials and signs the session in.
func (s *Session) SignIn(ctx context.Context, email, password string) (Credential, error) {
	u, err := s.provider.Verify(ctx, email, password)
	if err != nil {
		return Credential{}, err
	}
	token, exp, err := s.provider.IssueToken(u)
	if err != nil {
		return Credential{}, err
	}
	s.set(&u, token)
	return Credential{User: u, Token: token, ExpiresAt: exp}, nil
}

// SignOut clears the session.
func (s *Session) SignOut(ctx context.Context) error {
	s.set(nil, "")
	return nil
}

// OnAuthStateChanged calls fn with the current user right away and again
// after every sign-in or sign-out. A nil user means signed out.
func (s *Session) OnAuthStateChanged(fn func(*User)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	current := copyUser(s.user)
	s.mu.Unlock()

	fn(current)
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// User returns the signed-in user or nil.
func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.user)
}

// Token returns the session token, empty when signed out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) set(u *User, token string) {
	s.mu.Lock()
	s.user = copyUser(u)
	s.token = token
	fns := make([]func(*User), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(copyUser(u))
	}
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
