package live

import (
	"context"
	"sync"

	"github.com/eringen/folio/auth"
	"github.com/eringen/folio/docstore"
)

// State is the read model as one client sees it.
type State struct {
	Snapshot
	IsAuthenticated bool
	User            *auth.User
}

// Viewer pairs the shared Layer with one client's authentication.
type Viewer struct {
	layer *Layer
	auth  Authenticator

	mu    sync.RWMutex
	user  *auth.User
	unsub func()
}

// NewViewer starts listening to a's auth state. Close removes the listener.
func NewViewer(layer *Layer, a Authenticator) *Viewer {
	v := &Viewer{layer: layer, auth: a}
	v.unsub = a.OnAuthStateChanged(func(u *auth.User) {
		v.mu.Lock()
		v.user = u
		v.mu.Unlock()
	})
	return v
}

// Layer returns the shared read model and its mutators.
func (v *Viewer) Layer() *Layer {
	return v.layer
}

// State returns the current snapshot and auth flag.
func (v *Viewer) State() State {
	v.mu.RLock()
	u := v.user
	v.mu.RUnlock()
	return State{
		Snapshot:        v.layer.Snapshot(),
		IsAuthenticated: u != nil,
		User:            u,
	}
}

// Login signs in and reports whether it worked. Failures are logged, never
// returned.
func (v *Viewer) Login(ctx context.Context, email, password string) bool {
	if _, err := v.auth.SignIn(ctx, email, password); err != nil {
		v.layer.log.Warn().Err(err).Msg("login failed")
		return false
	}
	return true
}

// Logout signs out in the background. The auth-state listener clears
// IsAuthenticated when it completes.
func (v *Viewer) Logout(ctx context.Context) *Op {
	return v.layer.write(ctx, "logout", docstore.Ref{}, func(ctx context.Context) error {
		return v.auth.SignOut(ctx)
	})
}

// Close removes the auth-state listener.
func (v *Viewer) Close() {
	if v.unsub != nil {
		v.unsub()
		v.unsub = nil
	}
}
