// Package session owns the authentication state machine that gates
// access to the console.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/osaleh/aidesk/internal/api"
	"github.com/osaleh/aidesk/internal/credentials"
)

// Status is the authentication state of the console.
type Status int

const (
	// StatusUnknown is the initial state, before startup rehydration
	// has run. It is an explicit loading state, never treated as
	// unauthenticated.
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Controller is the single writer of the credential store. All other
// components observe session state through Status, User or Subscribe.
type Controller struct {
	store  *credentials.Store
	client *api.Client
	logger *zap.Logger

	mu      sync.RWMutex
	status  Status
	user    *api.User
	subs    map[int]func(Status)
	nextSub int
}

// NewController creates a controller in StatusUnknown. Call Init before
// any guard decision.
func NewController(store *credentials.Store, client *api.Client, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:  store,
		client: client,
		logger: logger,
		status: StatusUnknown,
		subs:   make(map[int]func(Status)),
	}
}

// Init rehydrates the session from the credential store. Token and user
// both present means authenticated; anything else means not.
func (c *Controller) Init() {
	if _, user, ok := c.store.Session(); ok {
		c.logger.Debug("session rehydrated", zap.String("email", user.Email))
		c.set(StatusAuthenticated, user)
		return
	}
	c.set(StatusUnauthenticated, nil)
}

// Login authenticates the operator. On success the credential payload
// is persisted and the state moves to authenticated. On failure the
// state is left unchanged and the error carries the backend's message.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	resp, err := c.client.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		c.logger.Debug("login rejected", zap.String("email", email), zap.Error(err))
		return err
	}
	return c.establish(resp)
}

// Signup creates a company account. Same resulting transition as Login.
func (c *Controller) Signup(ctx context.Context, req api.SignupRequest) error {
	resp, err := c.client.Signup(ctx, req)
	if err != nil {
		return err
	}
	return c.establish(resp)
}

func (c *Controller) establish(resp *api.AuthResponse) error {
	if err := c.store.SetSession(resp.AccessToken, resp.User); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	user := resp.User
	c.set(StatusAuthenticated, &user)
	c.logger.Info("session established", zap.String("email", user.Email))
	return nil
}

// Logout clears the credential store and moves to unauthenticated,
// unconditionally and idempotently. The state transition happens even
// if removing the stored file fails.
func (c *Controller) Logout() error {
	err := c.store.ClearSession()
	c.set(StatusUnauthenticated, nil)
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}

// HandleAuthRejected is the cross-cutting reaction to a 401 from any
// authenticated call: the stored token is no longer good, so the
// session ends exactly as with Logout.
func (c *Controller) HandleAuthRejected() {
	c.logger.Warn("backend rejected session token, logging out")
	if err := c.Logout(); err != nil {
		c.logger.Warn("clearing rejected session", zap.Error(err))
	}
}

// Status returns the current authentication state.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// User returns the current operator snapshot when authenticated.
func (c *Controller) User() (api.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return api.User{}, false
	}
	return *c.user, true
}

// Subscribe registers fn to be called on every status change. The
// returned function cancels the subscription.
func (c *Controller) Subscribe(fn func(Status)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Controller) set(status Status, user *api.User) {
	c.mu.Lock()
	changed := c.status != status
	c.status = status
	c.user = user
	var notify []func(Status)
	if changed {
		notify = make([]func(Status), 0, len(c.subs))
		for _, fn := range c.subs {
			notify = append(notify, fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range notify {
		fn(status)
	}
}
