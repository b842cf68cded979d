package apiclient

import (
	"context"

	"github.com/hongminglow/fincontrol-be/internal/client"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/models/dto"
)

// SignIn exchanges credentials for a session and notifies subscribers.
func (c *Client) SignIn(ctx context.Context, email, password string) (*client.Session, error) {
	var out dto.LoginResponse
	if err := c.do(ctx, "POST", "/login", dto.LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	s := &client.Session{UserID: out.Profile.ID, Email: out.Profile.Email, Token: out.Token}
	c.Restore(s)
	return s, nil
}

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, name, email, password string) (models.Profile, error) {
	var out models.Profile
	err := c.do(ctx, "POST", "/register", dto.RegisterRequest{Name: name, Email: email, Password: password}, &out)
	return out, err
}

// Restore installs a previously issued session, for example one loaded from
// local preferences, and notifies subscribers.
func (c *Client) Restore(s *client.Session) {
	c.mu.Lock()
	if s != nil {
		cp := *s
		s = &cp
	}
	c.session = s
	c.mu.Unlock()
	c.notify(s)
}

// SignOut drops the session. Tokens are stateless, so nothing is sent.
func (c *Client) SignOut(context.Context) error {
	c.mu.Lock()
	had := c.session != nil
	c.session = nil
	c.mu.Unlock()
	if had {
		c.notify(nil)
	}
	return nil
}

// Session returns the current session, if any.
func (c *Client) Session() (client.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return client.Session{}, false
	}
	return *c.session, true
}

// Subscribe registers fn for session changes.
func (c *Client) Subscribe(fn func(*client.Session)) func() {
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

func (c *Client) notify(s *client.Session) {
	c.mu.RLock()
	fns := make([]func(*client.Session), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()
	for _, fn := range fns {
		var arg *client.Session
		if s != nil {
			cp := *s
			arg = &cp
		}
		fn(arg)
	}
}

var _ client.Authenticator = (*Client)(nil)
