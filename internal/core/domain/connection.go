package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Connection is one configured server endpoint.
type Connection struct {
	Server              string               `json:"server"`
	UserID              *uuid.UUID           `json:"user"`
	Username            string               `json:"username"`
	DefaultSubscription *string              `json:"default_subscription"`
	Subscriptions       map[string]uuid.UUID `json:"subscriptions"`
	Auth                *AuthData            `json:"auth"`
}

// User is the identity reported by the whoami endpoint.
type User struct {
	UserID   uuid.UUID `json:"userId"`
	UserName string    `json:"userName"`
}

// Subscription is an account the user can query, as listed by the server.
type Subscription struct {
	Permissions []string  `json:"permissions"`
	AccountID   uuid.UUID `json:"accountId"`
	AccountName string    `json:"accountName"`
}

// NewConnection creates an unauthenticated connection to server.
func NewConnection(server string) *Connection {
	return &Connection{
		Server:        strings.TrimSpace(server),
		Subscriptions: map[string]uuid.UUID{},
	}
}

// BaseURL returns the server URL without a trailing slash.
func (c *Connection) BaseURL() string {
	return strings.TrimRight(c.Server, "/")
}

// IsAuthenticated reports whether a credential is stored.
func (c *Connection) IsAuthenticated() bool {
	return c.Auth.Kind() != AuthKindNone
}

// BearerToken returns the stored secret, or "" when unauthenticated.
func (c *Connection) BearerToken() string {
	return c.Auth.BearerToken()
}

// SetIdentity records the whoami result.
func (c *Connection) SetIdentity(user User) {
	id := user.UserID
	c.UserID = &id
	c.Username = user.UserName
}

// SetSubscriptions replaces the subscription set. The default pointer is
// kept when it still names a subscription, otherwise it moves to the first
// subscription by name.
func (c *Connection) SetSubscriptions(subs []Subscription) {
	c.Subscriptions = make(map[string]uuid.UUID, len(subs))
	for _, s := range subs {
		c.Subscriptions[s.AccountName] = s.AccountID
	}
	if c.DefaultSubscription != nil {
		if _, ok := c.Subscriptions[*c.DefaultSubscription]; ok {
			return
		}
	}
	names := c.SubscriptionNames()
	if len(names) == 0 {
		c.DefaultSubscription = nil
		return
	}
	first := names[0]
	c.DefaultSubscription = &first
}

// SubscriptionNames returns the subscription names in lexicographic order.
func (c *Connection) SubscriptionNames() []string {
	names := make([]string, 0, len(c.Subscriptions))
	for name := range c.Subscriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveDefaultSubscription returns the recorded default subscription, or
// the lexicographically-first one when the recorded default is absent.
func (c *Connection) ResolveDefaultSubscription() (string, uuid.UUID, bool) {
	if c.DefaultSubscription != nil {
		if id, ok := c.Subscriptions[*c.DefaultSubscription]; ok {
			return *c.DefaultSubscription, id, true
		}
	}
	names := c.SubscriptionNames()
	if len(names) == 0 {
		return "", uuid.Nil, false
	}
	return names[0], c.Subscriptions[names[0]], true
}

// SelectSubscription makes the subscription named or identified by
// nameOrID the default.
func (c *Connection) SelectSubscription(nameOrID string) (string, error) {
	if _, ok := c.Subscriptions[nameOrID]; ok {
		name := nameOrID
		c.DefaultSubscription = &name
		return name, nil
	}
	if id, err := uuid.Parse(nameOrID); err == nil {
		for name, subID := range c.Subscriptions {
			if subID == id {
				n := name
				c.DefaultSubscription = &n
				return n, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrSubscriptionNotFound, nameOrID)
}

// Clone returns a deep copy.
func (c *Connection) Clone() *Connection {
	if c == nil {
		return nil
	}
	out := *c
	if c.UserID != nil {
		id := *c.UserID
		out.UserID = &id
	}
	if c.DefaultSubscription != nil {
		s := *c.DefaultSubscription
		out.DefaultSubscription = &s
	}
	if c.Subscriptions != nil {
		out.Subscriptions = make(map[string]uuid.UUID, len(c.Subscriptions))
		for k, v := range c.Subscriptions {
			out.Subscriptions[k] = v
		}
	}
	out.Auth = c.Auth.clone()
	return &out
}

func (a *AuthData) clone() *AuthData {
	if a == nil {
		return nil
	}
	out := &AuthData{}
	if a.Jwt != nil {
		j := *a.Jwt
		if a.Jwt.Expires != nil {
			t := *a.Jwt.Expires
			j.Expires = &t
		}
		out.Jwt = &j
	}
	if a.OAuth != nil {
		o := *a.OAuth
		o.Scopes = append([]string(nil), a.OAuth.Scopes...)
		if a.OAuth.Token.ExpiresIn != nil {
			n := *a.OAuth.Token.ExpiresIn
			o.Token.ExpiresIn = &n
		}
		out.OAuth = &o
	}
	return out
}

// String renders the connection for log lines. Secrets are never included.
func (c *Connection) String() string {
	user := "none"
	if c.UserID != nil {
		user = c.UserID.String()
	}
	sub := "none"
	if name, _, ok := c.ResolveDefaultSubscription(); ok {
		sub = name
	}
	return fmt.Sprintf("Server: %s; User: %s; Default Subscription: %s", c.Server, user, sub)
}
