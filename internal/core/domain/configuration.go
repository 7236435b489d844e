package domain

import (
	"fmt"
	"sort"
)

// Configuration is the persisted set of named connections.
type Configuration struct {
	DefaultConnection string                 `json:"default_connection"`
	Connections       map[string]*Connection `json:"connections"`
}

// NamedConnection pairs a connection with its configuration key.
type NamedConnection struct {
	Name       string
	Connection *Connection
}

// DefaultResolution is the outcome of resolving the default connection.
// Stale is set when the recorded default name did not match any entry and
// a fallback was chosen.
type DefaultResolution struct {
	NamedConnection
	Stale bool
}

// NewConfiguration returns an empty configuration.
func NewConfiguration() *Configuration {
	return &Configuration{Connections: map[string]*Connection{}}
}

// Names returns the connection names in lexicographic order.
func (c *Configuration) Names() []string {
	names := make([]string, 0, len(c.Connections))
	for name := range c.Connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named connection.
func (c *Configuration) Get(name string) (*Connection, bool) {
	conn, ok := c.Connections[name]
	return conn, ok && conn != nil
}

// ResolveDefault returns the connection named by DefaultConnection, or the
// connection with the smallest name when that name is stale. It returns
// false only when there are no connections.
func (c *Configuration) ResolveDefault() (DefaultResolution, bool) {
	if conn, ok := c.Get(c.DefaultConnection); ok {
		return DefaultResolution{NamedConnection: NamedConnection{Name: c.DefaultConnection, Connection: conn}}, true
	}
	for _, name := range c.Names() {
		if conn, ok := c.Get(name); ok {
			return DefaultResolution{
				NamedConnection: NamedConnection{Name: name, Connection: conn},
				Stale:           true,
			}, true
		}
	}
	return DefaultResolution{}, false
}

// Upsert inserts or replaces the named connection. The first connection
// added to an empty configuration always becomes the default.
func (c *Configuration) Upsert(name string, conn *Connection, makeDefault bool) (replaced bool) {
	if c.Connections == nil {
		c.Connections = map[string]*Connection{}
	}
	wasEmpty := len(c.Connections) == 0
	_, replaced = c.Connections[name]
	c.Connections[name] = conn
	if makeDefault || wasEmpty {
		c.DefaultConnection = name
	}
	return replaced
}

// Remove deletes the named connection and reports whether it existed.
func (c *Configuration) Remove(name string) bool {
	if _, ok := c.Connections[name]; !ok {
		return false
	}
	delete(c.Connections, name)
	return true
}

// SetDefault points the default at an existing connection.
func (c *Configuration) SetDefault(name string) error {
	if _, ok := c.Get(name); !ok {
		return NewConnectError(ErrConnectionNotFound, name, nil)
	}
	c.DefaultConnection = name
	return nil
}

// Validate checks every stored credential.
func (c *Configuration) Validate() error {
	for _, name := range c.Names() {
		conn := c.Connections[name]
		if conn == nil {
			return fmt.Errorf("connection %q is null", name)
		}
		if err := conn.Auth.Validate(); err != nil {
			return fmt.Errorf("connection %q: %w", name, err)
		}
	}
	return nil
}
