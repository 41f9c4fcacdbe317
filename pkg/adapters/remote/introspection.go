package remote

import (
	"github.com/aretw0/introspection"
)

// ClientState exposes internal state for observability. The token itself
// never leaves the client.
type ClientState struct {
	BaseURL       string `json:"base_url"`
	TokenSet      bool   `json:"token_set"`
	SessionActive bool   `json:"session_active"`
	MaxRetries    int    `json:"max_retries"`
}

// State implements introspection.Introspectable.
func (c *Client) State() any {
	c.mu.Lock()
	defer c.mu.Unlock()

	return ClientState{
		BaseURL:       c.baseURL,
		TokenSet:      c.token != "",
		SessionActive: c.session != nil && c.sessionToken == c.token,
		MaxRetries:    c.maxRetries,
	}
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "remote"
}

var _ introspection.Introspectable = (*Client)(nil)
var _ introspection.Component = (*Client)(nil)
