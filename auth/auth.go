package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCred manages an OAuth2 client-credentials token for outbound
// requests. The token is fetched lazily and cached until it expires; all
// methods are safe for concurrent use.
type ClientCred struct {
	conf clientcredentials.Config

	mu    sync.Mutex
	token *oauth2.Token
}

func NewClientCred(conf Conf) *ClientCred {
	return &ClientCred{conf: conf.toOauth2Config()}
}

// GetToken returns a valid access token, requesting a fresh one when the
// cached token is missing or expired.
func (c *ClientCred) GetToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refreshLocked(false); err != nil {
		return "", err
	}
	return c.token.AccessToken, nil
}

// ForceRefresh discards the cached token and requests a new one.
func (c *ClientCred) ForceRefresh() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refreshLocked(true); err != nil {
		return "", err
	}
	return c.token.AccessToken, nil
}

// SetAuthHeader attaches a bearer token to the request, refreshing the
// cached token first when needed.
func (c *ClientCred) SetAuthHeader(r *http.Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refreshLocked(false); err != nil {
		return err
	}
	c.token.SetAuthHeader(r)
	return nil
}

func (c *ClientCred) refreshLocked(force bool) error {
	if !force && c.token != nil && c.token.Valid() {
		return nil
	}
	tok, err := c.conf.Token(context.Background())
	if err != nil {
		return fmt.Errorf("token request: %w", err)
	}
	c.token = tok
	return nil
}
