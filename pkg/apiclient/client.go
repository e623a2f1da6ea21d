// Package apiclient talks to the REST API and implements the feedview
// collaborators on top of it.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/socialfeed/server/pkg/feedview"
	"github.com/socialfeed/server/pkg/logger"
	"go.uber.org/zap"
)

const RequestIdHeader = "X-Request-Id"

type Client struct {
	baseURL string
	http    *http.Client
	auth    *feedview.AuthState

	mu    sync.Mutex
	token string
}

var _ feedview.Store = (*Client)(nil)
var _ feedview.ImageUploader = (*Client)(nil)

// New returns a client for the API at baseURL. auth follows the client's
// sign in state and may be shared with views.
func New(baseURL string, auth *feedview.AuthState) *Client {
	if auth == nil {
		auth = feedview.NewAuthState()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		auth:    auth,
	}
}

func (c *Client) Auth() *feedview.AuthState {
	return c.auth
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

type errResp struct {
	Type       string            `json:"type"`
	Fields     map[string]string `json:"fields"`
	MFAMethods []string          `json:"mfa_methods"`
}

type listResp[T any] struct {
	Autoget []T `json:"autoget"`
}

// do sends a JSON request and decodes the answer into out when it is not nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		marshaled, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(marshaled)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(RequestIdHeader, uuid.NewString())
	if token := c.Token(); token != "" {
		req.Header.Set("token", token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	logger.L.Debug("api request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", req.Header.Get(RequestIdHeader)),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var decoded errResp
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err == nil {
			apiErr.Type = decoded.Type
			apiErr.Fields = decoded.Fields
			apiErr.MFAMethods = decoded.MFAMethods
		}
		// The server no longer accepts our token
		if resp.StatusCode == http.StatusUnauthorized && req.Header.Get("token") != "" {
			c.setToken("")
			c.auth.SignOut()
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}
