package appstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"

	"github.com/rs/zerolog"

	internalhttp "github.com/winback/message-service/internal/http"
	"github.com/winback/message-service/internal/http/ratelimit"
	"github.com/winback/message-service/internal/types"
)

const (
	productionBaseURL = "https://api.storekit.itunes.apple.com"
	sandboxBaseURL    = "https://api.storekit-sandbox.itunes.apple.com"
)

// TokenSource supplies the bearer token for each request. Token
// construction (signing, expiry, key handling) lives behind this
// interface.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenSource returns a fixed, pre-signed token.
type StaticTokenSource string

func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("no API token configured")
	}
	return string(s), nil
}

// Client calls the retention messaging endpoints for one environment.
type Client struct {
	baseURL string
	http    *internalhttp.Client
	tokens  TokenSource
	logger  zerolog.Logger
}

// NewClient builds a client for the given environment. baseURL
// overrides the environment endpoint when non-empty, which the tests
// and the server's stub mode rely on.
func NewClient(env types.Environment, tokens TokenSource, cfg ratelimit.Config, baseURL string, logger zerolog.Logger) *Client {
	if baseURL == "" {
		if env == types.EnvironmentSandbox {
			baseURL = sandboxBaseURL
		} else {
			baseURL = productionBaseURL
		}
	}
	return &Client{
		baseURL: baseURL,
		http:    internalhttp.NewClient(cfg),
		tokens:  tokens,
		logger:  logger,
	}
}

// ListMessages returns every message identifier in the environment.
func (c *Client) ListMessages(ctx context.Context) ([]MessageIdentifier, error) {
	var out MessageListResponse
	if err := c.call(ctx, nethttp.MethodGet, "/inApps/v1/messaging/messages", nil, &out); err != nil {
		return nil, err
	}
	return out.MessageIdentifiers, nil
}

// ListImages returns every uploaded image identifier with its review
// state.
func (c *Client) ListImages(ctx context.Context) ([]ImageIdentifier, error) {
	var out ImageListResponse
	if err := c.call(ctx, nethttp.MethodGet, "/inApps/v1/messaging/images", nil, &out); err != nil {
		return nil, err
	}
	return out.ImageIdentifiers, nil
}

// UploadMessage creates a message under the given identifier.
func (c *Client) UploadMessage(ctx context.Context, messageID string, req UploadMessageRequest) error {
	path := "/inApps/v1/messaging/message/" + url.PathEscape(messageID)
	return c.call(ctx, nethttp.MethodPost, path, req, nil)
}

// DeleteMessage removes a message by identifier.
func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	path := "/inApps/v1/messaging/message/" + url.PathEscape(messageID)
	return c.call(ctx, nethttp.MethodDelete, path, nil, nil)
}

// SetDefaultMessage configures messageID as the default for a
// (product, locale) pair.
func (c *Client) SetDefaultMessage(ctx context.Context, productID, locale, messageID string) error {
	path := "/inApps/v1/messaging/default/" + url.PathEscape(productID) + "/" + url.PathEscape(locale)
	return c.call(ctx, nethttp.MethodPut, path, DefaultConfigurationRequest{MessageIdentifier: messageID}, nil)
}

// DeleteDefaultMessage clears the default for a (product, locale)
// pair.
func (c *Client) DeleteDefaultMessage(ctx context.Context, productID, locale string) error {
	path := "/inApps/v1/messaging/default/" + url.PathEscape(productID) + "/" + url.PathEscape(locale)
	return c.call(ctx, nethttp.MethodDelete, path, nil, nil)
}

func (c *Client) call(ctx context.Context, method, path string, body any, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var payload []byte
	header := nethttp.Header{}
	header.Set("Authorization", "Bearer "+token)
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		header.Set("Content-Type", "application/json")
	}

	c.logger.Debug().Str("method", method).Str("path", path).Msg("calling messaging API")

	resp, err := c.http.Do(ctx, method, c.baseURL+path, header, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func decodeAPIError(status int, data []byte) error {
	apiErr := &APIError{Status: status}
	if len(data) > 0 {
		// Best effort: a non-JSON body still yields a usable error.
		_ = json.Unmarshal(data, apiErr)
	}
	return apiErr
}
