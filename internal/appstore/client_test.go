package appstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/winback/message-service/internal/http/ratelimit"
	"github.com/winback/message-service/internal/types"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := ratelimit.Config{
		RequestsPerSecond: 1000,
		MaxRetries:        2,
		InitialBackoffMs:  1,
		MaxBackoffMs:      5,
	}
	c := NewClient(types.EnvironmentSandbox, StaticTokenSource("test-token"), cfg, srv.URL, zerolog.Nop())
	return c, srv
}

func TestListMessages(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/inApps/v1/messaging/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(MessageListResponse{
			MessageIdentifiers: []MessageIdentifier{
				{MessageIdentifier: "m1", MessageState: MessageStateApproved},
				{MessageIdentifier: "m2", MessageState: MessageStatePending},
			},
		})
	}))

	msgs, err := c.ListMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].MessageIdentifier)
}

func TestUploadMessage(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/inApps/v1/messaging/message/m1", r.URL.Path)

		var req UploadMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Welcome back", req.Header)
		require.NotNil(t, req.Image)
		assert.Equal(t, "img1", req.Image.ImageIdentifier)

		w.WriteHeader(http.StatusOK)
	}))

	err := c.UploadMessage(context.Background(), "m1", UploadMessageRequest{
		Header: "Welcome back",
		Body:   "We saved your spot.",
		Image:  &UploadMessageImage{ImageIdentifier: "img1", AltText: "logo"},
	})
	assert.NoError(t, err)
}

func TestAPIErrorDecoding(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"errorCode":    CodeDuplicateMessageID,
			"errorMessage": "Message identifier already exists.",
		})
	}))

	err := c.UploadMessage(context.Background(), "m1", UploadMessageRequest{Header: "h", Body: "b"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, CodeDuplicateMessageID, apiErr.Code)
	assert.True(t, IsDuplicate(err))
	assert.False(t, IsNotFound(err))
}

func TestRetryOn429ThenSuccess(t *testing.T) {
	var calls int32
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(MessageListResponse{})
	}))

	_, err := c.ListMessages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRetriesExhaustedIsRateLimited(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := c.ListMessages(context.Background())
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestDeleteDefaultMessage(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/inApps/v1/messaging/default/com.app.monthly/en-US", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))

	assert.NoError(t, c.DeleteDefaultMessage(context.Background(), "com.app.monthly", "en-US"))
}

func TestNoTokenFailsBeforeRequest(t *testing.T) {
	called := false
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	c.tokens = StaticTokenSource("")

	_, err := c.ListMessages(context.Background())
	assert.Error(t, err)
	assert.False(t, called)
}
