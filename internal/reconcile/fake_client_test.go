package reconcile

import (
	"context"
	"fmt"
	"sync"

	"github.com/winback/message-service/internal/appstore"
)

// fakeClient is an in-memory RemoteClient for tests.
type fakeClient struct {
	mu       sync.Mutex
	messages map[string]appstore.UploadMessageRequest
	images   map[string]appstore.ImageState
	defaults map[string]string // "product/locale" -> messageID

	failUpload  map[string]error // messageID -> error to return
	failDefault map[string]error // "product/locale" -> error to return
	listErr     error

	uploadCalls  []string
	defaultCalls []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		messages:    make(map[string]appstore.UploadMessageRequest),
		images:      make(map[string]appstore.ImageState),
		defaults:    make(map[string]string),
		failUpload:  make(map[string]error),
		failDefault: make(map[string]error),
	}
}

func (f *fakeClient) ListMessages(ctx context.Context) ([]appstore.MessageIdentifier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]appstore.MessageIdentifier, 0, len(f.messages))
	for id := range f.messages {
		out = append(out, appstore.MessageIdentifier{MessageIdentifier: id, MessageState: appstore.MessageStateApproved})
	}
	return out, nil
}

func (f *fakeClient) ListImages(ctx context.Context) ([]appstore.ImageIdentifier, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]appstore.ImageIdentifier, 0, len(f.images))
	for id, state := range f.images {
		out = append(out, appstore.ImageIdentifier{ImageIdentifier: id, ImageState: state})
	}
	return out, nil
}

func (f *fakeClient) UploadMessage(ctx context.Context, messageID string, req appstore.UploadMessageRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadCalls = append(f.uploadCalls, messageID)
	if err, ok := f.failUpload[messageID]; ok {
		return err
	}
	if _, exists := f.messages[messageID]; exists {
		return &appstore.APIError{Status: 409, Code: appstore.CodeDuplicateMessageID, Message: "duplicate"}
	}
	f.messages[messageID] = req
	return nil
}

func (f *fakeClient) DeleteMessage(ctx context.Context, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.messages[messageID]; !exists {
		return &appstore.APIError{Status: 404, Code: appstore.CodeNotFound, Message: "not found"}
	}
	delete(f.messages, messageID)
	return nil
}

func (f *fakeClient) SetDefaultMessage(ctx context.Context, productID, locale, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := productID + "/" + locale
	f.defaultCalls = append(f.defaultCalls, key)
	if err, ok := f.failDefault[key]; ok {
		return err
	}
	f.defaults[key] = messageID
	return nil
}

func (f *fakeClient) DeleteDefaultMessage(ctx context.Context, productID, locale string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := productID + "/" + locale
	f.defaultCalls = append(f.defaultCalls, key)
	if err, ok := f.failDefault[key]; ok {
		return err
	}
	if _, exists := f.defaults[key]; !exists {
		return &appstore.APIError{Status: 404, Code: appstore.CodeNotFound, Message: fmt.Sprintf("no default for %s", key)}
	}
	delete(f.defaults, key)
	return nil
}
