// Package reconcile plans and executes bulk mutations against the
// retention messaging API: import tables of messages, delete by table,
// and set or clear default messages across products and locales.
package reconcile

import (
	"context"

	"github.com/winback/message-service/internal/appstore"
)

// RemoteClient is the capability surface the reconciler consumes.
// *appstore.Client satisfies it; tests substitute fakes.
type RemoteClient interface {
	ListMessages(ctx context.Context) ([]appstore.MessageIdentifier, error)
	ListImages(ctx context.Context) ([]appstore.ImageIdentifier, error)
	UploadMessage(ctx context.Context, messageID string, req appstore.UploadMessageRequest) error
	DeleteMessage(ctx context.Context, messageID string) error
	SetDefaultMessage(ctx context.Context, productID, locale, messageID string) error
	DeleteDefaultMessage(ctx context.Context, productID, locale string) error
}
