package reconcile

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/winback/message-service/internal/appstore"
)

// Snapshot is the remote state captured once at run start. It is
// read-only afterwards: concurrent external mutation during a run is
// deliberately not observed.
type Snapshot struct {
	MessageIDs       map[string]struct{}
	ApprovedImageIDs map[string]struct{}
}

// HasMessage reports whether a message ID already exists remotely.
func (s *Snapshot) HasMessage(id string) bool {
	_, ok := s.MessageIDs[id]
	return ok
}

// HasApprovedImage reports whether an image ID exists and is approved.
func (s *Snapshot) HasApprovedImage(id string) bool {
	_, ok := s.ApprovedImageIDs[id]
	return ok
}

// FetchSnapshot lists existing messages and, when includeImages is
// set, approved images. The two list calls are read-only and
// independent, so they run concurrently; mutations later in the run
// stay strictly sequential.
func FetchSnapshot(ctx context.Context, client RemoteClient, includeImages bool) (*Snapshot, error) {
	snap := &Snapshot{
		MessageIDs:       make(map[string]struct{}),
		ApprovedImageIDs: make(map[string]struct{}),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		msgs, err := client.ListMessages(ctx)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			snap.MessageIDs[m.MessageIdentifier] = struct{}{}
		}
		return nil
	})

	if includeImages {
		g.Go(func() error {
			imgs, err := client.ListImages(ctx)
			if err != nil {
				return err
			}
			for _, img := range imgs {
				if img.ImageState == appstore.ImageStateApproved {
					snap.ApprovedImageIDs[img.ImageIdentifier] = struct{}{}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}
