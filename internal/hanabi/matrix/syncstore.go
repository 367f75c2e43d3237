package matrix

// syncstore.go implements mautrix.SyncStore on top of the Hanabi SQLite
// store. Persisting the next_batch token across restarts prevents the bot
// from replaying old room history and re-answering messages that were
// already handled in a previous run.

import (
	"context"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"

	"github.com/bdobrica/Hanabi/internal/hanabi/store"
)

// Compile-time assertion that storeSyncStore satisfies mautrix.SyncStore.
var _ mautrix.SyncStore = (*storeSyncStore)(nil)

// storeSyncStore persists the sync state in the store's sync_tokens table,
// keyed by "<user_id>/<key>".
type storeSyncStore struct {
	store *store.Store
}

func newStoreSyncStore(s *store.Store) *storeSyncStore {
	return &storeSyncStore{store: s}
}

// SaveFilterID persists the Matrix event-filter ID for the given user.
func (s *storeSyncStore) SaveFilterID(ctx context.Context, userID id.UserID, filterID string) error {
	return s.store.SetSyncToken(ctx, userID.String()+"/filter_id", filterID)
}

// LoadFilterID retrieves the persisted event-filter ID for the given user.
// Returns ("", nil) when no filter has been saved yet.
func (s *storeSyncStore) LoadFilterID(ctx context.Context, userID id.UserID) (string, error) {
	return s.store.SyncToken(ctx, userID.String()+"/filter_id")
}

// SaveNextBatch persists the opaque /sync next_batch token so the bot can
// resume from the correct position after a restart.
func (s *storeSyncStore) SaveNextBatch(ctx context.Context, userID id.UserID, nextBatchToken string) error {
	return s.store.SetSyncToken(ctx, userID.String()+"/next_batch", nextBatchToken)
}

// LoadNextBatch retrieves the last saved next_batch token.
// Returns ("", nil) when no token has been saved yet (first run).
func (s *storeSyncStore) LoadNextBatch(ctx context.Context, userID id.UserID) (string, error) {
	return s.store.SyncToken(ctx, userID.String()+"/next_batch")
}
