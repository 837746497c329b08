package couchbase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/couchbase/gocb/v2"

	"stealthcompany.com/icudash/internal/storage"
)

// DocumentManager maps store keys onto documents in one collection.
// Values are stored as JSON documents, so they must be valid JSON.
type DocumentManager struct {
	col *gocb.Collection
}

// NewDocumentManager creates a new document manager
func NewDocumentManager(col *gocb.Collection) *DocumentManager {
	return &DocumentManager{col: col}
}

// Get returns the raw document under key
func (dm *DocumentManager) Get(ctx context.Context, key string) ([]byte, error) {
	res, err := dm.col.Get(key, &gocb.GetOptions{Context: ctx})
	if errors.Is(err, gocb.ErrDocumentNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", key, err)
	}

	var raw json.RawMessage
	if err := res.Content(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse document content: %w", err)
	}
	return raw, nil
}

// Put upserts value under key
func (dm *DocumentManager) Put(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("document %s is not valid JSON", key)
	}
	_, err := dm.col.Upsert(key, json.RawMessage(value), &gocb.UpsertOptions{Context: ctx})
	if err != nil {
		return fmt.Errorf("failed to upsert document %s: %w", key, err)
	}
	return nil
}

// Delete removes key; a missing document is not an error
func (dm *DocumentManager) Delete(ctx context.Context, key string) error {
	_, err := dm.col.Remove(key, &gocb.RemoveOptions{Context: ctx})
	if err != nil && !errors.Is(err, gocb.ErrDocumentNotFound) {
		return fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	return nil
}
