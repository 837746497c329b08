// Package couchbase implements the storage backend on a Couchbase bucket.
package couchbase

import (
	"stealthcompany.com/icudash/internal/storage"
)

// Client is a storage.Backend over the default collection of one bucket
type Client struct {
	*DocumentManager
	*DatabaseLocker

	connManager *ConnectionManager
}

var _ storage.Backend = (*Client)(nil)

// NewClient connects to the cluster and builds the document and lock managers
func NewClient(cfg Config) (*Client, error) {
	connManager, err := NewConnectionManager(cfg)
	if err != nil {
		return nil, err
	}

	col := connManager.GetCollection()

	return &Client{
		DocumentManager: NewDocumentManager(col),
		DatabaseLocker:  NewDatabaseLocker(col, "icudash"),
		connManager:     connManager,
	}, nil
}

// Close closes the Couchbase connection
func (c *Client) Close() error {
	return c.connManager.Close()
}
