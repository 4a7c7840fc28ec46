// ABOUTME: Charm KV client wrapper for fitness centre storage.
// ABOUTME: Provides thread-safe initialization, a Repository view, and automatic cloud sync.
package charm

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/harperreed/fitcentre/internal/logging"
	"github.com/harperreed/fitcentre/internal/storage"
)

const (
	// DBName is the Charm KV database name, shared by sync reset/wipe/repair.
	DBName = "fitcentre"
	// DefaultHost is used when CHARM_HOST is not already set.
	DefaultHost = "charm.2389.dev"
)

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

type Client struct {
	kv       *kv.KV
	autoSync bool
	mu       sync.RWMutex
	store    *storage.KVStore
}

// InitClient initializes the global Charm client.
// Thread-safe; can be called multiple times.
func InitClient() (*Client, error) {
	clientOnce.Do(func() {
		if err := configureHost(); err != nil {
			clientErr = err
			return
		}

		db, err := kv.OpenWithDefaultsFallback(DBName)
		if err != nil {
			clientErr = fmt.Errorf("%w: open charm kv: %v", storage.ErrStorageUnavailable, err)
			return
		}

		globalClient = &Client{
			kv:       db,
			autoSync: true,
		}

		// Pull remote data on startup (skip in read-only mode)
		if !db.IsReadOnly() {
			if err := db.Sync(); err != nil {
				logging.WithComponent("charm").WithError(err).Warn("initial sync failed")
			}
		}
	})

	return globalClient, clientErr
}

// configureHost points the Charm client at the default server unless CHARM_HOST is set.
func configureHost() error {
	if os.Getenv("CHARM_HOST") != "" {
		return nil
	}
	return os.Setenv("CHARM_HOST", DefaultHost)
}

// Host returns the Charm server the client talks to.
func Host() string {
	if h := os.Getenv("CHARM_HOST"); h != "" {
		return h
	}
	return DefaultHost
}

// Store returns a Repository backed by the Charm KV database.
// Writes sync to Charm Cloud when auto-sync is on; closing the store closes the client.
func (c *Client) Store() (*storage.KVStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store != nil {
		return c.store, nil
	}

	s, err := storage.NewKVStore(c.kv.DB,
		storage.WithReadOnly(c.kv.IsReadOnly()),
		storage.WithAfterWrite(c.syncIfEnabled),
		storage.WithCloser(c.Close),
	)
	if err != nil {
		return nil, err
	}
	c.store = s
	return s, nil
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

// syncIfEnabled calls Sync if autoSync is enabled. Failures are logged, not returned,
// since the local write already succeeded.
func (c *Client) syncIfEnabled() {
	c.mu.RLock()
	enabled := c.autoSync
	c.mu.RUnlock()
	if !enabled {
		return
	}
	if err := c.Sync(); err != nil {
		logging.WithComponent("charm").WithError(err).Warn("sync after write failed")
	}
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// Batch runs fn with auto-sync off and syncs once if fn succeeds.
// The previous auto-sync setting is restored either way.
func (c *Client) Batch(fn func() error) error {
	c.mu.RLock()
	prev := c.autoSync
	c.mu.RUnlock()

	c.SetAutoSync(false)
	defer c.SetAutoSync(prev)

	if err := fn(); err != nil {
		return err
	}
	return c.Sync()
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}
