// Package memstore implements store.Client over an in-memory filesystem
// (github.com/spf13/afero's MemMapFs). It is the deterministic double used
// by unit and integration tests so they can exercise the whole gateway
// without a network-backed bucket: no credentials, no latency, and
// deliberately no eventual-consistency lag, since tests that need to
// exercise staleness handling inject the delay explicitly.
package memstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/nimbusdepot/gatesftp/internal/store"
)

// Client is an in-process store.Client. Object keys are stored as flat
// entries in an afero.MemMapFs, mirroring the flat key/prefix namespace a
// real bucket exposes (no directory objects are created implicitly).
type Client struct {
	fs  afero.Fs
	mu  sync.RWMutex
	mod map[string]time.Time
}

// New returns an empty in-memory store.
func New() *Client {
	return &Client{
		fs:  afero.NewMemMapFs(),
		mod: make(map[string]time.Time),
	}
}

func (c *Client) path(key string) string {
	return "/" + strings.TrimPrefix(key, "/")
}

func (c *Client) Get(_ context.Context, key string, rangeStart, rangeEnd int64) (io.ReadCloser, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := afero.ReadFile(c.fs, c.path(key))
	if err != nil {
		return nil, store.ErrNotFound
	}
	if rangeStart < 0 {
		rangeStart = 0
	}
	if rangeStart >= int64(len(data)) {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	end := int64(len(data))
	if rangeEnd >= 0 && rangeEnd+1 < end {
		end = rangeEnd + 1
	}
	return io.NopCloser(bytes.NewReader(data[rangeStart:end])), nil
}

func (c *Client) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := afero.WriteFile(c.fs, c.path(key), data, 0o644); err != nil {
		return err
	}
	c.mod[key] = time.Now()
	return nil
}

func (c *Client) Head(_ context.Context, key string) (bool, int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, err := c.fs.Stat(c.path(key))
	if err != nil {
		return false, 0, nil
	}
	return true, info.Size(), nil
}

func (c *Client) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.fs.Remove(c.path(key))
	delete(c.mod, key)
	return nil
}

func (c *Client) Copy(_ context.Context, srcKey, dstKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := afero.ReadFile(c.fs, c.path(srcKey))
	if err != nil {
		return store.ErrNotFound
	}
	if err := afero.WriteFile(c.fs, c.path(dstKey), data, 0o644); err != nil {
		return err
	}
	c.mod[dstKey] = time.Now()
	return nil
}

func (c *Client) List(_ context.Context, prefix string) ([]store.ObjectSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	root := c.path(prefix)
	var out []store.ObjectSummary
	_ = afero.Walk(c.fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		key := strings.TrimPrefix(p, "/")
		if !strings.HasPrefix(c.path(key), root) {
			return nil
		}
		out = append(out, store.ObjectSummary{
			Key:          key,
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Seed writes a key/body pair directly, without recording a modification
// time in mod the way Put does. Useful for test fixtures.
func (c *Client) Seed(key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = afero.WriteFile(c.fs, c.path(key), body, 0o644)
}
