// Package auth authenticates password credentials. The recognized method
// is password; authenticate consults the object store itself as the
// credential registry: presence of the key "auth/<user>_<pass>" (a HEAD)
// means success. This keeps credential storage in the same backend as
// everything else at the cost of passwords appearing in key names, an
// accepted tradeoff for a store that is already access-controlled.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/nimbusdepot/gatesftp/internal/log"
	"github.com/nimbusdepot/gatesftp/internal/store"
)

// Adapter authenticates password credentials against the object store's
// credential-probe keyspace and provisions a new user's home tree on first
// success.
type Adapter struct {
	Store                 store.Client
	Logger                log.Logger
	UserBasePath          string
	DefaultSubdirectories []string
	CreateDefaultSubdirs  bool
}

// Authenticate reports whether user/pass is a valid credential. Any store
// error other than not-found is treated as a failure and logged.
func (a *Adapter) Authenticate(ctx context.Context, user, pass string) bool {
	key := probeKey(user, pass)
	exists, _, err := a.Store.Head(ctx, key)
	if err != nil {
		a.Logger.Error("credential probe failed", "user", user, "err", err)
		return false
	}
	return exists
}

func probeKey(user, pass string) string {
	return fmt.Sprintf("auth/%s_%s", user, pass)
}

// ProvisionHome ensures homePrefix is usable for user and, if
// CreateDefaultSubdirs is set, writes a ".directory" marker for each
// configured default subdirectory. The home directory itself gets no
// marker: directories are virtual and the home root is synthesized on
// listing, never stored directly.
func (a *Adapter) ProvisionHome(ctx context.Context, user string) error {
	if !a.CreateDefaultSubdirs {
		return nil
	}
	homePrefix := a.UserBasePath + "/" + user
	for _, name := range a.DefaultSubdirectories {
		key := homePrefix + "/" + name + "/.directory"
		exists, _, err := a.Store.Head(ctx, key)
		if err != nil {
			a.Logger.Error("provisioning check failed", "user", user, "subdir", name, "err", err)
			continue
		}
		if exists {
			continue
		}
		body := fmt.Sprintf("Directory marker for %s folder", name)
		if err := a.Store.Put(ctx, key, strings.NewReader(body), int64(len(body)), "application/x-directory"); err != nil {
			a.Logger.Error("failed to provision default subdirectory", "user", user, "subdir", name, "err", err)
			return err
		}
	}
	return nil
}
