package auth

import (
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/oarkflow/hash"

	"github.com/nimbusdepot/gatesftp/internal/models"
)

// LocalProvider is a hashed, in-memory credential store used in place of
// the object-store HEAD probe for local development and tests, where
// standing up a bucket just to log in is unwanted friction. Callers supply
// already-hashed passwords (as they'd arrive from a config file or seed
// dataset), and Login verifies them with the same matcher.
type LocalProvider struct {
	mu       sync.RWMutex
	users    map[string]models.User
	hashed   map[string]string
	hashAlgo string
}

// NewLocalProvider returns an empty provider verifying credentials with
// hashAlgo (e.g. "sha256").
func NewLocalProvider(hashAlgo string) *LocalProvider {
	if hashAlgo == "" {
		hashAlgo = "sha256"
	}
	return &LocalProvider{
		users:    make(map[string]models.User),
		hashed:   make(map[string]string),
		hashAlgo: hashAlgo,
	}
}

// Register stores user under username, with hashedPass being the
// already-hashed credential (produced offline, e.g. while seeding a config
// file) in a form hash.Match can verify against p.hashAlgo.
func (p *LocalProvider) Register(user models.User, hashedPass string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[user.Username] = user
	p.hashed[user.Username] = hashedPass
}

// Login reports whether user/pass matches a registered credential.
func (p *LocalProvider) Login(user, pass string) (models.User, bool) {
	p.mu.RLock()
	digest, ok := p.hashed[user]
	u := p.users[user]
	p.mu.RUnlock()
	if !ok {
		return models.User{}, false
	}
	matched, err := hash.Match(pass, digest, p.hashAlgo)
	if err != nil || !matched {
		return models.User{}, false
	}
	return u, true
}

// Token returns an opaque session token, used only for diagnostics/audit
// logging, never as a bearer credential.
func Token() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(9223372036854775807))
	return n.String()
}
