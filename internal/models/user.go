// Package models holds the data types shared across the gateway's
// components: the authenticated user and its per-user policy overrides.
package models

// User identifies an authenticated SFTP client and its path allow-list
// override.
type User struct {
	Username string `json:"username"`

	// AllowedPrefixes overrides the default path allow-list
	// (['/', '/ledgers', '/invoices']) for this user. Empty means "use the
	// default."
	AllowedPrefixes []string `json:"allowedPrefixes,omitempty"`

	// Capabilities is the serialized bitmask of coarse-grained actions
	// (policy.CapRead, CapCreate, ...) this account may perform. Zero means
	// "use policy.DefaultCapabilities."
	Capabilities int64 `json:"capabilities,omitempty"`
}

// HomePrefix returns "<userBasePath>/<username>", the root of the user's
// object-store scope.
func (u User) HomePrefix(userBasePath string) string {
	return userBasePath + "/" + u.Username
}

// TypeCredential identifies the authentication method a credential was
// issued for. Only Password is wired in today; the others are kept as
// the registry schema's documented extension points.
type TypeCredential string

const (
	Password  TypeCredential = "PASSWORD"
	TwoFactor TypeCredential = "TWO_FACTOR"
	APIKey    TypeCredential = "API_KEY"
)
