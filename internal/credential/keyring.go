// Package credential resolves the Bitbucket password from the environment or
// the system keyring. It never writes credentials.
package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
	"github.com/samvad-hq/bitbucket-harvester/internal/config"
)

const serviceName = "bitbucket-harvester"

// Getter reads a secret by key.
type Getter interface {
	Get(key string) (keyring.Item, error)
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/bitbucket-harvester/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("bitbucket-harvester-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Resolve returns the username and password for cfg. With the keyring source
// the password is read from the system keyring under cfg.BitbucketKeyringKey.
func Resolve(cfg *config.Config) (string, string, error) {
	if cfg == nil {
		return "", "", errors.New("config must not be nil")
	}
	if cfg.BitbucketCredentialSource != config.CredentialSourceKeyring {
		return resolveWith(cfg, nil)
	}

	ring, err := openKeyring()
	if err != nil {
		return "", "", err
	}
	return resolveWith(cfg, ring)
}

func resolveWith(cfg *config.Config, ring Getter) (string, string, error) {
	username := strings.TrimSpace(cfg.BitbucketUsername)
	if username == "" {
		return "", "", errors.New("bitbucket_username is required")
	}

	if ring == nil {
		if cfg.BitbucketPassword == "" {
			return "", "", errors.New("bitbucket_password is required")
		}
		return username, cfg.BitbucketPassword, nil
	}

	key := strings.TrimSpace(cfg.BitbucketKeyringKey)
	if key == "" {
		key = username
	}
	item, err := ring.Get(key)
	if err != nil {
		return "", "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	if len(item.Data) == 0 {
		return "", "", fmt.Errorf("credential %q is empty", key)
	}
	return username, string(item.Data), nil
}
