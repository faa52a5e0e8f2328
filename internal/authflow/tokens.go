package authflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/oauth2"
)

// TokensFileName is the token store's name inside the state directory.
const TokensFileName = "tokens.json"

// tokenFile is the on-disk shape: one token per provider name.
type tokenFile map[string]*oauth2.Token

// withTokenLock serializes token-file access across processes, so a
// background poll refreshing a token cannot race an interactive auth run.
func withTokenLock(stateDir string, fn func(path string) error) error {
	if err := os.MkdirAll(stateDir, 0o750); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	path := filepath.Join(stateDir, TokensFileName)
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquiring token lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()
	return fn(path)
}

func readTokenFile(path string) (tokenFile, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path inside the state dir
	if os.IsNotExist(err) {
		return tokenFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token store: %w", err)
	}
	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing token store: %w", err)
	}
	if tf == nil {
		tf = tokenFile{}
	}
	return tf, nil
}

func saveToken(stateDir, provider string, token *oauth2.Token) error {
	return withTokenLock(stateDir, func(path string) error {
		tf, err := readTokenFile(path)
		if err != nil {
			return err
		}
		tf[provider] = token
		data, err := json.MarshalIndent(tf, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding token store: %w", err)
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("writing token store: %w", err)
		}
		return nil
	})
}

func loadToken(stateDir, provider string) (*oauth2.Token, error) {
	var token *oauth2.Token
	err := withTokenLock(stateDir, func(path string) error {
		tf, err := readTokenFile(path)
		if err != nil {
			return err
		}
		token = tf[provider]
		return nil
	})
	return token, err
}
