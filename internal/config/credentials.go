package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// CredentialsFileName is the OAuth application registration file inside
// the state directory.
const CredentialsFileName = "credentials.toml"

// ProviderCredentials is one provider's OAuth application registration.
type ProviderCredentials struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Credentials maps provider name to registration. Secrets stay out of
// config.yaml so the config file can be committed or shared.
type Credentials struct {
	Google    ProviderCredentials `toml:"google"`
	Microsoft ProviderCredentials `toml:"microsoft"`
}

// ForProvider returns the registration for a provider name.
func (c Credentials) ForProvider(name string) (ProviderCredentials, error) {
	switch name {
	case "google":
		return c.Google, nil
	case "microsoft":
		return c.Microsoft, nil
	default:
		return ProviderCredentials{}, fmt.Errorf("unknown provider %q", name)
	}
}

// LoadCredentials reads credentials.toml from the state directory.
func LoadCredentials(stateDir string) (Credentials, error) {
	path := filepath.Join(stateDir, CredentialsFileName)
	var creds Credentials
	if _, err := toml.DecodeFile(path, &creds); err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, fmt.Errorf("no %s in %s; run the init command first", CredentialsFileName, stateDir)
		}
		return Credentials{}, fmt.Errorf("reading %s: %w", CredentialsFileName, err)
	}
	return creds, nil
}

// SaveCredentials writes credentials.toml with owner-only permissions.
func SaveCredentials(stateDir string, creds Credentials) error {
	if err := os.MkdirAll(stateDir, 0o750); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	path := filepath.Join(stateDir, CredentialsFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("writing %s: %w", CredentialsFileName, err)
	}
	defer func() { _ = f.Close() }()
	if err := toml.NewEncoder(f).Encode(creds); err != nil {
		return fmt.Errorf("encoding %s: %w", CredentialsFileName, err)
	}
	return nil
}
