package config

import (
	"testing"
)

func TestCredentialsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := Credentials{
		Google:    ProviderCredentials{ClientID: "g-id", ClientSecret: "g-secret"},
		Microsoft: ProviderCredentials{ClientID: "m-id"},
	}
	if err := SaveCredentials(dir, in); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}

	got, err := LoadCredentials(dir)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if got != in {
		t.Errorf("credentials = %+v, want %+v", got, in)
	}

	g, err := got.ForProvider("google")
	if err != nil || g.ClientID != "g-id" {
		t.Errorf("ForProvider(google) = %+v, %v", g, err)
	}
	if _, err := got.ForProvider("todoist"); err == nil {
		t.Error("unknown provider should error")
	}
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	if _, err := LoadCredentials(t.TempDir()); err == nil {
		t.Error("missing credentials.toml should error")
	}
}
