package authflow

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tok := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := saveToken(dir, "google", tok); err != nil {
		t.Fatalf("saveToken: %v", err)
	}

	got, err := loadToken(dir, "google")
	if err != nil {
		t.Fatalf("loadToken: %v", err)
	}
	if got == nil || got.AccessToken != "access" || got.RefreshToken != "refresh" {
		t.Errorf("token = %+v", got)
	}
	if !got.Expiry.Equal(tok.Expiry) {
		t.Errorf("expiry = %v", got.Expiry)
	}
}

func TestLoadTokenMissingProvider(t *testing.T) {
	dir := t.TempDir()
	got, err := loadToken(dir, "microsoft")
	if err != nil {
		t.Fatalf("loadToken: %v", err)
	}
	if got != nil {
		t.Errorf("token = %+v, want nil for unauthorized provider", got)
	}
}

func TestSaveTokenKeepsOtherProviders(t *testing.T) {
	dir := t.TempDir()
	if err := saveToken(dir, "google", &oauth2.Token{AccessToken: "g"}); err != nil {
		t.Fatal(err)
	}
	if err := saveToken(dir, "microsoft", &oauth2.Token{AccessToken: "m"}); err != nil {
		t.Fatal(err)
	}

	g, err := loadToken(dir, "google")
	if err != nil || g == nil || g.AccessToken != "g" {
		t.Errorf("google token = %+v (%v)", g, err)
	}

	ok, err := Authorized(dir, "microsoft")
	if err != nil || !ok {
		t.Errorf("Authorized = %v, %v", ok, err)
	}
	ok, err = Authorized(dir, "unknown")
	if err != nil || ok {
		t.Errorf("Authorized unknown = %v, %v", ok, err)
	}
}
