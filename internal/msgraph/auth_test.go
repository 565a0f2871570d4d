package msgraph_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/worktimer/internal/msgraph"
)

func TestTokenFile(t *testing.T) {
	f := msgraph.TokenFile{Path: msgraph.TokenPath(t.TempDir())}

	tok, err := f.Load()
	if err != nil || tok != nil {
		t.Fatalf("Load on missing file = %v, %v; want nil, nil", tok, err)
	}

	in := &oauth2.Token{AccessToken: "abc", RefreshToken: "def", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := f.Save(in); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(f.Path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("token file mode = %v, want 0600", info.Mode().Perm())
	}
	out, err := f.Load()
	if err != nil {
		t.Fatal(err)
	}
	if out.AccessToken != "abc" || out.RefreshToken != "def" || !out.Expiry.Equal(in.Expiry) {
		t.Errorf("Load = %+v", out)
	}

	if err := os.WriteFile(f.Path, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Load(); err == nil {
		t.Error("expected error for corrupt token file")
	}
}

func TestOAuth2Config(t *testing.T) {
	cfg := msgraph.OAuth2Config("my-tenant", "my-client")
	if cfg.ClientID != "my-client" {
		t.Errorf("ClientID = %q", cfg.ClientID)
	}
	if cfg.Endpoint.TokenURL != "https://login.microsoftonline.com/my-tenant/oauth2/v2.0/token" {
		t.Errorf("TokenURL = %q", cfg.Endpoint.TokenURL)
	}
	if filepath.Base(cfg.Endpoint.DeviceAuthURL) != "devicecode" {
		t.Errorf("DeviceAuthURL = %q", cfg.Endpoint.DeviceAuthURL)
	}
}

func TestTokenSourceSavesRefreshedToken(t *testing.T) {
	refreshes := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshes++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"fresh-%d","token_type":"Bearer","expires_in":3600,"refresh_token":"r2"}`, refreshes)
	}))
	defer srv.Close()

	cfg := &oauth2.Config{
		ClientID: "client",
		Endpoint: oauth2.Endpoint{TokenURL: srv.URL, AuthStyle: oauth2.AuthStyleInParams},
	}
	f := msgraph.TokenFile{Path: msgraph.TokenPath(t.TempDir())}
	expired := &oauth2.Token{AccessToken: "stale", RefreshToken: "r1", Expiry: time.Now().Add(-time.Hour)}
	src := msgraph.TokenSource(context.Background(), expired, cfg, f)

	tok, err := src.Token()
	if err != nil {
		t.Fatal(err)
	}
	if tok.AccessToken != "fresh-1" {
		t.Fatalf("token = %q, want fresh-1", tok.AccessToken)
	}
	saved, err := f.Load()
	if err != nil || saved == nil || saved.AccessToken != "fresh-1" || saved.RefreshToken != "r2" {
		t.Fatalf("saved token = %+v, %v", saved, err)
	}

	if err := os.Remove(f.Path); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Token(); err != nil {
		t.Fatal(err)
	}
	if refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", refreshes)
	}
	if _, err := os.Stat(f.Path); !os.IsNotExist(err) {
		t.Error("unchanged token must not be saved again")
	}
}
