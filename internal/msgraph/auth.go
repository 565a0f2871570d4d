package msgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/brimstone/logger"
	"golang.org/x/oauth2"
)

var log = logger.New()

var requiredScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// TokenPath returns the token file location inside the data directory.
func TokenPath(dataDir string) string {
	return filepath.Join(dataDir, "auth", "msgraph_tokens.json")
}

// OAuth2Config returns the oauth2.Config for Microsoft Graph using the
// provided tenant and client IDs.
func OAuth2Config(tenantID, clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
			TokenURL:      msEndpoint(tenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// TokenFile persists OAuth2 tokens as JSON.
type TokenFile struct {
	Path string
}

// Load returns the saved token, or nil if there is none.
func (f TokenFile) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", f.Path, err)
	}
	return &tok, nil
}

// Save writes tok with owner-only permissions.
func (f TokenFile) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := f.Path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Authorize returns a usable token: the saved one if still valid, else a
// refreshed one, else one obtained through the device code flow. Sign-in
// instructions are written to out.
func Authorize(ctx context.Context, cfg *oauth2.Config, tokens TokenFile, out io.Writer) (*oauth2.Token, error) {
	tok, err := tokens.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		tok = nil
	}

	if tok != nil && tok.Valid() {
		return tok, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err := tokens.Save(refreshed); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not save refreshed token: %v\n", err)
			}
			log.Debug("refreshed graph token")
			return refreshed, nil
		}
		fmt.Fprintf(os.Stderr, "Token refresh failed (%v), re-authenticating...\n", err)
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(out, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(out, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(out)

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := tokens.Save(newTok); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save token: %v\n", err)
	}
	return newTok, nil
}
