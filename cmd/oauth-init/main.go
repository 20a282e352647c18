// Command oauth-init runs the one-time OAuth consent flow for the Sheets
// export pipeline and writes the token file the worker reads. Run it once
// per destination account before starting finboard-worker.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	gsheet "google.golang.org/api/sheets/v4"

	"finboard/internal/cli"
	"finboard/internal/config"
	applog "finboard/internal/log"
)

const (
	authTimeout      = 5 * time.Minute
	defaultTokenFile = "token.json"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))

	// The full export config (spreadsheet id, token file) may not exist
	// yet; minting the token only needs the client material and a port.
	cfg := config.Load()

	clientJSON, err := clientMaterial(cfg)
	if err != nil {
		logger.Error("OAuth client config unavailable", applog.FieldError, err.Error())
		os.Exit(1)
	}

	oauthCfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		logger.Error("Failed to parse OAuth client config", applog.FieldError, err.Error())
		os.Exit(1)
	}
	// The OAuth client must list this URI among its authorized redirects.
	oauthCfg.RedirectURL = fmt.Sprintf("http://localhost:%s/callback", cfg.OAuthRedirectPort)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code, err := waitForCode(ctx, oauthCfg, cfg.OAuthRedirectPort)
	if err != nil {
		logger.Error("Authorization failed", applog.FieldError, err.Error())
		os.Exit(1)
	}

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		logger.Error("Token exchange failed", applog.FieldError, err.Error())
		os.Exit(1)
	}

	tokenFile := cfg.GoogleOAuthTokenFile
	if tokenFile == "" {
		tokenFile = defaultTokenFile
	}
	if err := writeToken(tokenFile, token); err != nil {
		logger.Error("Failed to save token", applog.FieldError, err.Error(), "path", tokenFile)
		os.Exit(1)
	}

	logger.Info("OAuth token saved", "path", tokenFile,
		"has_refresh_token", token.RefreshToken != "")
}

// clientMaterial resolves the OAuth application config with the same
// precedence the worker uses: inline JSON wins over a file path.
func clientMaterial(cfg *config.Config) ([]byte, error) {
	if cfg.GoogleOAuthClientJSON != "" {
		return []byte(cfg.GoogleOAuthClientJSON), nil
	}
	if cfg.GoogleOAuthClientFile != "" {
		return os.ReadFile(cfg.GoogleOAuthClientFile)
	}
	return nil, errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
}

// waitForCode serves the local redirect endpoint, prints the consent URL
// and blocks until the browser delivers an authorization code, the flow
// times out, or the process is interrupted.
func waitForCode(ctx context.Context, oauthCfg *oauth2.Config, port string) (string, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if msg := r.URL.Query().Get("error"); msg != "" {
			http.Error(w, "authorization failed: "+msg, http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization refused: %s", msg)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			errCh <- errors.New("callback carried no authorization code")
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this tab.")
		codeCh <- code
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("redirect listener: %w", err)
		}
	}()
	defer srv.Close()

	fmt.Printf("Open this URL in a browser to authorize access:\n\n%s\n\n",
		oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))

	select {
	case code := <-codeCh:
		return code, nil
	case err := <-errCh:
		return "", err
	case <-ctx.Done():
		return "", errors.New("authorization interrupted")
	case <-time.After(authTimeout):
		return "", fmt.Errorf("authorization timed out after %v", authTimeout)
	}
}

func writeToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}
