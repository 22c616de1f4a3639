package google

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/timegrid/timegrid/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

var ErrUnauthenticated = errors.New("google integration is not authenticated")

type googleAuthRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

// GoogleAuth handles the OAuth flow and stores the resulting token. The
// integration is read-only, so only the readonly calendar scope is requested.
type GoogleAuth struct {
	db          *sql.DB
	oauthConfig *oauth2.Config

	mu    sync.Mutex
	nonce string
}

func NewGoogleAuth(db *sql.DB, cfg config.Application) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/integrations/google/auth/callback",
		Scopes:       []string{calendar.CalendarReadonlyScope},
	}
	return &GoogleAuth{db: db, oauthConfig: oauthConfig}
}

func (g *GoogleAuth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	stateNonce := uuid.New().String()
	g.mu.Lock()
	g.nonce = stateNonce
	g.mu.Unlock()

	finalUrl := r.URL.Query().Get("finalUrl")
	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(googleAuthRedirect{RedirectUrl: u}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (g *GoogleAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	state := r.FormValue("state")

	parts := strings.SplitN(state, "|", 2)
	if len(parts) != 2 {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}
	finalUrl := parts[0]
	nonce := parts[1]

	g.mu.Lock()
	validNonce := g.nonce != "" && g.nonce == nonce
	g.nonce = ""
	g.mu.Unlock()
	if !validNonce {
		log.Warn("Google OAuth callback with unknown nonce")
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	token, err := g.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.Errorf("unable to exchange code for token: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	if err := g.storeToken(r.Context(), token); err != nil {
		log.Errorf("unable to store Google auth token: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	http.Redirect(w, r, finalUrl+"?success=true", http.StatusFound)
}

func (g *GoogleAuth) OAuthLogout(w http.ResponseWriter, r *http.Request) {
	if _, err := g.db.ExecContext(r.Context(), `DELETE FROM google_credentials`); err != nil {
		log.Errorf("failed to delete Google credentials: %v", err)
		http.Error(w, "failed to disconnect Google integration", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *GoogleAuth) IsAuthenticated(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	token, err := g.getToken(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewEncoder(w).Encode(map[string]bool{"authenticated": token != nil}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (g *GoogleAuth) storeToken(ctx context.Context, token *oauth2.Token) error {
	if _, err := g.db.ExecContext(ctx, `DELETE FROM google_credentials`); err != nil {
		return err
	}
	_, err := g.db.ExecContext(ctx,
		`INSERT INTO google_credentials (id, access_token, refresh_token, token_type, expiry)
		 VALUES (1, $1, $2, $3, $4)`,
		token.AccessToken, token.RefreshToken, token.TokenType, token.Expiry.Format(time.RFC3339Nano))
	return err
}

func (g *GoogleAuth) getToken(ctx context.Context) (*oauth2.Token, error) {
	var token oauth2.Token
	var expiry string
	err := g.db.QueryRowContext(ctx,
		`SELECT access_token, refresh_token, token_type, expiry FROM google_credentials WHERE id = 1`).
		Scan(&token.AccessToken, &token.RefreshToken, &token.TokenType, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google auth token: %w", err)
	}
	if token.Expiry, err = time.Parse(time.RFC3339Nano, expiry); err != nil {
		return nil, fmt.Errorf("unable to parse stored token expiry: %w", err)
	}
	return &token, nil
}

// getClient returns an authenticated HTTP client, or nil when the user has
// not connected the integration.
func (g *GoogleAuth) getClient(ctx context.Context) (*http.Client, error) {
	token, err := g.getToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, nil
	}
	return g.oauthConfig.Client(ctx, token), nil
}
