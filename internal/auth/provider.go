package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/desertthunder/memoru/internal/models"
	"github.com/desertthunder/memoru/internal/server"
	"github.com/desertthunder/memoru/internal/shared"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// TokenStore persists the session between runs.
//
// Load returns an error wrapping [shared.ErrNotAuthenticated] when nothing is stored.
type TokenStore interface {
	Load() (*models.Session, error)
	Save(session *models.Session) error
	Delete() error
}

// Provider is an OIDC session provider.
type Provider struct {
	cfg      shared.OIDCConfig
	oauth    *oauth2.Config
	oidc     *oidc.Provider
	verifier *oidc.IDTokenVerifier
	store    TokenStore
	logger   *log.Logger

	httpClient *http.Client
	browser    shared.BrowserOpener
	out        io.Writer
	now        func() time.Time
}

// Option configures a [Provider].
type Option func(*Provider)

// WithHTTPClient sets the client used for discovery, key fetching and token requests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// WithBrowser replaces the function that opens the authorization URL.
func WithBrowser(open shared.BrowserOpener) Option {
	return func(p *Provider) { p.browser = open }
}

// WithOutput sets where login prompts are written. Defaults to stderr.
func WithOutput(w io.Writer) Option {
	return func(p *Provider) { p.out = w }
}

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// NewProvider builds a provider from config. With an issuer set it performs OIDC discovery.
func NewProvider(ctx context.Context, cfg shared.OIDCConfig, store TokenStore, logger *log.Logger, opts ...Option) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: oidc.client_id", shared.ErrMissingConfig)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	p := &Provider{
		cfg:     cfg,
		store:   store,
		logger:  shared.WithLogger(logger, "component", "auth"),
		browser: shared.OpenBrowser,
		out:     os.Stderr,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email", oidc.ScopeOfflineAccess}
	}

	p.oauth = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL(),
		Scopes:       scopes,
	}

	switch {
	case cfg.Issuer != "":
		provider, err := oidc.NewProvider(p.context(ctx), cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("failed to discover OIDC provider %s: %w", cfg.Issuer, err)
		}
		p.oidc = provider
		p.verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
		p.oauth.Endpoint = provider.Endpoint()
	case cfg.AuthURL != "" && cfg.TokenURL != "":
		p.oauth.Endpoint = oauth2.Endpoint{AuthURL: cfg.AuthURL, TokenURL: cfg.TokenURL}
	default:
		return nil, fmt.Errorf("%w: oidc.issuer or oidc.auth_url and oidc.token_url are required", shared.ErrInvalidConfig)
	}

	return p, nil
}

// context attaches the configured HTTP client for the oauth2 and oidc packages.
func (p *Provider) context(ctx context.Context) context.Context {
	if p.httpClient == nil {
		return ctx
	}
	return oidc.ClientContext(ctx, p.httpClient)
}

// Endpoint returns the authorization and token URLs in use.
func (p *Provider) Endpoint() oauth2.Endpoint {
	return p.oauth.Endpoint
}

// AccessToken returns the stored access token, or "" when signed out.
func (p *Provider) AccessToken(ctx context.Context) (string, error) {
	session, err := p.store.Load()
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return session.AccessToken, nil
}

// RefreshToken renews the access token with the stored refresh token and saves the result.
func (p *Provider) RefreshToken(ctx context.Context) error {
	session, err := p.store.Load()
	if err != nil && !errors.Is(err, shared.ErrNotAuthenticated) {
		return fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
	}
	if !session.CanRefresh() {
		return fmt.Errorf("%w: %w", shared.ErrRefreshFailed, shared.ErrNoRefreshToken)
	}

	p.logger.Debug("requesting token refresh")

	src := p.oauth.TokenSource(p.context(ctx), &oauth2.Token{RefreshToken: session.RefreshToken})
	token, err := src.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
	}

	next := p.sessionFromToken(token)
	if next.RefreshToken == "" {
		next.RefreshToken = session.RefreshToken
	}
	if next.IDToken == "" {
		next.IDToken = session.IDToken
	}
	next.CreatedAt = session.CreatedAt

	if err := p.store.Save(next); err != nil {
		return fmt.Errorf("%w: failed to save session: %w", shared.ErrRefreshFailed, err)
	}
	return nil
}

// Login runs the browser sign-in and stores the new session.
//
// The loopback listener is bound first so the redirect URL carries the real port.
func (p *Provider) Login(ctx context.Context) error {
	state := uuid.NewString()
	nonce := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	handler := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(p.logger))
	router.Handler(handler)

	loopback, err := server.Listen(p.cfg.RedirectAddr(), router)
	if err != nil {
		return err
	}
	defer func() {
		if err := loopback.Shutdown(); err != nil {
			p.logger.Warn("error shutting down callback server", "error", err)
		}
	}()

	oauthCfg := *p.oauth
	oauthCfg.RedirectURL = "http://" + loopback.Addr() + "/callback"

	authURL := oauthCfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier), oidc.Nonce(nonce))

	p.logger.Info("starting login", "redirect", oauthCfg.RedirectURL, "routes", router.Routes())
	fmt.Fprintln(p.out, "→ Opening browser to sign in...")
	if err := p.browser(authURL); err != nil {
		p.logger.Warn("failed to open browser automatically", "error", err)
		fmt.Fprintf(p.out, "⚠ Could not open browser automatically.\nPlease open this URL in your browser:\n%s\n\n", authURL)
	}

	timeout := p.cfg.LoginTimeout()
	fmt.Fprintf(p.out, "→ Waiting for sign-in (%s timeout)...\n", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var result server.CallbackResult
	select {
	case result = <-handler.Result():
	case err := <-loopback.Errors():
		return fmt.Errorf("callback server error: %w", err)
	case <-timer.C:
		return fmt.Errorf("%w: sign-in timed out after %s", shared.ErrTimeout, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}

	if result.Error() != nil {
		return result.Error()
	}

	token, err := oauthCfg.Exchange(p.context(ctx), result.Code, oauth2.VerifierOption(verifier))
	if err != nil {
		return fmt.Errorf("%w: token exchange failed: %w", shared.ErrAuthFailed, err)
	}

	session := p.sessionFromToken(token)
	if err := p.verifyIDToken(ctx, session.IDToken, nonce); err != nil {
		return err
	}

	session.CreatedAt = p.now()
	if err := p.store.Save(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	p.logger.Info("login complete")
	return nil
}

// verifyIDToken checks signature, audience and nonce when the provider was discovered.
func (p *Provider) verifyIDToken(ctx context.Context, raw, nonce string) error {
	if p.verifier == nil {
		return nil
	}
	if raw == "" {
		return fmt.Errorf("%w: no id_token in token response", shared.ErrAuthFailed)
	}

	idToken, err := p.verifier.Verify(p.context(ctx), raw)
	if err != nil {
		return fmt.Errorf("%w: id token verification failed: %w", shared.ErrAuthFailed, err)
	}
	if idToken.Nonce != nonce {
		return fmt.Errorf("%w: invalid nonce", shared.ErrAuthFailed)
	}
	return nil
}

// Logout deletes the stored session. When the provider advertises an end-session endpoint the
// returned URL signs the user out of the provider too; otherwise it is empty.
func (p *Provider) Logout(ctx context.Context) (string, error) {
	session, err := p.store.Load()
	if err != nil && !errors.Is(err, shared.ErrNotAuthenticated) {
		return "", err
	}

	if err := p.store.Delete(); err != nil {
		return "", fmt.Errorf("failed to delete session: %w", err)
	}

	if p.oidc == nil {
		return "", nil
	}

	var claims struct {
		EndSession string `json:"end_session_endpoint"`
	}
	if err := p.oidc.Claims(&claims); err != nil || claims.EndSession == "" {
		return "", nil
	}

	u, err := url.Parse(claims.EndSession)
	if err != nil {
		return "", nil
	}
	q := u.Query()
	q.Set("client_id", p.cfg.ClientID)
	if session != nil && session.IDToken != "" {
		q.Set("id_token_hint", session.IDToken)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Status describes the stored session.
type Status struct {
	Authenticated bool
	Expired       bool
	CanRefresh    bool
	ExpiresAt     time.Time
	Token         *TokenInfo
}

// Status reports whether a session is stored and, for JWT access tokens, who it belongs to.
func (p *Provider) Status(ctx context.Context) (*Status, error) {
	session, err := p.store.Load()
	if errors.Is(err, shared.ErrNotAuthenticated) {
		return &Status{}, nil
	}
	if err != nil {
		return nil, err
	}

	status := &Status{
		Authenticated: true,
		Expired:       session.Expired(p.now()),
		CanRefresh:    session.CanRefresh(),
		ExpiresAt:     session.ExpiresAt,
	}

	if info, err := InspectToken(session.AccessToken); err == nil {
		status.Token = info
	} else if info, err := InspectToken(session.IDToken); err == nil {
		status.Token = info
	}
	return status, nil
}

func (p *Provider) sessionFromToken(token *oauth2.Token) *models.Session {
	idToken, _ := token.Extra("id_token").(string)
	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	now := p.now()
	return &models.Session{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		IDToken:      idToken,
		TokenType:    tokenType,
		ExpiresAt:    token.Expiry,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
