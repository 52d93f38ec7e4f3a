package google

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/impersonate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/digitaldrywood/timetracker/internal/sheetsync"
)

// ImpersonationLifetime is the lifetime of an impersonated credential.
const ImpersonationLifetime = 3600 * time.Second

// Provider turns a caller's token pair into an authenticated HTTP client.
// Every call returns a fresh client; nothing is cached between calls.
type Provider interface {
	Acquire(ctx context.Context, creds sheetsync.Credentials) (*http.Client, error)
}

// ProviderConfig selects and configures the credential strategy.
type ProviderConfig struct {
	UseImpersonation          bool
	ClientID                  string
	ClientSecret              string
	RedirectURL               string
	ImpersonateServiceAccount string
}

// NewProvider returns the impersonation provider if the toggle is set,
// otherwise the direct OAuth2 provider.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	if cfg.UseImpersonation {
		return NewImpersonationProvider(OAuthConfig(cfg), cfg.ImpersonateServiceAccount)
	}

	return NewDirectProvider(OAuthConfig(cfg))
}

// OAuthConfig returns the OAuth2 client configuration scoped to spreadsheet read/write.
func OAuthConfig(cfg ProviderConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{sheets.SpreadsheetsScope},
		Endpoint:     google.Endpoint,
	}
}

func token(creds sheetsync.Credentials) (*oauth2.Token, error) {
	if strings.TrimSpace(creds.AccessToken) == "" && strings.TrimSpace(creds.RefreshToken) == "" {
		return nil, fmt.Errorf("%w: no access or refresh token supplied", sheetsync.ErrAuthentication)
	}

	tok := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.Expiry,
	}

	// oauth2 treats a zero expiry as never expiring. With a refresh token at
	// hand, an access token of unknown age is refreshed on first use instead.
	if tok.Expiry.IsZero() && strings.TrimSpace(tok.RefreshToken) != "" {
		tok.Expiry = staleExpiry
	}

	return tok, nil
}

// staleExpiry marks a token as already expired.
var staleExpiry = time.Unix(1, 0)

// DirectProvider uses the caller's OAuth2 token as is. Refreshing is left
// to the HTTP transport and happens on first use.
type DirectProvider struct {
	config *oauth2.Config
}

func NewDirectProvider(config *oauth2.Config) (*DirectProvider, error) {
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("%w: OAuth client id and secret are required", sheetsync.ErrConfiguration)
	}

	return &DirectProvider{config: config}, nil
}

func (p *DirectProvider) Acquire(ctx context.Context, creds sheetsync.Credentials) (*http.Client, error) {
	tok, err := token(creds)
	if err != nil {
		return nil, err
	}

	return p.config.Client(ctx, tok), nil
}

// tokenSourceFunc exchanges the caller's token source for an impersonated one.
type tokenSourceFunc func(context.Context, impersonate.CredentialsConfig, oauth2.TokenSource) (oauth2.TokenSource, error)

func impersonatedSource(ctx context.Context, cfg impersonate.CredentialsConfig, source oauth2.TokenSource) (oauth2.TokenSource, error) {
	return impersonate.CredentialsTokenSource(ctx, cfg, option.WithTokenSource(source))
}

// ImpersonationProvider exchanges the caller's token for a short-lived
// credential of a fixed service account.
type ImpersonationProvider struct {
	config      *oauth2.Config
	target      string
	tokenSource tokenSourceFunc
}

func NewImpersonationProvider(config *oauth2.Config, serviceAccount string) (*ImpersonationProvider, error) {
	if strings.TrimSpace(serviceAccount) == "" {
		return nil, fmt.Errorf("%w: impersonation target service account is required", sheetsync.ErrConfiguration)
	}

	return &ImpersonationProvider{
		config:      config,
		target:      strings.TrimSpace(serviceAccount),
		tokenSource: impersonatedSource,
	}, nil
}

func (p *ImpersonationProvider) Acquire(ctx context.Context, creds sheetsync.Credentials) (*http.Client, error) {
	tok, err := token(creds)
	if err != nil {
		return nil, err
	}

	source := p.config.TokenSource(ctx, tok)
	ts, err := p.tokenSource(ctx, impersonate.CredentialsConfig{
		TargetPrincipal: p.target,
		Scopes:          []string{sheets.SpreadsheetsScope},
		Lifetime:        ImpersonationLifetime,
	}, source)
	if err != nil {
		return nil, fmt.Errorf("%w: impersonating %s: %w", sheetsync.ErrAuthentication, p.target, err)
	}

	impersonated, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: impersonating %s: %w", sheetsync.ErrAuthentication, p.target, err)
	}

	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(impersonated)), nil
}

// ServiceAccountProvider authenticates with a static service-account key.
// It ignores the caller's tokens and is meant for fallback tooling.
type ServiceAccountProvider struct {
	config *jwt.Config
}

func NewServiceAccountProvider(email, privateKey string) (*ServiceAccountProvider, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(privateKey) == "" {
		return nil, fmt.Errorf("%w: service account email and private key are required", sheetsync.ErrConfiguration)
	}

	return &ServiceAccountProvider{
		config: &jwt.Config{
			Email:      strings.TrimSpace(email),
			PrivateKey: []byte(NormalizePrivateKey(privateKey)),
			Scopes:     []string{sheets.SpreadsheetsScope},
			TokenURL:   google.JWTTokenURL,
		},
	}, nil
}

func (p *ServiceAccountProvider) Acquire(ctx context.Context, _ sheetsync.Credentials) (*http.Client, error) {
	return p.config.Client(ctx), nil
}

// NormalizePrivateKey converts literal \n sequences, as typed into an
// environment variable, into newlines.
func NormalizePrivateKey(key string) string {
	return strings.ReplaceAll(strings.TrimSpace(key), `\n`, "\n")
}

// Connector builds a Sheets API handle per sync from a Provider.
type Connector struct {
	provider Provider
}

func NewConnector(provider Provider) *Connector {
	return &Connector{provider: provider}
}

func (c *Connector) Connect(ctx context.Context, creds sheetsync.Credentials) (sheetsync.Spreadsheet, error) {
	client, err := c.provider.Acquire(ctx, creds)
	if err != nil {
		return nil, err
	}

	return NewSheetsClientFromHTTP(ctx, client)
}
