package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/digitaldrywood/timetracker/internal/google"
	"github.com/digitaldrywood/timetracker/internal/secret"
)

const (
	DefaultConfigFile = ".local/config.toml"

	DefaultClientSecretParam = "/timetracker/oauth-client-secret"
	DefaultPrivateKeyParam   = "/timetracker/service-account-private-key"
)

type Config struct {
	DataDir          string
	TokenPath        string
	OAuthRedirectURL string

	OAuthClientID     string
	OAuthClientSecret string

	UseImpersonation          bool
	ImpersonateServiceAccount string

	ServiceAccountEmail      string
	ServiceAccountPrivateKey string
}

// fileConfig is the optional TOML file. Secrets are never read from it.
type fileConfig struct {
	DataDir                   string `toml:"data_dir"`
	TokenPath                 string `toml:"token_path"`
	OAuthRedirectURL          string `toml:"oauth_redirect_url"`
	OAuthClientID             string `toml:"oauth_client_id"`
	UseImpersonation          *bool  `toml:"use_impersonation"`
	ImpersonateServiceAccount string `toml:"impersonate_service_account"`
	ServiceAccountEmail       string `toml:"service_account_email"`
}

// Load reads the configuration from the TOML file named by
// TIMETRACKER_CONFIG (default .local/config.toml, ignored if absent) and
// then from TIMETRACKER_* environment variables, which take precedence.
// Secrets not set directly are looked up through resolver. Missing
// credential settings are not an error here; they are reported when a
// credential provider is built from the configuration.
func Load(ctx context.Context, resolver secret.Resolver) (*Config, error) {
	path := os.Getenv("TIMETRACKER_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	file, err := loadFile(path)
	if err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
		return nil, err
	}

	cfg := &Config{
		DataDir:                   env("TIMETRACKER_DATA_DIR", file.DataDir),
		TokenPath:                 env("TIMETRACKER_TOKEN_PATH", file.TokenPath),
		OAuthRedirectURL:          env("TIMETRACKER_OAUTH_REDIRECT_URL", file.OAuthRedirectURL),
		OAuthClientID:             env("TIMETRACKER_OAUTH_CLIENT_ID", file.OAuthClientID),
		OAuthClientSecret:         os.Getenv("TIMETRACKER_OAUTH_CLIENT_SECRET"),
		ImpersonateServiceAccount: env("TIMETRACKER_IMPERSONATE_SERVICE_ACCOUNT", file.ImpersonateServiceAccount),
		ServiceAccountEmail:       env("TIMETRACKER_SERVICE_ACCOUNT_EMAIL", file.ServiceAccountEmail),
		ServiceAccountPrivateKey:  os.Getenv("TIMETRACKER_SERVICE_ACCOUNT_PRIVATE_KEY"),
	}
	if file.UseImpersonation != nil {
		cfg.UseImpersonation = *file.UseImpersonation
	}

	// Set defaults if not provided
	if cfg.DataDir == "" {
		cfg.DataDir = ".local"
	}
	if cfg.TokenPath == "" {
		cfg.TokenPath = filepath.Join(cfg.DataDir, "token.json")
	}
	if cfg.OAuthRedirectURL == "" {
		cfg.OAuthRedirectURL = "http://localhost:8080/callback"
	}

	if v := os.Getenv("TIMETRACKER_USE_IMPERSONATION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("TIMETRACKER_USE_IMPERSONATION must be true or false, got %q", v)
		}
		cfg.UseImpersonation = b
	}

	if resolver != nil {
		if cfg.OAuthClientSecret == "" {
			cfg.OAuthClientSecret = resolve(ctx, resolver, "TIMETRACKER_OAUTH_CLIENT_SECRET_PARAM", DefaultClientSecretParam)
		}
		if cfg.ServiceAccountPrivateKey == "" && cfg.ServiceAccountEmail != "" {
			cfg.ServiceAccountPrivateKey = resolve(ctx, resolver, "TIMETRACKER_SERVICE_ACCOUNT_KEY_PARAM", DefaultPrivateKeyParam)
		}
	}

	return cfg, nil
}

func loadFile(path string) (fileConfig, error) {
	var file fileConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return file, fmt.Errorf("failed to read config file: %w", err)
	}

	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return file, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		log.Printf("WARNING: unknown key %q in %s", key.String(), path)
	}

	return file, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func resolve(ctx context.Context, resolver secret.Resolver, paramEnv, fallback string) string {
	param := os.Getenv(paramEnv)
	explicit := param != ""
	if !explicit {
		param = fallback
	}

	// An unset default parameter just means the secret is configured elsewhere.
	v, err := resolver.Resolve(ctx, param)
	if err != nil {
		if explicit || !errors.Is(err, secret.ErrNotFound) {
			log.Printf("WARNING: failed to resolve %s: %v", param, err)
		}
		return ""
	}

	return v
}

// Providers returns the credential provider settings.
func (c *Config) Providers() google.ProviderConfig {
	return google.ProviderConfig{
		UseImpersonation:          c.UseImpersonation,
		ClientID:                  c.OAuthClientID,
		ClientSecret:              c.OAuthClientSecret,
		RedirectURL:               c.OAuthRedirectURL,
		ImpersonateServiceAccount: c.ImpersonateServiceAccount,
	}
}
