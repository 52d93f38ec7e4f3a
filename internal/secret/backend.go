package secret

import (
	"context"
	"fmt"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// NewResolverFromEnv returns the resolver named by TIMETRACKER_SECRETS_BACKEND:
// "env" (the default) or "ssm".
func NewResolverFromEnv(ctx context.Context) (Resolver, error) {
	switch backend := strings.ToLower(strings.TrimSpace(os.Getenv("TIMETRACKER_SECRETS_BACKEND"))); backend {
	case "", "env":
		return NewEnvResolver(), nil

	case "ssm":
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
		}
		return NewSSMResolver(ssm.NewFromConfig(cfg)), nil

	default:
		return nil, fmt.Errorf("unknown secrets backend %q (expected env or ssm)", backend)
	}
}
