// Package secret looks up the OAuth client secret and the legacy
// service-account key. Parameter names are SSM paths; the env backend maps
// them to TIMETRACKER_* variables.
package secret

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ErrNotFound is returned when a backend has no value for a parameter.
var ErrNotFound = errors.New("secret not set")

type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

type Resolver interface {
	Resolve(ctx context.Context, name string) (string, error)
}

// SSMResolver reads SecureString parameters, decrypted.
type SSMResolver struct {
	client SSMClient
}

func NewSSMResolver(client SSMClient) *SSMResolver {
	return &SSMResolver{client: client}
}

func (r *SSMResolver) Resolve(ctx context.Context, name string) (string, error) {
	out, err := r.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})

	var missing *types.ParameterNotFound
	switch {
	case errors.As(err, &missing):
		return "", fmt.Errorf("%w: no SSM parameter %s", ErrNotFound, name)
	case err != nil:
		return "", fmt.Errorf("unable to read SSM parameter %s: %w", name, err)
	case out.Parameter == nil || aws.ToString(out.Parameter.Value) == "":
		return "", fmt.Errorf("%w: SSM parameter %s is empty", ErrNotFound, name)
	}

	return aws.ToString(out.Parameter.Value), nil
}

// EnvResolver reads parameters from the environment, so that
// "/timetracker/oauth-client-secret" is TIMETRACKER_OAUTH_CLIENT_SECRET.
type EnvResolver struct{}

func NewEnvResolver() *EnvResolver {
	return &EnvResolver{}
}

func (EnvResolver) Resolve(_ context.Context, name string) (string, error) {
	key := envKey(name)
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%w: %s is empty (parameter %s)", ErrNotFound, key, name)
	}

	return v, nil
}

func envKey(name string) string {
	segments := strings.FieldsFunc(name, func(r rune) bool { return r == '/' })
	return strings.ToUpper(strings.ReplaceAll(strings.Join(segments, "_"), "-", "_"))
}
