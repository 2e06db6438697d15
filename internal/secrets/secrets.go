// Package secrets resolves named secrets for external collaborators.
// Process environment variables win for local development; everything else
// comes from AWS Secrets Manager under the /apikeys/ prefix.
package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	secretPrefix  = "/apikeys/"
	defaultRegion = "us-east-1"
	cacheSize     = 32
)

// Resolver yields the value of a named secret.
type Resolver interface {
	Secret(ctx context.Context, name string) (string, error)
}

// SecretsManagerAPI is the subset of the AWS Secrets Manager client the
// store needs; it keeps the store testable without AWS.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Store resolves secrets from the environment first, then AWS Secrets
// Manager, caching every resolved value. Safe for concurrent use.
type Store struct {
	sm        SecretsManagerAPI
	cache     *lru.Cache[string, string]
	lookupEnv func(string) (string, bool)
	logger    *slog.Logger
}

// NewStore creates a Store backed by the given Secrets Manager client.
// sm may be nil; resolution then only succeeds through the environment.
func NewStore(sm SecretsManagerAPI, logger *slog.Logger) (*Store, error) {
	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating secret cache: %w", err)
	}
	return &Store{
		sm:        sm,
		cache:     cache,
		lookupEnv: os.LookupEnv,
		logger:    logger,
	}, nil
}

// NewStoreFromAWS creates a Store with a real Secrets Manager client using
// the default AWS credential chain.
func NewStoreFromAWS(ctx context.Context, logger *slog.Logger) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(defaultRegion))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewStore(secretsmanager.NewFromConfig(cfg), logger)
}

// Secret resolves the named secret. Resolution order: cache, process
// environment, AWS Secrets Manager (/apikeys/<name>, AWSCURRENT stage).
func (s *Store) Secret(ctx context.Context, name string) (string, error) {
	if v, ok := s.cache.Get(name); ok {
		s.logger.Debug("returning cached secret", "component", "secrets", "name", name)
		return v, nil
	}

	if v, ok := s.lookupEnv(name); ok && v != "" {
		s.logger.Info("returning secret from environment", "component", "secrets", "name", name)
		s.cache.Add(name, v)
		return v, nil
	}

	if s.sm == nil {
		return "", fmt.Errorf("secret %q not present in environment and no secrets manager configured", name)
	}

	out, err := s.sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretPrefix + name),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return "", fmt.Errorf("retrieving secret %q: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %q has no string value", name)
	}

	s.logger.Info("retrieved secret", "component", "secrets", "name", name)
	s.cache.Add(name, *out.SecretString)
	return *out.SecretString, nil
}
