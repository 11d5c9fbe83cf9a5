package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/commercive/dashboard-api/internal/config"
)

// SecretGetter is the part of the Secrets Manager client used here.
type SecretGetter interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// NewSecretsClient builds a client from the default AWS credential chain.
func NewSecretsClient(ctx context.Context) (*secretsmanager.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// ResolveCredentials fills User and Password from the secret named by
// SecretID. Explicit credentials or a DATABASE_URL are left untouched.
func ResolveCredentials(ctx context.Context, cfg config.DatabaseConfig, sm SecretGetter) (config.DatabaseConfig, error) {
	if cfg.URL != "" || cfg.SecretID == "" || (cfg.User != "" && cfg.Password != "") {
		return cfg, nil
	}
	out, err := sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(cfg.SecretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return cfg, fmt.Errorf("get secret %s: %w", cfg.SecretID, err)
	}
	if out.SecretString == nil {
		return cfg, errors.New("database secret has no string value")
	}
	var c credentials
	if err := json.Unmarshal([]byte(*out.SecretString), &c); err != nil {
		return cfg, fmt.Errorf("decode database secret: %w", err)
	}
	if c.Username == "" || c.Password == "" {
		return cfg, errors.New("database secret lacks username or password")
	}
	cfg.User, cfg.Password = c.Username, c.Password
	return cfg, nil
}
