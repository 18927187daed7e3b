package config

import (
	"net/url"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	IsTestMode bool `env:"TEST_MODE" envDefault:"false"`
	Port       int  `env:"PORT" envDefault:"9090"`

	Secret        string `env:"SECRET,required"`
	PostgresqlURL string `env:"POSTGRESQL_URL,required"`
	RedisURL      string `env:"REDIS_URL,required"`
	RabbitmqURL   string `env:"RABBITMQ_URL,required"`

	RabbitmqResetExchange string `env:"RABBITMQ_RESET_EXCHANGE" envDefault:"password-reset"`
	RabbitmqResetQueue    string `env:"RABBITMQ_RESET_QUEUE" envDefault:"password-reset-requested"`

	BcryptHasherCost   int           `env:"BCRYPT_HASHER_COST" envDefault:"10"`
	MinPasswordLength  int           `env:"MIN_PASSWORD_LENGTH" envDefault:"6"`
	ResetTokenTTL      time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	ResetProofLifetime time.Duration `env:"RESET_PROOF_LIFETIME" envDefault:"15m"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// UseLocalResetSender switches the notifier worker to logging reset links
	// instead of emailing them. Must stay off in production.
	UseLocalResetSender bool `env:"USE_LOCAL_RESET_SENDER" envDefault:"false"`

	AwsRegion                     string  `env:"AWS_REGION" envDefault:"us-east-1"`
	AwsAccessKey                  string  `env:"AWS_ACCESS_KEY"`
	AwsSecretKey                  string  `env:"AWS_SECRET_KEY"`
	AwsEmailSender                string  `env:"AWS_EMAIL_SENDER"`
	AwsEmailPasswordResetTemplate string  `env:"AWS_EMAIL_PASSWORD_RESET_TEMPLATE"`
	PasswordResetBaseURL          url.URL `env:"PASSWORD_RESET_BASE_URL" envDefault:"http://localhost:3000/reset/password"`
}

func Load() (*Config, error) {
	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, err
	}
	return config, nil
}
