// Package config loads the immutable process configuration.
// Everything here is read once at boot and injected by Fx; nothing mutates it afterwards.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *PostgresConfig `json:"postgres" yaml:"postgres"`

	Redis *RedisConfig `json:"redis" yaml:"redis"`

	Token *TokenConfig `json:"token" yaml:"token"`

	Auth *AuthConfig `json:"auth" yaml:"auth"`

	// PubSub configuration for auth event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// PostgresConfig defines the primary database connection.
type PostgresConfig struct {
	Host         string        `json:"host" yaml:"host"`
	Port         int           `json:"port" yaml:"port"`
	UserName     string        `json:"username" yaml:"username"`
	Password     string        `json:"password" yaml:"password"`
	Database     string        `json:"database" yaml:"database"`
	SSLMode      string        `json:"sslMode" yaml:"sslMode"`
	MaxOpenConns int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	MaxLifetime  time.Duration `json:"maxLifetime" yaml:"maxLifetime"`
}

// RedisConfig defines the Redis connection used by the access-token denylist.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// TokenConfig carries the per-token-type secret material and lifetimes.
// The access token pair is asymmetric (RS256); every other type is a shared secret (HS256).
type TokenConfig struct {
	// AppID is the issuer claim stamped into every token.
	AppID string `json:"appId" yaml:"appId"`

	// Domain is the expected audience. It may be an exact value or a regexp
	// pattern (anchored with ^...$) matched against the token's audience claims.
	Domain string `json:"domain" yaml:"domain"`

	Access        AccessTokenConfig    `json:"access" yaml:"access"`
	Refresh       SymmetricTokenConfig `json:"refresh" yaml:"refresh"`
	Confirmation  SymmetricTokenConfig `json:"confirmation" yaml:"confirmation"`
	ResetPassword SymmetricTokenConfig `json:"resetPassword" yaml:"resetPassword"`
}

// AccessTokenConfig holds the RSA key pair for access tokens, PEM encoded.
// The private key never leaves this service; the public key may be distributed to verifiers.
type AccessTokenConfig struct {
	PrivateKeyPEM string        `json:"privateKeyPem" yaml:"privateKeyPem"`
	PublicKeyPEM  string        `json:"publicKeyPem" yaml:"publicKeyPem"`
	TTL           time.Duration `json:"ttl" yaml:"ttl"`
}

// SymmetricTokenConfig holds a shared HMAC secret and lifetime for one token type.
type SymmetricTokenConfig struct {
	Secret string        `json:"secret" yaml:"secret"`
	TTL    time.Duration `json:"ttl" yaml:"ttl"`
}

// AuthConfig defines authentication-related configuration.
type AuthConfig struct {
	BcryptCost        int `json:"bcryptCost" yaml:"bcryptCost"`
	MaxActiveSessions int `json:"maxActiveSessions" yaml:"maxActiveSessions"`
}

// PubSubConfig defines Pub/Sub configuration for auth event publishing.
type PubSubConfig struct {
	// Provider type: "local" for local HTTP push emulation or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// LoadWithEnv loads <env>.yaml through koanf and layers environment variables on top.
// Env vars map to config paths by replacing '_' with '.': TOKEN_APPID overrides token.appId.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for the config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return strings.ReplaceAll(strings.ToLower(k), "_", "."), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive so env overrides match camelCase fields)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production hardening
// (secure cookies, strict transport).
func (cfg *Config) IsProduction() bool {
	return strings.EqualFold(cfg.Env.Env, "production")
}

func (cfg *Config) validate() error {
	if cfg.Token == nil {
		return errors.New("token configuration is required")
	}
	if cfg.Token.AppID == "" || cfg.Token.Domain == "" {
		return errors.New("token appId and domain must be provided")
	}
	if cfg.Token.Access.PrivateKeyPEM == "" || cfg.Token.Access.PublicKeyPEM == "" {
		return errors.New("access token key pair must be provided")
	}
	for _, symmetric := range []SymmetricTokenConfig{
		cfg.Token.Refresh, cfg.Token.Confirmation, cfg.Token.ResetPassword,
	} {
		if symmetric.Secret == "" {
			return errors.New("symmetric token secrets must be provided")
		}
	}

	return nil
}
