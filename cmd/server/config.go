package main

import (
	"fmt"
	"time"
)

// BaseConfig is the application configuration tree. Values are seeded with
// defaults and overridden by the config container from files and env vars.
type BaseConfig struct {
	Auth        *Auth        `json:"auth" koanf:"auth"`
	Server      *Server      `json:"server" koanf:"server"`
	Persistence *Persistence `json:"persistence" koanf:"persistence"`
}

func (a *BaseConfig) Validate() error {
	if a.Auth == nil || a.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}
	if a.Persistence == nil || a.Persistence.DSN == "" {
		return fmt.Errorf("persistence.dsn is required")
	}
	return nil
}

func (a *BaseConfig) GetAuth() *Auth               { return a.Auth }
func (a *BaseConfig) GetServer() *Server           { return a.Server }
func (a *BaseConfig) GetPersistence() *Persistence { return a.Persistence }

// Auth satisfies the auth package Config interface.
type Auth struct {
	SigningKey      string   `json:"signing_key" koanf:"signing_key"`
	SigningMethod   string   `json:"signing_method" koanf:"signing_method"`
	ContextKey      string   `json:"context_key" koanf:"context_key"`
	TokenExpiration int      `json:"token_expiration" koanf:"token_expiration"`
	TokenLookup     string   `json:"token_lookup" koanf:"token_lookup"`
	AuthScheme      string   `json:"auth_scheme" koanf:"auth_scheme"`
	Issuer          string   `json:"issuer" koanf:"issuer"`
	Audience        []string `json:"audience" koanf:"audience"`
}

func (a *Auth) GetSigningKey() string    { return a.SigningKey }
func (a *Auth) GetSigningMethod() string { return a.SigningMethod }
func (a *Auth) GetContextKey() string    { return a.ContextKey }
func (a *Auth) GetTokenExpiration() int  { return a.TokenExpiration }
func (a *Auth) GetTokenLookup() string   { return a.TokenLookup }
func (a *Auth) GetAuthScheme() string    { return a.AuthScheme }
func (a *Auth) GetIssuer() string        { return a.Issuer }
func (a *Auth) GetAudience() []string    { return a.Audience }

// Server holds the HTTP listener options.
type Server struct {
	Addr string `json:"addr" koanf:"addr"`
}

func (s *Server) GetAddr() string { return s.Addr }

// Persistence holds the database options the persistence client consumes.
type Persistence struct {
	Debug                 bool   `json:"debug" koanf:"debug"`
	Driver                string `json:"driver" koanf:"driver"`
	DSN                   string `json:"dsn" koanf:"dsn"`
	Server                string `json:"server" koanf:"server"`
	Database              string `json:"database" koanf:"database"`
	Username              string `json:"username" koanf:"username"`
	Password              string `json:"password" koanf:"password"`
	PingTimeoutExpression string `json:"ping_timeout" koanf:"ping_timeout"`
}

func (p *Persistence) GetDebug() bool      { return p.Debug }
func (p *Persistence) GetDriver() string   { return p.Driver }
func (p *Persistence) GetDSN() string      { return p.DSN }
func (p *Persistence) GetServer() string   { return p.Server }
func (p *Persistence) GetDatabase() string { return p.Database }
func (p *Persistence) GetUsername() string { return p.Username }
func (p *Persistence) GetPassword() string { return p.Password }

func (p *Persistence) GetPingTimeout() time.Duration {
	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

// DefaultConfig seeds the tree before the container applies overrides.
func DefaultConfig() *BaseConfig {
	return &BaseConfig{
		Auth: &Auth{
			SigningKey:      "change-me-in-production",
			SigningMethod:   "HS256",
			ContextKey:      "user",
			TokenExpiration: 2,
			TokenLookup:     "header:Authorization",
			AuthScheme:      "Bearer",
			Issuer:          "go-spa-auth",
			Audience:        []string{"spa"},
		},
		Server: &Server{
			Addr: ":3001",
		},
		Persistence: &Persistence{
			Driver:                "sqlite",
			DSN:                   "file:app.db?cache=shared&_pragma=foreign_keys(1)",
			PingTimeoutExpression: "5s",
		},
	}
}
