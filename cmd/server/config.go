package main

import (
	"os"
	"strconv"

	"github.com/usecaselabs/usecases"
	"gopkg.in/ini.v1"
)

// AppConfig carries everything the binary needs to wire the service.
// Values come from an INI file and can be overridden per key through
// the environment, which is how deployments inject secrets.
type AppConfig struct {
	Server struct {
		Address string
		Debug   bool
	}
	Database struct {
		DSN string
	}
	Auth struct {
		SigningKey         string
		PreviousSigningKey string
		TokenExpiration    int
		Issuer             string
	}
	SMTP usecases.SMTPConfig
}

// GetSigningKey returns the token signing secret
func (c *AppConfig) GetSigningKey() string { return c.Auth.SigningKey }

// GetTokenExpiration returns the token lifetime in hours
func (c *AppConfig) GetTokenExpiration() int { return c.Auth.TokenExpiration }

// GetIssuer returns the token issuer
func (c *AppConfig) GetIssuer() string { return c.Auth.Issuer }

// LoadConfig reads path and applies environment overrides. A missing
// file is not an error so the binary can run from env alone.
func LoadConfig(path string) (*AppConfig, error) {
	cfg, err := ini.LooseLoad(path)
	if err != nil {
		return nil, err
	}

	out := &AppConfig{}

	server := cfg.Section("server")
	out.Server.Address = server.Key("address").MustString(":3000")
	out.Server.Debug = server.Key("debug").MustBool(false)

	database := cfg.Section("database")
	out.Database.DSN = database.Key("dsn").MustString("file:usecases.db?cache=shared&mode=rwc")

	auth := cfg.Section("auth")
	out.Auth.SigningKey = auth.Key("signing_key").String()
	out.Auth.PreviousSigningKey = auth.Key("previous_signing_key").String()
	out.Auth.TokenExpiration = auth.Key("token_expiration").MustInt(1)
	out.Auth.Issuer = auth.Key("issuer").MustString("usecases")

	smtp := cfg.Section("smtp")
	out.SMTP.Host = smtp.Key("host").String()
	out.SMTP.Port = smtp.Key("port").MustInt(587)
	out.SMTP.Username = smtp.Key("username").String()
	out.SMTP.Password = smtp.Key("password").String()
	out.SMTP.From = smtp.Key("from").String()

	applyEnv(out)

	return out, nil
}

func applyEnv(c *AppConfig) {
	setString(&c.Server.Address, "HTTP_ADDRESS")
	setBool(&c.Server.Debug, "HTTP_DEBUG")
	setString(&c.Database.DSN, "DATABASE_DSN")
	setString(&c.Auth.SigningKey, "JWT_SIGNING_KEY")
	setString(&c.Auth.PreviousSigningKey, "JWT_SIGNING_KEY_PREVIOUS")
	setInt(&c.Auth.TokenExpiration, "JWT_TOKEN_EXPIRATION")
	setString(&c.Auth.Issuer, "JWT_ISSUER")
	setString(&c.SMTP.Host, "SMTP_HOST")
	setInt(&c.SMTP.Port, "SMTP_PORT")
	setString(&c.SMTP.Username, "SMTP_USERNAME")
	setString(&c.SMTP.Password, "SMTP_PASSWORD")
	setString(&c.SMTP.From, "SMTP_FROM")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
