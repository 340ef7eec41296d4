// internal/config/database.go
package config

import (
	"net"
	"net/url"
)

// DSN renders the connection string in URL form. Credentials go through
// url.UserPassword so passwords with reserved characters survive intact.
func (d *DatabaseConfig) DSN() string {
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, d.Port),
		Path:   d.Database,
	}

	query := url.Values{}
	query.Set("sslmode", d.SSLMode)
	dsn.RawQuery = query.Encode()

	return dsn.String()
}
