// Package credentials resolves the database credentials the gateway
// connects with. A secret payload is a JSON document:
//
//	{"driver":"clickhouse","host":"ch.internal","port":9440,"username":"svc",
//	 "password":"...","database":"bartender","secure":true}
//
// or, alternatively, a ready-made "dsn".
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const (
	DriverClickHouse = "clickhouse"
	DriverMySQL      = "mysql"
)

// Credentials describe one database connection.
type Credentials struct {
	Driver    string `json:"driver"`
	RawDSN    string `json:"dsn"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Database  string `json:"database"`
	Secure    bool   `json:"secure"`
	ProjectID string `json:"project_id"`
}

// Provider resolves a secret reference into Credentials.
type Provider interface {
	Resolve(ctx context.Context, project, secret string) (Credentials, error)
}

// Parse decodes a secret payload.
func Parse(payload []byte) (Credentials, error) {
	var c Credentials
	if err := json.Unmarshal(payload, &c); err != nil {
		return Credentials{}, fmt.Errorf("decode credentials: %w", err)
	}
	if c.Driver == "" {
		c.Driver = DriverClickHouse
	}
	if err := c.Validate(); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

// Validate checks the credentials can produce a DSN.
func (c Credentials) Validate() error {
	switch c.Driver {
	case DriverClickHouse, DriverMySQL:
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.RawDSN == "" && c.Host == "" {
		return errors.New("credentials need either dsn or host")
	}
	return nil
}

// DSN renders the connection string for the credentials' driver.
func (c Credentials) DSN() string {
	if c.RawDSN != "" {
		return c.RawDSN
	}

	switch c.Driver {
	case DriverMySQL:
		port := c.Port
		if port == 0 {
			port = 3306
		}
		cfg := mysql.NewConfig()
		cfg.User = c.Username
		cfg.Passwd = c.Password
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
		cfg.DBName = c.Database
		cfg.ParseTime = true
		if c.Secure {
			cfg.TLSConfig = "true"
		}
		return cfg.FormatDSN()
	default:
		port := c.Port
		if port == 0 {
			port = 9000
			if c.Secure {
				port = 9440
			}
		}
		u := url.URL{
			Scheme: "clickhouse",
			Host:   net.JoinHostPort(c.Host, strconv.Itoa(port)),
			Path:   "/" + c.Database,
		}
		if c.Username != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		}
		if c.Secure {
			u.RawQuery = url.Values{"secure": {"true"}}.Encode()
		}
		return u.String()
	}
}

// Static resolves to fixed credentials, whatever the reference.
type Static struct {
	Credentials Credentials
}

func (s Static) Resolve(_ context.Context, _, _ string) (Credentials, error) {
	if s.Credentials.Driver == "" {
		s.Credentials.Driver = DriverClickHouse
	}
	if err := s.Credentials.Validate(); err != nil {
		return Credentials{}, err
	}
	return s.Credentials, nil
}

// FromDSN wraps a DSN, inferring the driver from its scheme.
func FromDSN(dsn string) Credentials {
	driver := DriverMySQL
	if strings.HasPrefix(dsn, "clickhouse://") || strings.HasPrefix(dsn, "tcp://") {
		driver = DriverClickHouse
	}
	return Credentials{Driver: driver, RawDSN: dsn}
}
