// Package sqldb provides a database/sql backed record provider. It is
// registered for the mysql, postgres and sqlite URL schemes.
package sqldb

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/csvexport/internal"
	"github.com/shopmonkeyus/go-common/logger"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type sqlProvider struct {
	config    internal.ProviderConfig
	logger    logger.Logger
	db        *sql.DB
	driver    string
	maxParams int
}

var _ internal.Provider = (*sqlProvider)(nil)
var _ internal.ProviderLifecycle = (*sqlProvider)(nil)

// New returns a provider around an already opened database handle. Used by
// tests and callers that manage the connection themselves.
func New(db *sql.DB, driver string, maxParams int, models internal.ModelMap, logger logger.Logger) internal.Provider {
	return &sqlProvider{
		config: internal.ProviderConfig{Models: models, Logger: logger},
		logger: logger,
		db:     db,
		driver: driver, maxParams: maxParams,
	}
}

// Start the provider. This is called once at the beginning of the provider's
// lifecycle.
func (p *sqlProvider) Start(config internal.ProviderConfig) error {
	p.config = config
	p.logger = config.Logger
	dsn, err := dsnFromURL(p.driver, config.URL)
	if err != nil {
		return err
	}
	db, err := sql.Open(p.driver, dsn)
	if err != nil {
		return fmt.Errorf("unable to create connection: %w", err)
	}
	if err := db.PingContext(config.Context); err != nil {
		db.Close()
		return fmt.Errorf("unable to ping db: %w", err)
	}
	p.db = db
	p.logger.Debug("connected")
	return nil
}

// Stop the provider. This is called once at the end of the provider's
// lifecycle.
func (p *sqlProvider) Stop() error {
	if p.db != nil {
		err := p.db.Close()
		p.db = nil
		return err
	}
	return nil
}

// RecordSet returns a handle to the records of the named table.
func (p *sqlProvider) RecordSet(table string) (internal.RecordSet, error) {
	model := p.config.Models[table]
	if model == nil {
		return nil, errors.Newf("no model registered for table %s", table)
	}
	return &recordSet{p: p, model: *model}, nil
}

// dsnFromURL converts a data source URL into the driver's DSN form.
func dsnFromURL(driver string, urlString string) (string, error) {
	u, err := url.Parse(urlString)
	if err != nil {
		return "", fmt.Errorf("unable to parse url: %w", err)
	}
	switch driver {
	case "postgres":
		// lib/pq accepts the URL as-is
		return urlString, nil
	case "sqlite":
		if u.Path == "" && u.Host == "" && u.Opaque == "" {
			return "", errors.New("path is required in url which should be the database file")
		}
		if u.Opaque != "" {
			return u.Opaque, nil
		}
		return u.Host + u.Path, nil
	case "mysql":
		var dsn strings.Builder
		if u.User != nil {
			dsn.WriteString(u.User.Username())
			if pass, ok := u.User.Password(); ok {
				dsn.WriteString(":")
				dsn.WriteString(pass)
			}
			dsn.WriteString("@")
		}
		dsn.WriteString("tcp(")
		dsn.WriteString(u.Host)
		dsn.WriteString(")/")
		dsn.WriteString(strings.TrimPrefix(u.Path, "/"))
		if u.RawQuery != "" {
			dsn.WriteString("?")
			dsn.WriteString(u.RawQuery)
		}
		return dsn.String(), nil
	}
	return "", errors.Newf("unsupported driver: %s", driver)
}

func (p *sqlProvider) quote(name string) string {
	if p.driver == "mysql" {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

func (p *sqlProvider) placeholder(n int) string {
	if p.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func init() {
	internal.RegisterProvider("mysql", &sqlProvider{driver: "mysql", maxParams: 65535})
	internal.RegisterProvider("postgres", &sqlProvider{driver: "postgres", maxParams: 65535})
	internal.RegisterProvider("sqlite", &sqlProvider{driver: "sqlite", maxParams: 999})
}
