// Package gormdb provides a gorm backed record provider for the postgresql
// and sqlserver URL schemes.
package gormdb

import (
	"fmt"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/csvexport/internal"
	"github.com/shopmonkeyus/go-common/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
)

type gormProvider struct {
	config    internal.ProviderConfig
	logger    logger.Logger
	db        *gorm.DB
	dialect   string
	maxParams int
	aliases   []string
}

var _ internal.Provider = (*gormProvider)(nil)
var _ internal.ProviderLifecycle = (*gormProvider)(nil)
var _ internal.ProviderAlias = (*gormProvider)(nil)

func (p *gormProvider) Aliases() []string {
	return p.aliases
}

// Start the provider. This is called once at the beginning of the provider's
// lifecycle.
func (p *gormProvider) Start(config internal.ProviderConfig) error {
	p.config = config
	p.logger = config.Logger
	u, err := url.Parse(config.URL)
	if err != nil {
		return fmt.Errorf("unable to parse url: %w", err)
	}
	// gorm dialectors want the canonical scheme, not an alias
	u.Scheme = p.dialect
	var dialector gorm.Dialector
	switch p.dialect {
	case "postgresql":
		dialector = postgres.Open(u.String())
	case "sqlserver":
		dialector = sqlserver.Open(u.String())
	default:
		return errors.Newf("unsupported dialect: %s", p.dialect)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: newLogAdapter(p.logger)})
	if err != nil {
		return fmt.Errorf("unable to create connection: %w", err)
	}
	p.db = db.WithContext(config.Context)
	p.logger.Debug("connected")
	return nil
}

// Stop the provider. This is called once at the end of the provider's
// lifecycle.
func (p *gormProvider) Stop() error {
	if p.db != nil {
		db, err := p.db.DB()
		p.db = nil
		if err != nil {
			return err
		}
		return db.Close()
	}
	return nil
}

// RecordSet returns a handle to the records of the named table.
func (p *gormProvider) RecordSet(table string) (internal.RecordSet, error) {
	model := p.config.Models[table]
	if model == nil {
		return nil, errors.Newf("no model registered for table %s", table)
	}
	return &recordSet{p: p, model: *model}, nil
}

func init() {
	internal.RegisterProvider("postgresql", &gormProvider{dialect: "postgresql", maxParams: 65535, aliases: []string{"pg"}})
	internal.RegisterProvider("sqlserver", &gormProvider{dialect: "sqlserver", maxParams: 2100, aliases: []string{"mssql"}})
}
