package internal

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/shopmonkeyus/go-common/logger"
)

// Row is a mapping-shaped record: field name to value.
type Row map[string]any

// Record is a full record whose field values are resolved by name.
type Record interface {

	// Field resolves the value of the named field. It returns an error if the
	// record has no way to resolve the field.
	Field(name string) (any, error)
}

// Reference is the value a foreign-key or one-to-one field carries on the
// record path: the related record's primary key plus its string
// representation.
type Reference struct {
	Key     any
	Display string
}

func (r Reference) String() string {
	if r.Display != "" {
		return r.Display
	}
	return fmt.Sprintf("%v", r.Key)
}

// RecordSet is a handle to a set of records for one model.
type RecordSet interface {

	// Model returns the schema metadata for the record type.
	Model() Model

	// Values queries the set, projecting each record to a Row restricted to
	// the named fields. Passing no fields projects every declared field.
	// Query-backed sets hit the data source each time this is called.
	Values(ctx context.Context, fields []string) ([]Row, error)

	// Records returns the full records of the set restricted to the named
	// fields. Foreign-key and one-to-one fields carry Reference values.
	Records(ctx context.Context, fields []string) ([]Record, error)

	// ByPrimaryKeys returns a new set restricted to records whose primary key
	// appears in keys. Returns ErrTooLarge when keys exceeds the backing
	// store's bind parameter capacity.
	ByPrimaryKeys(ctx context.Context, keys []any) (RecordSet, error)

	// Materialized returns the rows or records this set has already fetched,
	// or ok false when the set has not been evaluated yet.
	Materialized() ([]any, bool)
}

// ProviderConfig is the configuration for a provider.
type ProviderConfig struct {

	// Context for the provider.
	Context context.Context

	// URL of the backing data source.
	URL string

	// Logger to use for logging.
	Logger logger.Logger

	// Models holds the metadata for the record types the provider serves.
	Models ModelMap
}

// ProviderLifecycle is implemented by providers that need to open a
// connection before record sets are created.
type ProviderLifecycle interface {

	// Start the provider. This is called once at the beginning of the
	// provider's lifecycle.
	Start(config ProviderConfig) error
}

// Provider opens record sets against a backing data source.
type Provider interface {

	// Stop the provider. This is called once at the end of the provider's
	// lifecycle.
	Stop() error

	// RecordSet returns a handle to the records of the named table.
	RecordSet(table string) (RecordSet, error)
}

// ProviderAlias is implemented by providers that handle additional URL
// schemes beyond the one they registered under.
type ProviderAlias interface {
	Aliases() []string
}

var providerRegistry = map[string]Provider{}
var providerAliasRegistry = map[string]string{}

// RegisterProvider registers a provider for a given URL scheme.
func RegisterProvider(scheme string, provider Provider) {
	providerRegistry[scheme] = provider
	if p, ok := provider.(ProviderAlias); ok {
		for _, alias := range p.Aliases() {
			providerAliasRegistry[alias] = scheme
		}
	}
}

// Schemes returns the registered provider schemes.
func Schemes() []string {
	res := make([]string, 0, len(providerRegistry))
	for scheme := range providerRegistry {
		res = append(res, scheme)
	}
	return res
}

// NewProvider creates and starts the provider registered for the scheme of
// the given URL.
func NewProvider(ctx context.Context, logger logger.Logger, urlString string, models ModelMap) (Provider, error) {
	u, err := url.Parse(urlString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	provider := providerRegistry[u.Scheme]
	if provider == nil {
		scheme := providerAliasRegistry[u.Scheme]
		if scheme != "" {
			provider = providerRegistry[scheme]
		}
		if provider == nil {
			return nil, errors.Newf("no provider registered for scheme %s", u.Scheme)
		}
	}
	if p, ok := provider.(ProviderLifecycle); ok {
		if err := p.Start(ProviderConfig{
			Context: ctx,
			URL:     urlString,
			Logger:  logger.WithPrefix(fmt.Sprintf("[%s]", u.Scheme)),
			Models:  models,
		}); err != nil {
			return nil, err
		}
	}
	return provider, nil
}
