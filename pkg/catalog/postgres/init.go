package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/dbexport/pkg/catalog"
)

// Import this package with a blank identifier to register the provider:
//
//	import _ "github.com/leapstack-labs/dbexport/pkg/catalog/postgres"
func init() {
	catalog.Register("postgres", func(logger *slog.Logger) catalog.Provider { return New(logger) })
}
