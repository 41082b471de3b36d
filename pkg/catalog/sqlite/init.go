package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/dbexport/pkg/catalog"
)

func init() {
	catalog.Register("sqlite", func(logger *slog.Logger) catalog.Provider { return New(logger) })
}
