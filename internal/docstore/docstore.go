// Package docstore provides the document stores behind the API server's
// catalog and account ports.
package docstore

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hay-kot/shopcart/internal/core/account"
	"github.com/hay-kot/shopcart/internal/core/catalog"
	"github.com/hay-kot/shopcart/internal/core/config"
)

// Stores bundles the ports a server needs with the handle that releases them.
type Stores struct {
	Products catalog.Store
	Users    account.Store
	io.Closer
}

// Open connects the driver named in cfg.
func Open(ctx context.Context, cfg config.StoreConfig, logger zerolog.Logger) (*Stores, error) {
	logger = logger.With().Str("component", "docstore").Str("driver", cfg.Driver).Logger()

	switch cfg.Driver {
	case config.DriverMemory, "":
		m := NewMemory()
		return &Stores{Products: m, Users: m, Closer: m}, nil
	case config.DriverSQLite:
		s, err := OpenSQLite(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		return &Stores{Products: s, Users: s, Closer: s}, nil
	case config.DriverFirestore:
		f, err := OpenFirestore(ctx, cfg.ProjectID, logger)
		if err != nil {
			return nil, err
		}
		return &Stores{Products: f, Users: f, Closer: f}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func newID() string {
	return uuid.NewString()
}
