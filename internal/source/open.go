package source

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
)

// Options selects where the dashboard data comes from.
type Options struct {
	// DataPath is a .csv/.tsv/.xlsx file used when WarehouseDSN is empty.
	DataPath string
	// Sheet picks the .xlsx worksheet; empty means the first one.
	Sheet string
	// WarehouseDSN, when set, takes precedence over DataPath.
	WarehouseDSN   string
	WarehouseTable string
}

// Open returns a warehouse source when a DSN is configured, otherwise the
// data file loaded into the in-memory engine.
func Open(ctx context.Context, opt Options) (*SQLSource, error) {
	if opt.WarehouseDSN != "" {
		return OpenWarehouse(ctx, opt.WarehouseDSN, opt.WarehouseTable)
	}
	if opt.DataPath == "" {
		return nil, errors.New("no data source configured: set data_path or warehouse_dsn")
	}
	rows, err := LoadFile(opt.DataPath, opt.Sheet)
	if err != nil {
		return nil, err
	}
	return NewMemory(ctx, "file:"+filepath.Base(opt.DataPath), rows)
}
