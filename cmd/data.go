package cmd

import (
	"context"

	"github.com/KaramelBytes/tdfdash/internal/report"
	"github.com/KaramelBytes/tdfdash/internal/source"
	"github.com/KaramelBytes/tdfdash/internal/stages"
)

func sourceOptions() source.Options {
	return source.Options{
		DataPath:       cfg.DataPath,
		Sheet:          cfg.DataSheet,
		WarehouseDSN:   cfg.WarehouseDSN,
		WarehouseTable: cfg.WarehouseTable,
	}
}

func densityOptions() stages.DensityOptions {
	return stages.DensityOptions{
		GridPoints:      cfg.DensityGridPoints,
		MinObservations: cfg.DensityMinObservations,
	}
}

// openData opens the configured source and loads the full table.
// The caller closes the returned source.
func openData(ctx context.Context) (*source.SQLSource, []stages.Row, error) {
	src, err := source.Open(ctx, sourceOptions())
	if err != nil {
		return nil, nil, err
	}
	rows, err := src.Load(ctx)
	if err != nil {
		_ = src.Close()
		return nil, nil, err
	}
	return src, rows, nil
}

// loadViews computes every dashboard view over the configured data.
func loadViews(ctx context.Context) (*report.Views, error) {
	src, rows, err := openData(ctx)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return report.Build(src.Name(), rows, densityOptions()), nil
}
