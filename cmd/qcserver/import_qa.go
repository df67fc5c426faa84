package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/api/metrics"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/service"
	mongodb "github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/infrastructure/db/mongo"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/infrastructure/excel"
)

var importQACmd = &cobra.Command{
	Use:   "import-qa <workbook.xlsx>...",
	Short: "Load line rejection workbooks into the inspection datasets",
	Long: `Reads the "Line - N" sheets of each workbook, replaces the per-line
datasets and their summaries, then rebuilds the combined datasets.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImportQA,
}

func runImportQA(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	client, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	svc := service.NewInspectionService(mongodb.NewInspectionRepository(client.Database(cfg.Mongo.QualityDB)), log)

	for _, path := range args {
		datasets, err := readWorkbook(path)
		if err != nil {
			return err
		}
		datasets = excel.CombineLines(datasets)

		res, err := svc.Import(ctx, filepath.Base(path), datasets)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		for _, ds := range datasets {
			if ds.Line != 0 {
				metrics.ImportedRowsTotal.WithLabelValues(ds.InspectionType).Add(float64(len(ds.Rows)))
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d datasets, %d rows\n", path, res.Datasets, res.Rows)
	}
	return nil
}

func readWorkbook(path string) ([]ports.ImportedDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	datasets, err := excel.ReadRejectionWorkbook(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return datasets, nil
}
