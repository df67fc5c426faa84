package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/api/metrics"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/ports"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/service"
	mongodb "github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/infrastructure/db/mongo"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/infrastructure/excel"
)

var importBGradeCmd = &cobra.Command{
	Use:   "import-bgrade <ud-report.xlsx>...",
	Short: "Load UD report workbooks into the monthly B-grade collections",
	Long: `Reads module orders from the first sheet of each workbook and upserts
them into the collection of their posting month. Re-importing a workbook
updates changed rows and leaves the rest untouched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImportBGrade,
}

var importPeelCmd = &cobra.Command{
	Use:   "import-peel <results-dir>",
	Short: "Load auto peel tester results into the monthly peel collections",
	Long: `Walks MON-YYYY/DD.MM.YYYY/SHIFT-X/STRINGER-N UNIT-X folders, merges the
FRONT and BACK exports of each unit and upserts one record per unit into
the collection of its test month.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportPeel,
}

func runImportBGrade(cmd *cobra.Command, args []string) error {
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

	svc := service.NewBGradeService(mongodb.NewBGradeRepository(client.Database(cfg.Mongo.BGradeDB)), nil, cfg.Redis.CacheTTL, log)

	for _, path := range args {
		recs, err := readUDReport(path)
		if err != nil {
			return err
		}
		res, err := svc.Import(ctx, recs)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		metrics.ImportedRowsTotal.WithLabelValues("b-grade").Add(float64(res.Inserted + res.Updated))
		printImport(cmd.OutOrStdout(), path, res)
	}
	return nil
}

func readUDReport(path string) ([]ports.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	recs, err := excel.ReadBGradeWorkbook(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return recs, nil
}

func runImportPeel(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	recs, skipped, err := excel.ReadPeelTree(args[0])
	if err != nil {
		return err
	}
	for _, dir := range skipped {
		log.Warn().Str("folder", dir).Msg("unit folder lacks a FRONT or BACK export")
	}

	ctx := cmd.Context()
	client, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	svc := service.NewPeelService(mongodb.NewPeelRepository(client.Database(cfg.Mongo.PeelDB)), log)
	res, err := svc.Import(ctx, recs)
	if err != nil {
		return fmt.Errorf("import %s: %w", args[0], err)
	}
	metrics.ImportedRowsTotal.WithLabelValues("peel").Add(float64(res.Inserted + res.Updated))
	printImport(cmd.OutOrStdout(), args[0], res)
	return nil
}

func printImport(w io.Writer, source string, res *ports.RecordImport) {
	fmt.Fprintf(w, "%s: %d inserted, %d updated, %d unchanged, %d skipped, collections %v\n",
		source, res.Inserted, res.Updated, res.Unchanged, res.Skipped, res.Collections)
}
