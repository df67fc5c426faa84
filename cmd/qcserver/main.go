// Command qcserver runs the quality control API and its maintenance tasks.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	mongodb "github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/infrastructure/db/mongo"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/pkg/config"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/pkg/logger"
)

const serviceName = "qcserver"

var rootCmd = &cobra.Command{
	Use:           serviceName,
	Short:         "Quality control API for checksheet reports and production analytics",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, seedAdminCmd, importQACmd, importBGradeCmd, importPeelCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and initialises the process logger.
func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})
	return cfg, log, nil
}

// connectMongo opens the shared client; callers pick databases from it.
func connectMongo(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	return mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, AppName: serviceName})
}
