package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/api"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/api/handler"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/core/service"
	mongodb "github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/infrastructure/db/mongo"
	redisdb "github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/infrastructure/db/redis"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/infrastructure/excel"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/internal/infrastructure/queue"
	"github.com/HimeshBhattacharjee/vsl-qa-dashboard/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	reportDB := client.Database(cfg.Mongo.ReportDB)
	userDB := client.Database(cfg.Mongo.UserDB)

	// --- Repositories ---
	reportRepo := mongodb.NewReportRepository(reportDB)
	auditRepo := mongodb.NewAuditRepository(reportDB)
	ipqcRepo := mongodb.NewIPQCRepository(reportDB)
	userRepo := mongodb.NewUserRepository(userDB)
	inspectionRepo := mongodb.NewInspectionRepository(client.Database(cfg.Mongo.QualityDB))
	bgradeRepo := mongodb.NewBGradeRepository(client.Database(cfg.Mongo.BGradeDB))
	peelRepo := mongodb.NewPeelRepository(client.Database(cfg.Mongo.PeelDB))

	if err := reportRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("report indexes: %w", err)
	}
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	if err := ipqcRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ipqc indexes: %w", err)
	}
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}

	// --- Audit workers ---
	// Workers outlive the signal so requests still in flight during shutdown
	// can record their entries.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	defer stopAudit()
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, auditRepo, logger.Component("audit"))
	dispatcher.Start(auditCtx)

	// --- Services ---
	tokens := redisdb.NewTokenStore(rdb)
	users := service.NewUserService(userRepo, tokens, cfg.TokenTTL, log)
	if cfg.AdminPassword != "" {
		created, err := users.EnsureAdmin(ctx, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if created {
			log.Info().Msg("bootstrap administrator created")
		}
	}

	exporter := excel.NewExporter(cfg.ExcelTemplateDir, log)
	deps := api.Deps{
		Auth:       service.NewAuthService(userRepo, tokens, cfg.JWTSecret, cfg.TokenTTL, log),
		Users:      users,
		Reports:    service.NewReportService(reportRepo, userRepo, exporter, dispatcher, auditRepo, log),
		IPQC:       service.NewIPQCService(ipqcRepo, exporter, log),
		Inspection: service.NewInspectionService(inspectionRepo, log),
		BGrade:     service.NewBGradeService(bgradeRepo, redisdb.NewCache(rdb, "bgrade"), cfg.Redis.CacheTTL, log),
		Peel:       service.NewPeelService(peelRepo, log),
		Health: map[string]handler.Pinger{
			"mongodb": mongodb.Ping(client),
			"redis":   redisdb.Ping(rdb),
		},
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	}
	e := api.NewRouter(deps)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	stopAudit()
	dispatcher.Wait()
	return nil
}
