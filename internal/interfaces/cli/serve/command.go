package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	syncApp "sdbridge/internal/application/sync"
	"sdbridge/internal/infrastructure/config"
	"sdbridge/internal/infrastructure/database"
	"sdbridge/internal/infrastructure/migration"
	"sdbridge/internal/infrastructure/repository"
	"sdbridge/internal/infrastructure/scheduler"
	"sdbridge/internal/infrastructure/servicedesk"
	"sdbridge/internal/infrastructure/telegram"
	"sdbridge/internal/shared/goroutine"
	"sdbridge/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the background sync workers",
		Long:  `Start the ticket watcher, the scoped reconciliation engines, the credential refresh job and the retention sweeper.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	log := logger.NewLogger()
	log.Infow("starting sync workers",
		"environment", env,
		"auto_migrate", autoMigrate,
	)

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if autoMigrate || env == "development" {
		manager := migration.NewManager(env)
		if err := manager.Migrate(database.Get()); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Infow("migrations applied")
	}

	db := database.Get()
	ticketCache := repository.NewTicketCacheRepository(db, log)
	credRepo := repository.NewCredentialRepository(db, log)
	sessionRepo := repository.NewSessionRepository(db, log)
	kvRepo := repository.NewKVRepository(db)

	sdClient := servicedesk.NewClient(cfg.ServiceDesk)
	bot := telegram.NewBotService(cfg.Telegram)

	watchSvc := syncApp.NewWatchSyncService(ticketCache, credRepo, sdClient, bot, log.Named("watch"))
	executorSvc := syncApp.NewScopeSyncService(
		ticketCache, credRepo, sdClient, bot,
		syncApp.NewExecutorScope(),
		cfg.Sync.PageSize, cfg.Sync.MaxPages,
		log.Named("executor"),
	)
	dispatcherSvc := syncApp.NewScopeSyncService(
		ticketCache, credRepo, sdClient, bot,
		syncApp.NewDispatcherScope(sdClient, credRepo, log.Named("dispatcher")),
		cfg.Sync.PageSize, cfg.Sync.MaxPages,
		log.Named("dispatcher"),
	)
	reauthSvc := syncApp.NewReauthService(credRepo, sdClient, bot, log.Named("reauth"))
	cleanupSvc := syncApp.NewCleanupService(
		ticketCache, sessionRepo, kvRepo,
		database.NewCompactor(db),
		cfg.Cleanup, cfg.Session.TTL(),
		log.Named("cleanup"),
	)

	jobs, err := scheduler.NewManager(log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if err := jobs.RegisterSyncJob("watch-sync", watchSvc, cfg.Sync.WatchInterval()); err != nil {
		return fmt.Errorf("failed to register watch job: %w", err)
	}
	if err := jobs.RegisterSyncJob("executor-sync", executorSvc, cfg.Sync.ScopeInterval()); err != nil {
		return fmt.Errorf("failed to register executor job: %w", err)
	}
	if err := jobs.RegisterSyncJob("dispatcher-sync", dispatcherSvc, cfg.Sync.ScopeInterval()); err != nil {
		return fmt.Errorf("failed to register dispatcher job: %w", err)
	}
	if err := jobs.RegisterSyncJob("cleanup-sweep", cleanupSvc, cfg.Cleanup.Interval()); err != nil {
		return fmt.Errorf("failed to register cleanup job: %w", err)
	}
	if cfg.Reauth.Enabled {
		if err := jobs.RegisterReauthJob(reauthSvc, cfg.Reauth.At); err != nil {
			return fmt.Errorf("failed to register reauth job: %w", err)
		}
	}

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Reauth.Enabled && cfg.Reauth.OnStartup {
		goroutine.SafeGo(log, "startup-reauth", func() {
			ctx, cancelReauth := context.WithTimeout(rootCtx, 10*time.Minute)
			defer cancelReauth()
			if err := reauthSvc.RunOnce(ctx, false); err != nil && ctx.Err() == nil {
				log.Errorw("startup credential refresh failed", "error", err)
			}
		})
	}

	jobs.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down workers")
	cancel()

	if err := jobs.Stop(); err != nil {
		log.Errorw("scheduler stop failed", "error", err)
		return err
	}

	log.Infow("workers exited gracefully")
	return nil
}
