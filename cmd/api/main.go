package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	appocc "github.com/jhoicas/Evacuacion-api/internal/application/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
	"github.com/jhoicas/Evacuacion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Evacuacion-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/Evacuacion-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Evacuacion-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/Evacuacion-api/internal/infrastructure/redis"
	"github.com/jhoicas/Evacuacion-api/internal/infrastructure/seed"
	httpRouter "github.com/jhoicas/Evacuacion-api/internal/interfaces/http"
	"github.com/jhoicas/Evacuacion-api/pkg/config"
	"github.com/jhoicas/Evacuacion-api/pkg/logger"
)

// ledger backends del libro ya resueltos según STORE_BACKEND / LOCK_BACKEND.
type ledger struct {
	centers   repository.CenterRepository
	movements repository.MovementRepository
	runner    appocc.TxRunner
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Ledger.StoreBackend).
		Str("lock", cfg.Ledger.LockBackend).
		Msg("iniciando aplicación")

	weights := occupancy.Weights{
		Occupancy:     cfg.Risk.WeightOccupancy,
		Predicted:     cfg.Risk.WeightPredicted,
		Vulnerability: cfg.Risk.WeightVulnerability,
	}
	if err := weights.Validate(); err != nil {
		log.Fatal().Err(err).Msg("pesos de riesgo inválidos")
	}

	ctx := context.Background()
	l, err := buildLedger(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar libro de ocupación")
	}
	defer l.close()

	observer := metrics.New(nil)
	recordUC := appocc.NewRecordMovementUseCase(l.runner, l.centers, appocc.SystemClock{}, observer, log.Zerolog())
	historyUC := appocc.NewMovementHistoryUseCase(l.centers, l.movements)
	riskUC := appocc.NewCongestionRiskUseCase(l.centers, l.movements, appocc.SystemClock{}, weights, observer)
	reportUC := appocc.NewSituationReportUseCase(riskUC, l.centers, infrapdf.NewMarotoReportGenerator(), appocc.SystemClock{})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Evacuación API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Ledger.StoreBackend})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		RecordMovement:  recordUC,
		MovementHistory: historyUC,
		CongestionRisk:  riskUC,
		SituationReport: reportUC,
		Centers:         l.centers,
		RiskDefaults: httpRouter.RiskDefaults{
			WindowMinutes:  cfg.Risk.DefaultWindow,
			HorizonMinutes: cfg.Risk.DefaultHorizon,
		},
		MetricsHandler: promhttp.Handler(),
		JWTSecret:      cfg.JWT.Secret,
		Logger:         log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// buildLedger arma almacén, directorio y runner de bloqueo según la configuración.
func buildLedger(ctx context.Context, cfg *config.Config, log *logger.Logger) (*ledger, error) {
	l := &ledger{close: func() {}}

	switch cfg.Ledger.StoreBackend {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		if cfg.DB.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		l.centers = postgres.NewCenterRepository(pool)
		l.movements = postgres.NewMovementRepository(pool)
		l.runner = postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout)
		l.close = pool.Close
	default:
		store := memory.NewMovementStore()
		directory := memory.NewCenterDirectory()
		if cfg.Directory.CentersFile != "" {
			if err := loadDirectory(directory, cfg.Directory, log); err != nil {
				return nil, err
			}
		}
		l.centers = directory
		l.movements = store
		l.runner = memory.NewTxRunner(store, cfg.Ledger.LockTimeout)
	}

	if cfg.Ledger.LockBackend == config.LockRedis {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			l.close()
			return nil, err
		}
		l.runner = infraredis.NewLockRunner(client, l.runner, cfg.Ledger.LockTimeout, cfg.Redis.LockTTL,
			infraredis.WithLogger(log.Zerolog()))
		closeStore := l.close
		l.close = func() {
			closeRedis(client, log)
			closeStore()
		}
	}
	return l, nil
}

func loadDirectory(directory *memory.CenterDirectory, cfg config.DirectoryConfig, log *logger.Logger) error {
	f, err := os.Open(cfg.CentersFile)
	if err != nil {
		return fmt.Errorf("abrir CENTERS_FILE: %w", err)
	}
	defer f.Close()

	res, err := seed.ParseCentersCSV(f, cfg.CentersEncoding)
	if err != nil {
		return err
	}
	for _, c := range res.Centers {
		directory.Put(c)
	}
	for _, s := range res.Skipped {
		log.Warn().Str("file", cfg.CentersFile).Msg("fila omitida: " + s)
	}
	log.Info().Int("centers", len(res.Centers)).Msg("directorio de centros cargado en memoria")
	return nil
}

func closeRedis(client *goredis.Client, log *logger.Logger) {
	if err := client.Close(); err != nil {
		log.Error().Err(err).Msg("cerrar redis")
	}
}
