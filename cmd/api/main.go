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
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/docs"
	"github.com/jhoicas/inventario-ledger/internal/application/analytics"
	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/notify"
	infrapdf "github.com/jhoicas/inventario-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/pkg/clock"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// stores repositorios del almacén elegido (postgres o memoria).
type stores struct {
	tx         inventory.TxRunner
	products   repository.ProductRepository
	categories repository.CategoryRepository
	movements  repository.StockMovementReader
	auditLogs  repository.AuditLogRepository
	analytics  repository.AnalyticsRepository
	ping       func(ctx context.Context) error
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("la aplicación terminó con error")
		os.Exit(1)
	}
}

// run arma y sirve la aplicación. Devuelve error en lugar de terminar el proceso
// para que los defers cierren el almacén y las colas.
func run(cfg *config.Config, log *logger.Logger) error {
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	st, err := openStores(ctx, cfg, log.Component("postgres"))
	if err != nil {
		return fmt.Errorf("almacén del ledger: %w", err)
	}
	defer st.close()

	clk := clock.System{}
	m := metrics.New("inventario")

	recorder := audit.NewRecorder(st.auditLogs, clk, log.Zerolog(), audit.Config{
		WriteTimeout:  cfg.Audit.WriteTimeout,
		RetryInterval: cfg.Audit.RetryInterval,
		Metrics:       m,
	})
	if err := recorder.Start(); err != nil {
		return fmt.Errorf("iniciar reintentos de auditoría: %w", err)
	}

	emitters := []inventory.SignalEmitter{notify.NewLogEmitter(log.Zerolog())}
	if cfg.Notify.RedisAddr != "" {
		rdb := notify.NewRedisClient(cfg.Notify.RedisAddr, cfg.Notify.RedisPassword, cfg.Notify.RedisDB)
		defer rdb.Close()
		emitters = append(emitters, notify.NewRedisEmitter(rdb, cfg.Notify.RedisKey))
	}
	if cfg.Notify.WebhookURL != "" {
		emitters = append(emitters, notify.NewWebhookEmitter(cfg.Notify.WebhookURL, cfg.Notify.WebhookTimeout))
	}
	emitter := notify.NewMultiEmitter(emitters...)
	log.Info().Int("channels", emitter.Len()).Msg("canales de notificación de señales")

	// Las señales se entregan fuera del camino del movimiento.
	outbox := inventory.NewSignalOutbox(emitter, log.Zerolog(), inventory.OutboxConfig{
		RetryInterval: cfg.Notify.RetryInterval,
		MaxPending:    cfg.Notify.MaxPending,
	})
	if err := outbox.Start(); err != nil {
		return fmt.Errorf("iniciar cola de señales: %w", err)
	}

	thresholds := inventory.NewConfigThresholds(
		cfg.Inventory.LowStockThreshold, cfg.Inventory.ReorderPoint, st.categories, log.Zerolog(),
	)
	signals := inventory.NewSignalUseCase(st.products, thresholds, outbox, clk, log.Zerolog(), m)
	registerMovementUC := inventory.NewRegisterMovementUseCase(
		st.tx, st.movements, signals, recorder, clk, log.Zerolog(),
		inventory.EngineConfig{
			MaxAttempts:  cfg.Inventory.MaxRetries,
			BaseBackoff:  cfg.Inventory.RetryBackoff,
			StoreTimeout: cfg.Inventory.StoreTimeout,
			Metrics:      m,
		},
	)
	movementQueries := inventory.NewMovementQueryUseCase(st.products, st.movements)
	productUC := usecase.NewProductUseCase(st.products, st.categories, recorder, clk)

	// PDF: kardex del producto
	kardexPDF := infrapdf.NewMarotoKardexGenerator(cfg.App.Name)
	reportUC := analytics.NewReportUseCase(st.analytics, st.products, st.movements, signals, kardexPDF, clk)
	auditLogUC := audit.NewAuditLogUseCase(st.auditLogs)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(m.Middleware())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath:    "/",
		FileContent: []byte(docs.SwaggerInfo.ReadDoc()),
		Path:        "docs",
		Title:       "Inventario Ledger API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:        productUC,
		RegisterMovement: registerMovementUC,
		MovementQueries:  movementQueries,
		Signals:          signals,
		Reports:          reportUC,
		AuditLogs:        auditLogUC,
		Health:           httpRouter.HealthDeps{Ping: st.ping, Audit: recorder},
		Metrics:          m.Handler(),
		JWTSecret:        cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := outbox.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Int("pending", outbox.Pending()).Msg("señales pendientes sin entregar")
	}
	// Último intento de vaciar la cola de auditoría antes de cerrar el almacén.
	if err := recorder.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Int("pending", recorder.Pending()).Msg("auditoría pendiente sin escribir")
	}

	log.Info().Msg("aplicación detenida")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		mem := memory.NewStore()
		return &stores{
			tx:         mem,
			products:   mem.Products(),
			categories: mem.Categories(),
			movements:  mem.Movements(),
			auditLogs:  mem.AuditLogs(),
			analytics:  mem.Analytics(),
			close:      func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.DB.ConnectionString(), log); err != nil {
			return nil, err
		}
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &stores{
		tx:         postgres.NewTxRunner(pool),
		products:   postgres.NewProductRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		movements:  postgres.NewStockLedger(pool),
		auditLogs:  postgres.NewAuditLogRepository(pool),
		analytics:  postgres.NewAnalyticsRepository(pool),
		ping:       pool.Ping,
		close:      pool.Close,
	}, nil
}
