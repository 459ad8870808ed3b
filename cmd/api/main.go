package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/printshop-api/internal/application/billing"
	"github.com/jhoicas/printshop-api/internal/application/catalog"
	"github.com/jhoicas/printshop-api/internal/application/customer"
	"github.com/jhoicas/printshop-api/internal/application/estimate"
	"github.com/jhoicas/printshop-api/internal/application/job"
	"github.com/jhoicas/printshop-api/internal/application/ports"
	"github.com/jhoicas/printshop-api/internal/application/report"
	"github.com/jhoicas/printshop-api/internal/application/upload"
	"github.com/jhoicas/printshop-api/internal/domain/pricing"
	"github.com/jhoicas/printshop-api/internal/domain/repository"
	"github.com/jhoicas/printshop-api/internal/domain/specification"
	"github.com/jhoicas/printshop-api/internal/infrastructure/excel"
	"github.com/jhoicas/printshop-api/internal/infrastructure/memory"
	"github.com/jhoicas/printshop-api/internal/infrastructure/notify"
	"github.com/jhoicas/printshop-api/internal/infrastructure/postgres"
	"github.com/jhoicas/printshop-api/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/printshop-api/internal/interfaces/http"
	"github.com/jhoicas/printshop-api/pkg/config"
	"github.com/jhoicas/printshop-api/pkg/logger"
)

// backend agrupa la persistencia que comparten todos los casos de uso.
type backend struct {
	tx      ports.TxRunner
	repos   ports.Repos
	catalog repository.CatalogRepository
	reports repository.ReportRepository
	close   func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.App.Store == "memory" {
		store := memory.NewStore()
		if err := catalog.Seed(ctx, store.Catalog(), specification.DefaultCatalog(), catalog.DefaultServices(time.Now())); err != nil {
			return nil, err
		}
		log.Warn().Msg("usando almacén en memoria, los datos se pierden al salir")
		return &backend{
			tx:      store,
			repos:   store.Repos(),
			catalog: store.Catalog(),
			reports: store.Reports(),
			close:   func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &backend{
		tx:      postgres.NewTxRunner(pool),
		repos:   postgres.NewRepos(pool),
		catalog: postgres.NewCatalogRepository(pool),
		reports: postgres.NewReportRepository(pool),
		close:   pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.Store).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("apertura del almacén")
	}
	defer be.close()

	files, err := storage.NewS3Storage(ctx, storage.Config{
		Endpoint:      cfg.Storage.Endpoint,
		Region:        cfg.Storage.Region,
		Bucket:        cfg.Storage.Bucket,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
		UsePathStyle:  cfg.Storage.UsePathStyle,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento de objetos")
	}

	// un *SMTPNotifier nil no debe convertirse en una interfaz no nil
	var notifier ports.Notifier
	if n := notify.NewSMTPNotifier(notify.Config{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		ShopName:  cfg.SMTP.FromName,
	}); n != nil {
		notifier = n
	} else {
		log.Info().Msg("SMTP_HOST no definido, correos de estado desactivados")
	}

	formatter := pricing.NewFormatter(cfg.Pricing.Locale, cfg.Pricing.CurrencySymbol)
	catalogSvc := catalog.NewService(be.catalog, cfg.Cache.CatalogTTL, formatter, log.Component("catalog"))

	customerUC := customer.NewUseCase(be.repos.Customers)
	estimateUC := estimate.NewUseCase(be.tx, be.repos, catalogSvc, estimate.Config{
		TaxRate:  cfg.Pricing.TaxRate,
		Validity: cfg.Pricing.EstimateValidity(),
	}, log.Zerolog())
	jobUC := job.NewUseCase(be.tx, be.repos, catalogSvc, notifier, log.Zerolog())
	billingUC := billing.NewUseCase(be.tx, be.repos, billing.Config{
		TaxRate: cfg.Pricing.TaxRate,
		DueIn:   time.Duration(cfg.Pricing.InvoiceDueDays) * 24 * time.Hour,
	}, log.Zerolog())
	fileSvc := upload.NewService(files, be.repos, cfg.Cache.FileListTTL, log.Zerolog())
	reportUC := report.NewUseCase(be.reports)

	limiter := httpRouter.NewUserRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				if n := limiter.Cleanup(); n > 0 {
					log.Debug().Int("removed", n).Msg("limpieza del limitador de peticiones")
				}
			}
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		Immutable:    true,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    cfg.HTTP.BodyLimitMB * 1024 * 1024,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Zerolog()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		CustomerUC:  customerUC,
		CatalogSvc:  catalogSvc,
		EstimateUC:  estimateUC,
		JobUC:       jobUC,
		BillingUC:   billingUC,
		FileSvc:     fileSvc,
		ReportUC:    reportUC,
		Exporter:    excel.NewGenerator(),
		RateLimiter: limiter,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor http detenido")
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
	// esperar a que terminen los correos de estado en curso
	jobUC.Wait()

	log.Info().Msg("aplicación detenida")
}
