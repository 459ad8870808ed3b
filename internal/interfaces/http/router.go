package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/printshop-api/internal/application/billing"
	"github.com/jhoicas/printshop-api/internal/application/catalog"
	"github.com/jhoicas/printshop-api/internal/application/customer"
	"github.com/jhoicas/printshop-api/internal/application/estimate"
	"github.com/jhoicas/printshop-api/internal/application/job"
	"github.com/jhoicas/printshop-api/internal/application/report"
	"github.com/jhoicas/printshop-api/internal/application/upload"
)

// RouterDeps dependencias del router.
type RouterDeps struct {
	CustomerUC  *customer.UseCase
	CatalogSvc  *catalog.Service
	EstimateUC  *estimate.UseCase
	JobUC       *job.UseCase
	BillingUC   *billing.UseCase
	FileSvc     *upload.Service
	ReportUC    *report.UseCase
	Exporter    CoverageExporter
	RateLimiter *UserRateLimiter
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// toda ruta /api exige bearer token; los viewers son de solo lectura
	handlers := []fiber.Handler{AuthMiddleware(deps.JWTSecret)}
	if deps.RateLimiter != nil {
		handlers = append(handlers, deps.RateLimiter.Middleware())
	}
	handlers = append(handlers, RequireWrite())
	api := app.Group("/api", handlers...)

	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	catalogHandler := NewCatalogHandler(deps.CatalogSvc)
	api.Get("/catalog", catalogHandler.Get)
	api.Post("/catalog/resolve", catalogHandler.Resolve)
	api.Post("/pricing/quote", catalogHandler.Quote)

	estimates := api.Group("/estimates")
	estimateHandler := NewEstimateHandler(deps.EstimateUC)
	estimates.Post("/", estimateHandler.Create)
	estimates.Get("/", estimateHandler.List)
	estimates.Get("/:id", estimateHandler.GetByID)
	estimates.Post("/:id/send", estimateHandler.Send)
	estimates.Post("/:id/view", estimateHandler.View)
	estimates.Post("/:id/respond", estimateHandler.Respond)
	estimates.Post("/:id/revise", estimateHandler.Revise)
	estimates.Post("/:id/convert", estimateHandler.Convert)

	jobs := api.Group("/jobs")
	jobHandler := NewJobHandler(deps.JobUC, deps.FileSvc)
	jobs.Post("/", jobHandler.Submit)
	jobs.Get("/", jobHandler.List)
	jobs.Get("/pricing-coverage", jobHandler.Coverage)
	jobs.Get("/:id", jobHandler.GetByID)
	jobs.Patch("/:id/status", jobHandler.UpdateStatus)
	jobs.Post("/:id/complete", jobHandler.Complete)
	jobs.Post("/:id/files", jobHandler.UploadFiles)
	jobs.Get("/:id/files", jobHandler.ListFiles)

	invoices := api.Group("/invoices")
	invoiceHandler := NewInvoiceHandler(deps.BillingUC)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Get("/:id", invoiceHandler.GetByID)
	invoices.Post("/:id/payments", invoiceHandler.RecordPayment)
	invoices.Post("/:id/cancel", invoiceHandler.Cancel)

	reportHandler := NewReportHandler(deps.ReportUC, deps.Exporter)
	api.Get("/reports/pricing-coverage", reportHandler.PricingCoverage)
}
