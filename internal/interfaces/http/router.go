package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/analytics"
	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/application/usecase"
	pkgjwt "github.com/jhoicas/inventario-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC        *usecase.ProductUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	MovementQueries  *inventory.MovementQueryUseCase
	Signals          *inventory.SignalUseCase
	Reports          *analytics.ReportUseCase
	AuditLogs        *audit.AuditLogUseCase
	Health           HealthDeps
	// Metrics handler de /metrics; nil lo omite.
	Metrics   fiber.Handler
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", Health(deps.Health))
	if deps.Metrics != nil {
		app.Get("/metrics", deps.Metrics)
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(pkgjwt.RoleAdmin, pkgjwt.RoleWarehouse, pkgjwt.RoleViewer)
	writers := RequireRole(pkgjwt.RoleAdmin, pkgjwt.RoleWarehouse)

	// Products
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", anyRole, productHandler.List)
	products.Get("/:id", anyRole, productHandler.GetByID)
	products.Post("/", writers, productHandler.Create)
	products.Put("/:id", writers, productHandler.Update)

	// Inventory ledger
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.MovementQueries, deps.Signals)
	inv.Post("/movements", writers, inventoryHandler.RegisterMovement)
	inv.Post("/movements/:id/reverse", writers, inventoryHandler.ReverseMovement)
	inv.Get("/movements/:id", anyRole, inventoryHandler.GetMovement)
	inv.Get("/products/:id/movements", anyRole, inventoryHandler.ListMovements)
	inv.Get("/products/:id/signal", anyRole, inventoryHandler.GetSignal)
	inv.Get("/products/:id/verify", anyRole, inventoryHandler.VerifyLedger)
	inv.Get("/signals", anyRole, inventoryHandler.ListSignals)

	// Reports
	reports := api.Group("/reports", anyRole)
	reportHandler := NewReportHandler(deps.Reports)
	reports.Get("/movements/summary", reportHandler.MovementSummary)
	reports.Get("/products/:id/running-totals", reportHandler.RunningTotals)
	reports.Get("/products/:id/kardex.pdf", reportHandler.KardexPDF)

	// Audit (solo admin)
	auditHandler := NewAuditHandler(deps.AuditLogs)
	api.Get("/audit-logs", RequireRole(pkgjwt.RoleAdmin), auditHandler.List)
}
