package server

import (
	"context"
	"strings"
	"time"

	"asset-inventory-backend/internal/audit"
	"asset-inventory-backend/internal/catalog"
	"asset-inventory-backend/internal/config"
	"asset-inventory-backend/internal/dashboard"
	"asset-inventory-backend/internal/employee"
	"asset-inventory-backend/internal/importer"
	"asset-inventory-backend/internal/lifecycle"
	"asset-inventory-backend/internal/protocol"
	"asset-inventory-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer is built from. Claimer may be nil.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Log     *logrus.Logger
	Claimer Claimer
}

func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: web.ErrorHandler(d.Log),
		BodyLimit:    20 * 1024 * 1024,
	})

	corsOrigins := strings.Split(d.Config.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(RequestLogger(d.Log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, " + IdempotencyHeader,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	lifecycleSvc := lifecycle.NewService(d.DB, d.Log)
	signer := protocol.NewSigner(d.Config.ProtocolSecret, d.Config.ProtocolTokenTTL)
	assembler := protocol.NewAssembler(d.DB, d.Config.Organization, signer, d.Log)
	dashboardSvc := dashboard.NewService(d.DB)
	importSvc := importer.NewService(d.DB, d.Log)
	employees := employee.NewService(d.DB, d.Log)

	api := app.Group("/api")
	api.Use(Idempotency(d.Claimer, d.Config.IdempotencyTTL, d.Log))

	api.Get("/healthz", healthHandler(d.DB))

	// Instances
	api.Post("/asset-instances/assign", lifecycle.AssignHandler(lifecycleSvc))
	api.Get("/asset-instances/available", lifecycle.AvailableHandler(lifecycleSvc))
	api.Get("/asset-instances", lifecycle.ListInstancesHandler(lifecycleSvc))
	api.Post("/asset-instances", lifecycle.CreateInstanceHandler(lifecycleSvc))
	api.Get("/asset-instances/:id", lifecycle.GetInstanceHandler(lifecycleSvc))
	api.Put("/asset-instances/:id", lifecycle.UpdateInstanceHandler(lifecycleSvc))
	api.Get("/asset-instances/:id/history", lifecycle.HistoryHandler(lifecycleSvc))

	// Employees
	api.Get("/employees", employee.ListHandler(employees))
	api.Post("/employees", employee.CreateHandler(employees))
	api.Get("/employees/:id", employee.GetHandler(employees))
	api.Put("/employees/:id", employee.UpdateHandler(employees))
	api.Delete("/employees/:id", employee.DeleteHandler(employees))
	api.Post("/employees/:id/archive", employee.ArchiveHandler(employees))
	api.Get("/employees/:id/assets", employee.AssetsHandler(employees))
	api.Post("/employees/:id/process-assets", lifecycle.ProcessAssetsHandler(lifecycleSvc))

	// Write-off and import
	api.Post("/inventory/generate-protocol", protocol.GenerateHandler(assembler))
	api.Post("/inventory/generate-protocol/html", protocol.GenerateHTMLHandler(assembler))
	api.Post("/inventory/perform-write-off", lifecycle.PerformWriteOffHandler(lifecycleSvc, signer))
	api.Post("/inventory/import", importer.ImportHandler(importSvc))
	api.Post("/inventory/import/xlsx", importer.ImportXLSXHandler(importSvc))

	// Catalog
	api.Get("/asset-categories", catalog.ListCategoriesHandler(d.DB))
	api.Post("/asset-categories", catalog.CreateCategoryHandler(d.DB))
	api.Get("/asset-categories/:id", catalog.GetCategoryHandler(d.DB))
	api.Put("/asset-categories/:id", catalog.UpdateCategoryHandler(d.DB))
	api.Delete("/asset-categories/:id", catalog.DeleteCategoryHandler(d.DB))
	api.Get("/asset-types", catalog.ListTypesHandler(d.DB))
	api.Post("/asset-types", catalog.CreateTypeHandler(d.DB))
	api.Get("/asset-types/:id", catalog.GetTypeHandler(d.DB))
	api.Put("/asset-types/:id", catalog.UpdateTypeHandler(d.DB))
	api.Delete("/asset-types/:id", catalog.DeleteTypeHandler(d.DB))

	api.Get("/dashboard/summary", dashboard.SummaryHandler(dashboardSvc))
	api.Get("/audit-logs", audit.ListAuditLogsHandler(d.DB))

	return app
}

// GET /api/healthz
func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "database": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
