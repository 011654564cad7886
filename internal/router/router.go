// Package router assembles the fiber application: middleware, error
// handling and every route with its permission guard.
package router

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"yarn-backend/internal/accounts"
	"yarn-backend/internal/audit"
	"yarn-backend/internal/auth"
	"yarn-backend/internal/config"
	"yarn-backend/internal/dashboard"
	"yarn-backend/internal/inventory"
	"yarn-backend/internal/logger"
	"yarn-backend/internal/mailer"
	"yarn-backend/internal/master"
	"yarn-backend/internal/metrics"
	"yarn-backend/internal/permission"
	"yarn-backend/internal/store"
)

// LoginAttemptsPerMinute bounds login requests per client IP.
const LoginAttemptsPerMinute = 10

type Deps struct {
	Config  *config.Config
	Store   store.Store
	Log     *zap.Logger
	Mailer  mailer.Mailer
	Metrics *metrics.Metrics
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var e *fiber.Error
		if errors.As(err, &e) {
			return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
		}
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
		}
		if errors.Is(err, store.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Record already exists"})
		}
		log.Error("unexpected error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Unexpected server error"})
	}
}

func New(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler(d.Log),
		UnescapePath:          true,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{ContextKey: logger.RequestIDKey}))
	app.Use(logger.RequestLog(d.Log))
	if d.Metrics != nil {
		app.Use(d.Metrics.Middleware())
		app.Get("/metrics", d.Metrics.Handler())
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.Origins(), ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	aw := audit.NewWriter(d.Store, d.Log)
	api := app.Group("/api")

	// Public auth
	loginLimiter := limiter.New(limiter.Config{
		Max:        LoginAttemptsPerMinute,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many login attempts, try again later")
		},
	})
	api.Post("/auth/login", loginLimiter, auth.LoginHandler(cfg, d.Store))
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg, d.Store, aw))
	api.Get("/auth/invitations/:token", auth.GetInvitationHandler(cfg, d.Store))
	api.Post("/auth/invitations/:token/accept", auth.AcceptInvitationHandler(cfg, d.Store, aw))

	// Protected
	protected := api.Group("", auth.JWTMiddleware(cfg), auth.LoadPrincipal(d.Store))
	need := auth.RequirePermission

	protected.Get("/auth/me", auth.MeHandler())
	protected.Put("/auth/me", auth.UpdateMeHandler(d.Store))
	protected.Post("/auth/change-password", auth.ChangePasswordHandler(d.Store))
	protected.Get("/access", auth.AccessHandler(d.Store))
	protected.Get("/navigation", auth.NavigationHandler())

	// Master data
	cats := master.NewCategoryHandlers(d.Store, aw)
	protected.Get("/master/categories", need(permission.CategoryView, permission.InEntryCreate, permission.OutEntryCreate, permission.DashboardView), cats.List)
	protected.Post("/master/categories", need(permission.CategoryCreate), cats.Create)
	protected.Get("/master/categories/:id", need(permission.CategoryView), cats.Get)
	protected.Put("/master/categories/:id", need(permission.CategoryEdit), cats.Update)
	protected.Delete("/master/categories/:id", need(permission.CategoryDelete), cats.Delete)

	parties := master.NewPartyHandlers(d.Store, aw)
	protected.Get("/master/parties", need(permission.PartyView, permission.InEntryCreate), parties.List)
	protected.Post("/master/parties", need(permission.PartyCreate), parties.Create)
	protected.Get("/master/parties/:id", need(permission.PartyView), parties.Get)
	protected.Put("/master/parties/:id", need(permission.PartyEdit), parties.Update)
	protected.Delete("/master/parties/:id", need(permission.PartyDelete), parties.Delete)

	// Stock ledger
	protected.Get("/in-entries", need(permission.DashboardView, permission.InEntryCreate), inventory.ListInEntriesHandler(d.Store))
	protected.Post("/in-entries", need(permission.InEntryCreate), inventory.CreateInEntryHandler(d.Store, aw))
	protected.Get("/in-entries/:id", need(permission.DashboardView, permission.InEntryCreate), inventory.GetInEntryHandler(d.Store))
	protected.Put("/in-entries/:id", need(permission.InEntryCreate), inventory.UpdateInEntryHandler(d.Store, aw))

	protected.Get("/ex-entries", need(permission.DashboardView, permission.OutEntryCreate), inventory.ListExEntriesHandler(d.Store))
	protected.Post("/ex-entries", need(permission.OutEntryCreate), inventory.CreateExEntryHandler(d.Store, aw))
	protected.Get("/ex-entries/:id", need(permission.DashboardView, permission.OutEntryCreate), inventory.GetExEntryHandler(d.Store))

	protected.Get("/categories/:id/lots", need(permission.OutEntryCreate, permission.DashboardView), inventory.AvailableLotsHandler(d.Store))

	// Dashboard and reports
	protected.Get("/dashboard", need(permission.DashboardView), dashboard.DashboardHandler(d.Store))
	protected.Get("/dashboard/categories/:id", need(permission.DashboardView), dashboard.CategoryLotsHandler(d.Store))
	protected.Get("/dashboard/lots/:lotNo", need(permission.DashboardView), dashboard.LotDetailHandler(d.Store))
	protected.Get("/reports/stock.xlsx", need(permission.DashboardView), inventory.StockReportHandler(d.Store))

	// Accounts
	users := accounts.NewUserHandlers(cfg, d.Store, d.Mailer, aw)
	protected.Get("/accounts/users", need(permission.UserView), users.List)
	protected.Post("/accounts/users", need(permission.UserCreate), users.Invite)
	protected.Get("/accounts/users/:id", need(permission.UserView), users.Get)
	protected.Put("/accounts/users/:id", need(permission.UserEdit), users.Update)
	protected.Delete("/accounts/users/:id", need(permission.UserDelete), users.Delete)
	protected.Post("/accounts/users/:id/resend-invite", need(permission.UserCreate), users.ResendInvite)

	roles := accounts.NewRoleHandlers(d.Store, aw)
	protected.Get("/accounts/roles", need(permission.RoleView, permission.UserCreate, permission.UserEdit), roles.List)
	protected.Post("/accounts/roles", need(permission.RoleCreate), roles.Create)
	protected.Get("/accounts/roles/:id", need(permission.RoleView), roles.Get)
	protected.Put("/accounts/roles/:id", need(permission.RoleEdit), roles.Update)
	protected.Delete("/accounts/roles/:id", need(permission.RoleDelete), roles.Delete)

	// Audit
	protected.Get("/audit-logs", auth.RequireAdmin(), audit.ListAuditLogsHandler(d.Store))

	return app
}
