// Package app wires repositories, services and HTTP handlers into a fiber application.
package app

import (
	"errors"
	"log/slog"
	"time"

	"medstore/internal/handlers"
	"medstore/internal/metrics"
	"medstore/internal/middleware"
	"medstore/internal/models"
	"medstore/internal/repositories"
	"medstore/internal/services"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Repositories is the storage the services run on.
type Repositories struct {
	Medicines repositories.MedicineRepository
	Carts     repositories.CartRepository
	Orders    repositories.OrderRepository
	Users     repositories.UserRepository
	Admins    repositories.AdminRepository
}

// NewGORMRepositories backs every repository with db. carts overrides the cart store when non-nil.
func NewGORMRepositories(db *gorm.DB, carts repositories.CartRepository) Repositories {
	if carts == nil {
		carts = repositories.NewGORMCartRepository(db)
	}
	return Repositories{
		Medicines: repositories.NewGORMMedicineRepository(db),
		Carts:     carts,
		Orders:    repositories.NewGORMOrderRepository(db),
		Users:     repositories.NewGORMUserRepository(db),
		Admins:    repositories.NewGORMAdminRepository(db),
	}
}

// Options configures New.
type Options struct {
	JWTSecret string
	JWTExpire time.Duration
	// Events receives order lifecycle events. Leave nil to disable publishing.
	Events services.OrderEventPublisher
	Logger *slog.Logger
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// Server is the assembled HTTP application together with the services main needs at startup.
type Server struct {
	App       *fiber.App
	Auth      *services.AuthService
	Medicines *services.MedicineService
}

// New builds the application and registers every route under /api.
func New(repos Repositories, opts Options) *Server {
	logger := opts.Logger

	authService := services.NewAuthService(repos.Users, repos.Admins, opts.JWTSecret, opts.JWTExpire, logger)
	userService := services.NewUserService(repos.Users, logger)
	medicineService := services.NewMedicineService(repos.Medicines, logger)
	cartService := services.NewCartService(repos.Carts, repos.Medicines, logger)
	orderService := services.NewOrderService(repos.Orders, repos.Carts, repos.Medicines, opts.Events, logger)
	reviewService := services.NewReviewService(repos.Medicines, repos.Orders, repos.Users, logger)
	dashboardService := services.NewDashboardService(repos.Users, repos.Medicines, repos.Orders)

	app := fiber.New(fiber.Config{
		AppName:      "medstore",
		ErrorHandler: errorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(fiberlogger.New())
	}
	app.Use(metrics.Middleware())

	userOnly := middleware.AuthRequired(authService, models.RoleUser)
	adminOnly := middleware.AuthRequired(authService, models.RoleAdmin)

	api := app.Group("/api")
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
		})
	})
	api.Get("/metrics", metrics.Handler())

	handlers.NewAuthHandler(authService, userService, logger).RegisterRoutes(api, userOnly, adminOnly)
	handlers.NewMedicineHandler(medicineService, logger).RegisterRoutes(api, adminOnly)
	handlers.NewCartHandler(cartService, logger).RegisterRoutes(api, userOnly)
	handlers.NewOrderHandler(orderService, dashboardService, logger).RegisterRoutes(api, userOnly, adminOnly)
	handlers.NewReviewHandler(reviewService, logger).RegisterRoutes(api, userOnly)
	handlers.NewUserHandler(userService, logger).RegisterRoutes(api, adminOnly)

	return &Server{
		App:       app,
		Auth:      authService,
		Medicines: medicineService,
	}
}

// errorHandler renders errors that escape the handlers, such as unknown routes and recovered panics.
func errorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code == fiber.StatusNotFound {
			message = "Route not found"
		}
		if code >= fiber.StatusInternalServerError {
			logger.Error("unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"code":    errorCode(code),
			"message": message,
		})
	}
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	default:
		return "INTERNAL_ERROR"
	}
}
