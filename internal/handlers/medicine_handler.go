package handlers

import (
	"log/slog"

	"medstore/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// MedicineRequest is the body of create and update calls on the catalog.
type MedicineRequest struct {
	Name              string          `json:"name" validate:"required"`
	Image             string          `json:"image"`
	Description       string          `json:"description" validate:"required"`
	Manufacturer      string          `json:"manufacturer" validate:"required"`
	ManufacturingDate string          `json:"manufacturingDate" validate:"required"`
	ExpiryDate        string          `json:"expiryDate" validate:"required"`
	Quantity          int             `json:"quantity" validate:"gte=0"`
	Price             decimal.Decimal `json:"price"`
}

func (r MedicineRequest) toInput() (services.MedicineInput, error) {
	made, err := parseDate("manufacturingDate", r.ManufacturingDate)
	if err != nil {
		return services.MedicineInput{}, err
	}
	expires, err := parseDate("expiryDate", r.ExpiryDate)
	if err != nil {
		return services.MedicineInput{}, err
	}
	return services.MedicineInput{
		Name:              r.Name,
		Image:             r.Image,
		Description:       r.Description,
		Manufacturer:      r.Manufacturer,
		ManufacturingDate: made,
		ExpiryDate:        expires,
		Quantity:          r.Quantity,
		Price:             r.Price,
	}, nil
}

// MedicineHandler handles HTTP requests for the catalog.
type MedicineHandler struct {
	service  *services.MedicineService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewMedicineHandler creates a new MedicineHandler.
func NewMedicineHandler(service *services.MedicineService, logger *slog.Logger) *MedicineHandler {
	return &MedicineHandler{
		service:  service,
		validate: newValidator(),
		logger:   logger,
	}
}

// RegisterRoutes registers the public storefront and the admin catalog routes.
func (h *MedicineHandler) RegisterRoutes(router fiber.Router, adminOnly fiber.Handler) {
	publicRoutes := router.Group("/medicines")
	publicRoutes.Get("/", h.HandleListAvailable)
	publicRoutes.Get("/:id", h.HandleGetMedicine)

	adminRoutes := router.Group("/admin/medicines", adminOnly)
	adminRoutes.Get("/", h.HandleListForAdmin)
	adminRoutes.Post("/", h.HandleCreateMedicine)
	adminRoutes.Get("/:id", h.HandleGetMedicine)
	adminRoutes.Put("/:id", h.HandleUpdateMedicine)
	adminRoutes.Delete("/:id", h.HandleDeleteMedicine)
}

// HandleListAvailable lists in-stock medicines.
func (h *MedicineHandler) HandleListAvailable(c *fiber.Ctx) error {
	medicines, meta, err := h.service.ListAvailable(c.UserContext(), c.Query("search"), c.QueryInt("page", 1), c.QueryInt("limit"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"medicines":  medicines,
		"pagination": meta,
	})
}

// HandleListForAdmin lists the whole catalog; ?lowStock=true keeps only low-stock entries.
func (h *MedicineHandler) HandleListForAdmin(c *fiber.Ctx) error {
	medicines, meta, err := h.service.ListForAdmin(c.UserContext(),
		c.Query("search"), c.QueryBool("lowStock"), c.QueryInt("page", 1), c.QueryInt("limit"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"medicines":  medicines,
		"pagination": meta,
	})
}

// HandleGetMedicine retrieves a single medicine by its ID.
func (h *MedicineHandler) HandleGetMedicine(c *fiber.Ctx) error {
	medicine, err := h.service.GetMedicine(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"success": true, "medicine": medicine})
}

func (h *MedicineHandler) HandleCreateMedicine(c *fiber.Ctx) error {
	var req MedicineRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, h.logger, err)
	}
	in, err := req.toInput()
	if err != nil {
		return writeError(c, h.logger, err)
	}

	medicine, err := h.service.CreateMedicine(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "Medicine created successfully",
		"medicine": medicine,
	})
}

func (h *MedicineHandler) HandleUpdateMedicine(c *fiber.Ctx) error {
	var req MedicineRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return writeError(c, h.logger, err)
	}
	in, err := req.toInput()
	if err != nil {
		return writeError(c, h.logger, err)
	}

	medicine, err := h.service.UpdateMedicine(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"message":  "Medicine updated successfully",
		"medicine": medicine,
	})
}

func (h *MedicineHandler) HandleDeleteMedicine(c *fiber.Ctx) error {
	if err := h.service.DeleteMedicine(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Medicine deleted successfully",
	})
}
