package order

import (
	"github.com/campuskart/campuskart-backend/internal/user"
	"github.com/gofiber/fiber/v2"
)

// Handler serves buyer order history. Order placement lives in the checkout
// package.
type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/orders", h.listMyOrders)
}

func (h *Handler) listMyOrders(c *fiber.Ctx) error {
	buyerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	orders, err := h.repo.ListByBuyer(buyerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "count": len(orders), "data": orders})
}
