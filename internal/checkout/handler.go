package checkout

import (
	"errors"

	"github.com/campuskart/campuskart-backend/internal/order"
	"github.com/campuskart/campuskart-backend/internal/user"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/orders", h.placeOrder)
}

type placeOrderRequest struct {
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
}

func (h *Handler) placeOrder(c *fiber.Ctx) error {
	payload := new(placeOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	buyerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	created, err := h.service.PlaceOrder(c.UserContext(), buyerID, payload.ShippingAddress)
	if err != nil {
		var pe *PersistenceError
		if errors.As(err, &pe) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Order failed", "error": "internal error"})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Order failed", "error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Order placed successfully", "order": created})
}
