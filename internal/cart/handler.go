package cart

import (
	"strconv"

	"github.com/campuskart/campuskart-backend/internal/product"
	"github.com/campuskart/campuskart-backend/internal/user"
	"github.com/gofiber/fiber/v2"
)

// Handler keeps cart-specific HTTP routing isolated. All routes require the
// Buyer role.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	buyers := user.RequireRole(user.RoleBuyer)
	app.Get("/api/cart", buyers, h.getCart)
	app.Post("/api/cart", buyers, h.addToCart)
	app.Put("/api/cart/:productId<[0-9]+>", buyers, h.updateQuantity)
	app.Delete("/api/cart/:productId<[0-9]+>", buyers, h.removeFromCart)
}

type addRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// enrichedItem pairs a cart line with the product details the frontend needs.
type enrichedItem struct {
	Item
	Product *product.Product `json:"product,omitempty"`
}

type cartResponse struct {
	UserID    int            `json:"userId"`
	Items     []enrichedItem `json:"items"`
	UpdatedAt string         `json:"updatedAt,omitempty"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	crt, err := h.service.Get(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": h.enrich(crt)})
}

func (h *Handler) addToCart(c *fiber.Ctx) error {
	payload := new(addRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	if payload.ProductID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid productId"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	crt, err := h.service.Add(userID, payload.ProductID, payload.Quantity)
	if err != nil {
		switch err {
		case product.ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Product not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": h.enrich(crt)})
}

func (h *Handler) updateQuantity(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid productId"})
	}

	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	if payload.Quantity < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Quantity must be at least 1"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	crt, err := h.service.UpdateQuantity(userID, productID, payload.Quantity)
	if err != nil {
		switch err {
		case ErrInvalidQuantity:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Quantity must be at least 1"})
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Cart not found"})
		case ErrItemNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Item not found in cart"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": h.enrich(crt)})
}

func (h *Handler) removeFromCart(c *fiber.Ctx) error {
	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "invalid productId"})
	}

	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	crt, err := h.service.Remove(userID, productID)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Cart not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": h.enrich(crt)})
}

// enrich joins product details onto the cart lines; lookup failures degrade
// to the bare lines rather than failing the request.
func (h *Handler) enrich(crt Cart) cartResponse {
	resp := cartResponse{UserID: crt.UserID, Items: make([]enrichedItem, 0, len(crt.Items)), UpdatedAt: crt.UpdatedAt}

	products, err := h.service.ProductsFor(crt)
	byID := map[int]product.Product{}
	if err == nil {
		for _, p := range products {
			byID[p.ID] = p
		}
	}

	for _, it := range crt.Items {
		item := enrichedItem{Item: it}
		if p, ok := byID[it.ProductID]; ok {
			cp := p
			item.Product = &cp
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
