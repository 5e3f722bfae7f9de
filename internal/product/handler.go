package product

import (
	"math"
	"strconv"
	"time"

	"github.com/campuskart/campuskart-backend/internal/user"
	"github.com/gofiber/fiber/v2"
)

// Handler exposes public catalogue browsing and seller/admin CRUD.
type Handler struct {
	service ServiceInterface
}

func NewHandler(s ServiceInterface) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/products", h.listProducts)
	app.Get("/api/products/:id<[0-9]+>", h.getProduct)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/products/seller/me", user.RequireRole(user.RoleSeller), h.listMyProducts)
	app.Post("/api/products", user.RequireRole(user.RoleSeller, user.RoleAdmin), h.createProduct)
	app.Put("/api/products/:id<[0-9]+>", user.RequireRole(user.RoleSeller, user.RoleAdmin), h.updateProduct)
	app.Delete("/api/products/:id<[0-9]+>", user.RequireRole(user.RoleSeller, user.RoleAdmin), h.deleteProduct)
}

type productRequest struct {
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Category      string  `json:"category"`
	StockQuantity int     `json:"stockQuantity"`
	ImageURL      *string `json:"imageURL"`
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	f := Filter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", 10),
	}
	if v := c.Query("minPrice"); v != "" {
		if min, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinPrice = &min
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if max, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxPrice = &max
		}
	}

	products, total, err := h.service.List(f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	f = f.normalized()
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(products),
		"total":   total,
		"page":    f.Page,
		"pages":   int(math.Ceil(float64(total) / float64(f.Limit))),
		"data":    products,
	})
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	p, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
	}
	return c.JSON(fiber.Map{"success": true, "data": p})
}

func (h *Handler) listMyProducts(c *fiber.Ctx) error {
	sellerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	products, err := h.service.ListBySeller(sellerID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "count": len(products), "data": products})
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Name == "" || payload.Description == "" || payload.Category == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "missing required fields"})
	}

	sellerID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	created, err := h.service.Create(Product{
		Name:          payload.Name,
		Description:   payload.Description,
		Price:         payload.Price,
		Category:      payload.Category,
		StockQuantity: payload.StockQuantity,
		ImageURL:      payload.ImageURL,
		SellerID:      sellerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		switch err {
		case ErrInvalidPrice, ErrInvalidStock:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created successfully", "product": created})
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	existing, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
	}

	if err := h.authorizeOwner(c, existing); err != nil {
		return err
	}

	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if payload.Name != "" {
		existing.Name = payload.Name
	}
	if payload.Description != "" {
		existing.Description = payload.Description
	}
	if payload.Category != "" {
		existing.Category = payload.Category
	}
	if payload.Price != 0 {
		existing.Price = payload.Price
	}
	if payload.StockQuantity != 0 {
		existing.StockQuantity = payload.StockQuantity
	}
	if payload.ImageURL != nil {
		existing.ImageURL = payload.ImageURL
	}
	existing.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	updated, err := h.service.Update(id, existing)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		case ErrInvalidPrice, ErrInvalidStock:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"message": "Product updated successfully", "product": updated})
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	existing, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
	}

	if err := h.authorizeOwner(c, existing); err != nil {
		return err
	}

	if err := h.service.Delete(id); err != nil {
		if err == ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Product not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	return c.JSON(fiber.Map{"message": "Product deleted successfully"})
}

// authorizeOwner writes a 403 response and returns it unless the caller owns
// the product or holds the Admin role.
func (h *Handler) authorizeOwner(c *fiber.Ctx, p Product) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	role, _ := user.GetRoleFromCtx(c)
	if p.SellerID != userID && role != user.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Not authorized to modify this product"})
	}
	return nil
}
