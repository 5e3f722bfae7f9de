package user

import (
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func makeAppWithUserHandler(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			id, err := strconv.Atoi(v)
			if err == nil {
				claims := jwt.MapClaims{"user_id": id, "role": RoleBuyer}
				tok := &jwt.Token{Claims: claims}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app)
	return app
}

func TestRegister(t *testing.T) {
	handler := NewHandler(NewService(NewInMemoryRepository(nil)))
	app := makeAppWithUserHandler(handler)

	req := httptest.NewRequest("POST", "/api/auth/register",
		strings.NewReader(`{"name":"Ann","email":"ann@campus.edu","password":"hunter2","role":"Seller"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", res.StatusCode)
	}
	var created User
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 || created.Role != RoleSeller {
		t.Errorf("unexpected created user: %+v", created)
	}
	if created.Password != "" {
		t.Error("password must never be echoed back")
	}

	// duplicate email
	req2 := httptest.NewRequest("POST", "/api/auth/register",
		strings.NewReader(`{"name":"Ann2","email":"ann@campus.edu","password":"hunter2"}`))
	req2.Header.Set("Content-Type", "application/json")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", res2.StatusCode)
	}

	// admins cannot self-register
	req3 := httptest.NewRequest("POST", "/api/auth/register",
		strings.NewReader(`{"name":"Eve","email":"eve@campus.edu","password":"hunter2","role":"Admin"}`))
	req3.Header.Set("Content-Type", "application/json")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for admin self-registration, got %d", res3.StatusCode)
	}

	// missing fields
	req4 := httptest.NewRequest("POST", "/api/auth/register", strings.NewReader(`{"email":"x@campus.edu"}`))
	req4.Header.Set("Content-Type", "application/json")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", res4.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	service := NewService(repo)
	if _, err := service.Register(User{Name: "Ann", Email: "ann@campus.edu", Password: "hunter2", Role: RoleBuyer}); err != nil {
		t.Fatal(err)
	}
	app := makeAppWithUserHandler(NewHandler(service))

	req := httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"email":"ann@campus.edu","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Token == "" {
		t.Error("expected a signed token")
	}
	if body.User.Password != "" {
		t.Error("password hash must not leak through login")
	}

	req2 := httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"email":"ann@campus.edu","password":"wrong"}`))
	req2.Header.Set("Content-Type", "application/json")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", res2.StatusCode)
	}

	req3 := httptest.NewRequest("POST", "/api/auth/login",
		strings.NewReader(`{"email":"nobody@campus.edu","password":"hunter2"}`))
	req3.Header.Set("Content-Type", "application/json")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", res3.StatusCode)
	}
}

func TestGetProfile(t *testing.T) {
	repo := NewInMemoryRepository([]User{{ID: 42, Name: "Ann", Email: "ann@campus.edu", Role: RoleBuyer}})
	app := makeAppWithUserHandler(NewHandler(NewService(repo)))

	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.StatusCode)
	}

	req2 := httptest.NewRequest("GET", "/api/auth/me", nil)
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res2.StatusCode)
	}
	var u User
	if err := json.NewDecoder(res2.Body).Decode(&u); err != nil {
		t.Fatal(err)
	}
	if u.Email != "ann@campus.edu" {
		t.Errorf("unexpected profile: %+v", u)
	}
}
