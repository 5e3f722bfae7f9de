package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/campuskart/campuskart-backend/internal/analytics"
	"github.com/campuskart/campuskart-backend/internal/cart"
	"github.com/campuskart/campuskart-backend/internal/checkout"
	"github.com/campuskart/campuskart-backend/internal/config"
	"github.com/campuskart/campuskart-backend/internal/notify"
	"github.com/campuskart/campuskart-backend/internal/order"
	"github.com/campuskart/campuskart-backend/internal/product"
	"github.com/campuskart/campuskart-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := fiber.New()
	setupCORS(app, cfg.FrontendURL)
	app.Use(requestLogger)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	migrate(db)

	userRepo := user.NewPostgresRepository(db)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)
	seedAdmin(userService, cfg)

	productRepo := product.NewPostgresRepository(db)
	productService := product.NewService(productRepo)
	productHandler := product.NewHandler(productService)

	cartRepo := cart.NewPostgresRepository(db)
	cartService := cart.NewService(cartRepo, productService)
	cartHandler := cart.NewHandler(cartService)

	orderHandler := order.NewHandler(order.NewPostgresRepository(db))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notifier checkout.Notifier = notify.LogNotifier{}
	var producer *notify.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = notify.NewProducer(cfg.KafkaBrokers, notify.TopicOrderConfirmed, 256)
		producer.Start(ctx)
		notifier = notify.NewKafkaNotifier(producer)
	}

	store := checkout.NewPostgresStore(db)
	checkoutService := checkout.NewService(store, store.Carts(), store.Products(), store.Orders(), userService, notifier)
	checkoutHandler := checkout.NewHandler(checkoutService)

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}
	analyticsService := analytics.NewService(analytics.NewPostgresRepository(db), cache)
	analyticsHandler := analytics.NewHandler(analyticsService)

	// public routes go in before the JWT middleware so they skip it
	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))

	userHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	checkoutHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	analyticsHandler.RegisterProtectedRoutes(app)

	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Print(err)
	}

	// stop the flush loop and let it drain buffered confirmations
	cancel()
	if producer != nil {
		producer.WaitClosed()
	}
}

func setupCORS(app *fiber.App, origin string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origin,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Printf("%s %s %d %v", c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
	return err
}

func mustOpenDB(url string) *sql.DB {
	if url == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

func migrate(db *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			product_id SERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			price numeric NOT NULL,
			category TEXT,
			stock_quantity INT NOT NULL DEFAULT 0,
			image_url TEXT,
			seller_id INT NOT NULL,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,
		`CREATE INDEX IF NOT EXISTS idx_products_price ON products (price)`,
		`CREATE TABLE IF NOT EXISTS carts (
			user_id INT PRIMARY KEY,
			items jsonb NOT NULL DEFAULT '[]',
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			order_id SERIAL PRIMARY KEY,
			order_ref TEXT NOT NULL UNIQUE,
			buyer_id INT NOT NULL,
			items jsonb NOT NULL DEFAULT '[]',
			total_amount numeric NOT NULL DEFAULT 0,
			street TEXT,
			city TEXT,
			state TEXT,
			zip_code TEXT,
			status TEXT NOT NULL,
			created_at TEXT,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders (buyer_id)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			panic(err)
		}
	}
}

// seedAdmin creates the bootstrap admin account when no admin exists yet.
func seedAdmin(s *user.Service, cfg config.Config) {
	ok, err := s.HasRole(user.RoleAdmin)
	if err != nil {
		log.Printf("admin seed check failed: %v", err)
		return
	}
	if ok {
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.Register(user.User{
		Name:      "Admin",
		Email:     cfg.AdminEmail,
		Password:  cfg.AdminPassword,
		Role:      user.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		log.Printf("admin seed failed: %v", err)
		return
	}
	log.Printf("seeded admin account %s", cfg.AdminEmail)
}
