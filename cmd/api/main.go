package main

import (
	"os"
	"os/signal"
	"syscall"

	"go-pos-kardex/internal/handler"
	"go-pos-kardex/internal/middleware"
	"go-pos-kardex/internal/model"
	"go-pos-kardex/internal/repository"
	"go-pos-kardex/internal/service"
	"go-pos-kardex/internal/ws"
	"go-pos-kardex/pkg/database"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, relying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB(log)
	// Auto migrate (use a dedicated migration tool in production)
	db.AutoMigrate(&model.User{}, &model.Category{}, &model.Product{}, &model.Movement{}, &model.Sale{}, &model.SaleItem{})

	// 3. Seed default superadmin
	seedSuperadmin(db, log)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(log)
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	productRepo := repository.NewProductRepo(db)
	movementRepo := repository.NewMovementRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	saleRepo := repository.NewSaleRepo(db)
	userRepo := repository.NewUserRepo(db)

	stockService := service.NewStockService(productRepo, movementRepo, categoryRepo, db, wsHub, log)
	saleService := service.NewSaleService(productRepo, movementRepo, saleRepo, db, wsHub, log)
	dashService := service.NewDashboardService(productRepo, movementRepo)
	authService := service.NewAuthService(userRepo)

	productHandler := handler.NewProductHandler(stockService)
	movementHandler := handler.NewMovementHandler(stockService)
	saleHandler := handler.NewSaleHandler(saleService)
	dashHandler := handler.NewDashboardHandler(dashService)
	authHandler := handler.NewAuthHandler(authService)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "POS Kardex v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/register", authHandler.Register)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Products
	protected.Get("/products", productHandler.GetProducts)
	protected.Get("/products/:sku", productHandler.GetProduct)
	protected.Post("/products", productHandler.CreateProduct)
	protected.Put("/products/:sku", productHandler.UpdateProduct)
	protected.Delete("/products/:sku", middleware.RequireRole(model.RoleSuperadmin), productHandler.DeleteProduct)

	// Categories
	protected.Get("/categories", productHandler.GetCategories)
	protected.Post("/categories", productHandler.CreateCategory)

	// Movements (Kardex)
	protected.Get("/movements", movementHandler.GetMovements)
	protected.Post("/movements/entrada", movementHandler.StockIn)
	protected.Post("/movements/salida", movementHandler.StockOut)

	// Sales (POS)
	protected.Get("/sales", saleHandler.GetSales)
	protected.Post("/sales/registrar", saleHandler.RegisterSale)
	protected.Get("/sales/:folio", saleHandler.GetSale)

	// Dashboard
	protected.Get("/dashboard/metrics", dashHandler.GetMetrics)

	// Users (superadmin only)
	protected.Get("/users", middleware.RequireRole(model.RoleSuperadmin), authHandler.GetUsers)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.WithError(err).Panic("server stopped")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.WithError(err).Fatal("Server forced to shutdown")
	}

	log.Info("Server exited")
}

// seedSuperadmin creates the default superadmin account if missing
func seedSuperadmin(db *gorm.DB, log *logrus.Logger) {
	userRepo := repository.NewUserRepo(db)

	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}

	if _, err := userRepo.FindByEmail(email); err == nil {
		return
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	admin := &model.User{
		Email:    email,
		FullName: "Superadmin",
		Role:     model.RoleSuperadmin,
		IsActive: true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	if err := admin.SetPassword(password); err != nil {
		log.WithError(err).Warn("Failed to hash superadmin password")
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.WithError(err).Warn("Failed to create superadmin user")
		return
	}
	log.WithField("email", email).Info("Superadmin user created")
}
