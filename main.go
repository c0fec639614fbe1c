package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"

	"coffeestock/internal/config"
	"coffeestock/internal/handlers"
	"coffeestock/internal/middleware"
	"coffeestock/internal/repositories"
	"coffeestock/internal/services"
	"coffeestock/pkg/rabbitmq"
)

// App bundles the wired components of a running instance.
type App struct {
	Fiber    *fiber.App
	Store    *services.CredentialStore
	Catalog  *services.CatalogSchemaManager
	Products *services.ProductService

	broker  *rabbitmq.Client
	closers []func() error
}

// NewApp wires storage, services and HTTP routes from cfg. The catalog
// database is initialized once here and the stored session is restored.
func NewApp(cfg config.Config) (*App, error) {
	a := &App{}

	prefs, err := a.openPreferences(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	// --- Optional event broker ---
	var publisher services.EventPublisher
	if cfg.BrokerEnabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:      cfg.RabbitMQURL,
			Exchange: services.AccountExchange,
			Queue:    cfg.RabbitMQQueue,
		})
		if err != nil {
			log.Printf("Warning: account events disabled: %v", err)
		} else {
			a.broker = mqClient
			a.closers = append(a.closers, mqClient.Close)
			publisher = mqClient
		}
	}

	// --- Services ---
	a.Store = services.NewCredentialStore(
		repositories.NewPreferenceUserRepository(prefs),
		repositories.NewPreferenceSessionRepository(prefs),
		services.NewBcryptHasher(cfg.BcryptCost),
		publisher,
		cfg.OperationTimeout,
	)

	a.Catalog = services.NewCatalogSchemaManager(cfg.DatabasePath(), cfg.NativePlatform)
	a.closers = append(a.closers, a.Catalog.Close)
	status := a.Catalog.InitializeDatabase(context.Background())
	log.Printf("Catalog database status: %s", status)

	var productRepo repositories.ProductRepository
	if a.Catalog.IsReady() {
		productRepo = repositories.NewGORMProductRepository(a.Catalog.DB())
	}
	a.Products = services.NewProductService(productRepo, a.Catalog)

	if a.Store.CheckAuthStatus(context.Background()) {
		log.Printf("Restored session for %s", a.Store.CurrentUser())
	}

	// --- HTTP ---
	a.Fiber = fiber.New()
	a.Fiber.Use(logger.New())

	apiV1 := a.Fiber.Group("/api/v1")
	handlers.NewAuthHandler(a.Store).RegisterRoutes(apiV1)

	protectedRoutes := apiV1.Group("", middleware.SessionRequired(a.Store))
	handlers.NewProductHandler(a.Products).RegisterRoutes(protectedRoutes)

	a.Fiber.Get("/health", a.handleHealth)

	return a, nil
}

func (a *App) openPreferences(cfg config.Config) (repositories.PreferenceRepository, error) {
	if cfg.PreferencesBackend == "memory" {
		log.Println("Using in-memory preferences; accounts will not survive a restart")
		return repositories.NewMockPreferenceRepository(), nil
	}

	db, err := repositories.OpenSQLite(cfg.PreferencesPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}
	a.closers = append(a.closers, func() error { return repositories.CloseDB(db) })

	prefs, err := repositories.NewGORMPreferenceRepository(db)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare preferences: %w", err)
	}
	return prefs, nil
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":     "healthy",
		"time":       time.Now().Format(time.RFC3339),
		"catalog":    a.Catalog.Status(),
		"isLoggedIn": a.Store.IsLoggedIn(),
		"broker":     a.broker != nil,
	})
}

// Close releases every resource opened by NewApp, most recent first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// logAccountEvent is the audit consumer for account events.
func logAccountEvent(msg amqp.Delivery) error {
	event, err := services.ParseAccountEvent(msg.Body)
	if err != nil {
		return err
	}
	log.Printf("Account event %s: %s for %s at %s", event.ID, event.Type, event.Username, event.OccurredAt.Format(time.RFC3339))
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	if app.broker != nil {
		log.Println("Starting RabbitMQ consumer for account events...")
		if err := app.broker.Consume(logAccountEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	}

	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Fiber.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Fiber.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
