package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/event-ticketing/internal/config"     // Internal config loader
	"github.com/iliyamo/event-ticketing/internal/database"   // Database connector
	"github.com/iliyamo/event-ticketing/internal/handler"    // HTTP handlers
	"github.com/iliyamo/event-ticketing/internal/middleware" // Rate limiting middleware
	"github.com/iliyamo/event-ticketing/internal/queue"      // Broker publisher and consumer
	"github.com/iliyamo/event-ticketing/internal/repository" // Data access layer
	"github.com/iliyamo/event-ticketing/internal/router"     // Internal router setup
	"github.com/iliyamo/event-ticketing/internal/service"    // Order workflows
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env vars win

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Redis is optional; a nil client disables rate limiting and the
	// public availability cache.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and availability cache disabled")
	}

	// Repositories
	uow := repository.NewUnitOfWork(db)
	tenants := repository.NewTenantRepo(db)
	users := repository.NewUserRepo(db)
	events := repository.NewEventRepo(db)
	ticketTypes := repository.NewTicketTypeRepo(db)
	orders := repository.NewOrderRepo(db)
	tickets := repository.NewTicketRepo(db)
	customers := repository.NewCustomerRepo(db)

	// Order workflows with the broker publisher attached.  Publishing is
	// best effort and happens only after a commit.
	svc := service.NewOrderService(uow, ticketTypes, orders, tickets, customers, queue.NewPublisher())

	// Consume order lifecycle events in the background.  The consumer
	// reconnects on its own and never takes the server down.
	go func() {
		if err := queue.StartNotificationConsumer(); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	// Handlers
	authHandler := handler.NewAuthHandler(cfg, uow, tenants, users)
	organizer := handler.NewOrganizerHandler(events, ticketTypes, orders, tickets, svc)
	checkout := handler.NewCheckoutHandler(events, orders, tickets, svc)
	public := &handler.PublicHandler{Events: events, TicketTypes: ticketTypes, Cache: rdb}

	e := echo.New() // Create Echo instance
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e) // Health check and metrics
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterOrganizer(e, organizer, cfg.JWTSecret)
	router.RegisterPublic(e, public)
	router.RegisterCheckout(e, checkout)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
