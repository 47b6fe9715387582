package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tabletap/api/internal/config"
	"github.com/tabletap/api/internal/database"
	"github.com/tabletap/api/internal/enum"
	"github.com/tabletap/api/internal/handler"
	mw "github.com/tabletap/api/internal/middleware"
	"github.com/tabletap/api/internal/service"
)

// New creates a Chi router with all application routes wired up. Role
// restrictions follow the floor plan: clients order, kitchen staff cook,
// waiters serve, cleaners clean, admins do everything.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "https://app.tabletap.example"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	clock := service.RealClock()

	// Services
	orderService := service.NewOrderService(queries, clock)
	lineService := service.NewLineService(pool, queries, func(db database.DBTX) service.LineStore {
		return database.New(db)
	}, clock)
	paymentService := service.NewPaymentService(pool, func(db database.DBTX) service.PaymentStore {
		return database.New(db)
	}, clock)
	tableService := service.NewTableService(pool, queries, func(db database.DBTX) service.TableStore {
		return database.New(db)
	}, clock)
	catalogService := service.NewCatalogService(pool, queries, func(db database.DBTX) service.CatalogStore {
		return database.New(db)
	}, clock)
	availabilityService := service.NewAvailabilityService(pool, queries, func(db database.DBTX) service.AvailabilityStore {
		return database.New(db)
	}, clock)
	userService := service.NewUserService(queries)

	// Handlers
	orderHandler := handler.NewOrderHandler(orderService, paymentService, lineService)
	kitchenHandler := handler.NewKitchenHandler(orderService, lineService)
	tableHandler := handler.NewTableHandler(tableService, catalogService)
	categoryHandler := handler.NewCategoryHandler(catalogService)
	itemHandler := handler.NewItemHandler(catalogService)
	comboHandler := handler.NewComboHandler(catalogService)
	userHandler := handler.NewUserHandler(userService)
	authHandler := handler.NewAuthHandler(userService, cfg.JWTSecret)

	requireAdmin := mw.RequireRole(enum.RoleAdmin)

	// windows mounts the availability window routes for one subject kind.
	windows := func(r chi.Router, subjectType string) {
		h := handler.NewAvailabilityHandler(availabilityService, subjectType)
		r.Route("/{id}/availabilities", func(r chi.Router) {
			r.Use(requireAdmin)
			h.RegisterRoutes(r)
		})
	}

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Route("/auth", authHandler.RegisterRoutes)
	r.Get("/scan/{token}", tableHandler.Scan)

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Client-side ordering. Staff also pass; ownership is enforced in
		// the handler for clients.
		r.Route("/orders", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleClient, enum.RoleWaiter, enum.RoleAdmin))
				orderHandler.RegisterRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				orderHandler.RegisterAdminRoutes(r)
			})
		})

		r.Route("/kitchen", func(r chi.Router) {
			// Board and line advancement, all kitchen staff
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleCook, enum.RoleWaiter, enum.RoleAdmin))
				r.Get("/orders", kitchenHandler.Board)
				r.Put("/order_lines/{id}/next_status", kitchenHandler.AdvanceLine)
			})

			// Corrections and table release, senior staff only
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleWaiter, enum.RoleAdmin))
				r.Put("/order_lines/{id}", kitchenHandler.EditLine)
				r.Delete("/order_lines/{id}", kitchenHandler.RemoveLine)
				r.Post("/orders/{id}/release", kitchenHandler.Release)
				r.Post("/orders/{id}/assign_server", kitchenHandler.AssignServer)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categoryHandler.List)
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				categoryHandler.RegisterRoutes(r)
			})
			windows(r, enum.SubjectCategory)
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemHandler.List)
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				itemHandler.RegisterRoutes(r)
			})
			windows(r, enum.SubjectItem)
		})

		r.Route("/combos", func(r chi.Router) {
			r.Get("/", comboHandler.List)
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				comboHandler.RegisterRoutes(r)
			})
			windows(r, enum.SubjectCombo)
		})

		r.Route("/tables", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				tableHandler.RegisterRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.RoleCleaner, enum.RoleAdmin))
				tableHandler.RegisterCleanerRoutes(r)
			})
			windows(r, enum.SubjectTable)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAdmin)
			userHandler.RegisterRoutes(r)
		})
	})

	return r
}
