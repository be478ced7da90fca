package router

import (
	"net/http"

	"github.com/MarcusAlienx/casanala/internal/access"
	"github.com/MarcusAlienx/casanala/internal/chat"
	"github.com/MarcusAlienx/casanala/internal/config"
	"github.com/MarcusAlienx/casanala/internal/events"
	"github.com/MarcusAlienx/casanala/internal/handler"
	mw "github.com/MarcusAlienx/casanala/internal/middleware"
	"github.com/MarcusAlienx/casanala/internal/service"
	"github.com/MarcusAlienx/casanala/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Store is everything the HTTP surface reads and writes.
// Satisfied by *database.Queries and *docstore.Store.
type Store interface {
	service.OrderStore
	handler.MenuStore
	handler.InventoryStore
	handler.SettingsStore
	handler.UserStore
	handler.AuthStore
}

// Deps are the optional collaborators built by main.
type Deps struct {
	// Notifier receives order events; nil disables notifications.
	Notifier events.Notifier
	// RoleCache memoizes resolved roles; nil reads the profile every time.
	RoleCache access.RoleCache
	Assistant *chat.Assistant
	Hub       *ws.Hub
}

// New creates a Chi router with all application routes wired up.
// Staff routes authenticate with a bearer token or the session cookie;
// admin routes redirect anonymous browsers to the login page.
func New(cfg *config.Config, store Store, deps Deps, log *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Services
	orderService := service.NewOrderService(store, deps.Notifier, cfg.DeliveryFee, log.Named("orders"))
	zone := &service.DeliveryZone{
		Center:   service.Location{Lat: cfg.RestaurantLat, Lng: cfg.RestaurantLng},
		RadiusKm: cfg.DeliveryRadiusKm,
	}
	if cfg.DeliveryRadiusKm <= 0 {
		zone = nil
	}
	checkoutService := service.NewCheckoutService(orderService, store, zone)
	resolver := access.NewResolver(store, deps.RoleCache, log.Named("access"))
	assistant := deps.Assistant
	if assistant == nil {
		assistant = chat.NewAssistant(nil, cfg.LLMTimeout, log.Named("chat"))
	}

	// Handlers
	authHandler := handler.NewAuthHandler(store, cfg.JWTSecret, !cfg.IsDev(), log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, log)
	menuHandler := handler.NewMenuHandler(store, log)
	settingsHandler := handler.NewSettingsHandler(store, log)
	inventoryHandler := handler.NewInventoryHandler(store, log)
	userHandler := handler.NewUserHandler(store, resolver, log)
	chatHandler := handler.NewChatHandler(assistant, store, log)

	// Public routes
	authHandler.RegisterRoutes(r)
	menuHandler.RegisterPublicRoutes(r)
	settingsHandler.RegisterPublicRoutes(r)
	checkoutHandler.RegisterRoutes(r)
	orderHandler.RegisterPublicRoutes(r)
	chatHandler.RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(mw.Identify(cfg.JWTSecret))
		r.Use(mw.ResolveSession(resolver))
		authHandler.RegisterSessionRoutes(r)
	})

	// WebSocket route (handles auth internally via query param)
	if deps.Hub != nil {
		r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
			ws.ServeWS(deps.Hub, cfg.JWTSecret, resolver, w, r)
		})
	}

	// Staff routes: role per page
	r.Route("/staff", func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Use(mw.ResolveSession(resolver))

		r.With(requirePage(access.PageKitchen)).Route("/kitchen", orderHandler.RegisterKitchenRoutes)
		r.With(requirePage(access.PageDelivery)).Get("/delivery", orderHandler.View(service.ViewDelivery))
		r.With(requirePage(access.PagePickup)).Get("/pickup", orderHandler.View(service.ViewPickup))
		r.With(requirePage(access.PageWaiter)).Post("/waiter/orders", checkoutHandler.PlaceTableOrder)
		r.With(requirePage(access.PageOrders)).Route("/orders", orderHandler.RegisterRoutes)
	})

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.RequireLogin(cfg.JWTSecret))
		r.Use(mw.ResolveSession(resolver))

		r.With(requirePage(access.PageDashboard)).Get("/", authHandler.Dashboard)
		r.With(requirePage(access.PageMenu)).Route("/menu-items", menuHandler.RegisterRoutes)
		r.With(requirePage(access.PageInventory)).Route("/inventory", inventoryHandler.RegisterRoutes)
		r.With(requirePage(access.PageSettings)).Route("/settings", settingsHandler.RegisterRoutes)
		r.With(requirePage(access.PageUsers)).Route("/users", userHandler.RegisterRoutes)
	})

	log.Info("router initialized",
		zap.Bool("live_views", deps.Hub != nil),
		zap.Bool("assistant", assistant.Enabled()),
		zap.Bool("delivery_zone", zone != nil),
	)
	return r
}

func requirePage(p access.Page) func(http.Handler) http.Handler {
	return mw.RequireRole(access.RolesFor(p)...)
}
