package router

import (
	"net/http"

	"github.com/canteen-pay/api/internal/config"
	"github.com/canteen-pay/api/internal/database"
	"github.com/canteen-pay/api/internal/enum"
	"github.com/canteen-pay/api/internal/handler"
	"github.com/canteen-pay/api/internal/middleware"
	"github.com/canteen-pay/api/internal/service"
	"github.com/canteen-pay/api/internal/ws"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// New wires every route. All business routes sit behind JWT auth; the
// websocket endpoint authenticates via query token during upgrade.
func New(cfg config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	orderService := service.NewOrderService(pool, queries, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	})

	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	menuHandler := handler.NewMenuHandler(queries)
	offerHandler := handler.NewOfferHandler(queries)
	ordersHandler := handler.NewOrdersHandler(orderService, queries, hub, cfg.UPIID)
	reportHandler := handler.NewReportHandler(queries)
	exportHandler := handler.NewExportHandler(queries)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	r.Get("/ws/orders", ws.ServeWS(hub, cfg.JWTSecret))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWTSecret))

		r.Get("/auth/me", authHandler.Me)

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", menuHandler.List)
			r.Get("/{id}", menuHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enum.RoleManager))
				r.Post("/", menuHandler.Create)
				r.Put("/{id}", menuHandler.Update)
				r.Delete("/{id}", menuHandler.Delete)
			})
		})

		r.Post("/cart/quote", ordersHandler.Quote)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordersHandler.Create)
			r.Get("/mine", ordersHandler.ListMine)
			r.Get("/{id}", ordersHandler.Get)
			r.Get("/{id}/receipt", ordersHandler.Receipt)
			r.Get("/{id}/payment-link", ordersHandler.PaymentLink)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enum.RoleAttendant, enum.RoleManager))
				r.Get("/", ordersHandler.List)
				r.Patch("/{id}/status", ordersHandler.UpdateStatus)
			})
		})

		r.Route("/offers", func(r chi.Router) {
			r.Use(middleware.RequireRole(enum.RoleManager))
			r.Post("/", offerHandler.Create)
			r.Get("/", offerHandler.List)
			r.Get("/{id}", offerHandler.Get)
			r.Put("/{id}", offerHandler.Update)
			r.Delete("/{id}", offerHandler.Delete)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.RequireRole(enum.RoleManager))
			r.Get("/sales-by-item", reportHandler.SalesByItem)
			r.Get("/orders-per-hour", reportHandler.OrdersPerHour)
			r.Get("/revenue-per-day", reportHandler.RevenuePerDay)
		})

		r.Route("/exports", func(r chi.Router) {
			r.Use(middleware.RequireRole(enum.RoleManager))
			r.Get("/orders.csv", exportHandler.OrdersCSV)
		})
	})

	return r
}
