package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/giglane/giglane-backend/api/controllers"
	"github.com/giglane/giglane-backend/api/middleware"
	coworkersvc "github.com/giglane/giglane-backend/internal/coworkers"
	disputesvc "github.com/giglane/giglane-backend/internal/disputes"
	notifsvc "github.com/giglane/giglane-backend/internal/notifications"
	ordersvc "github.com/giglane/giglane-backend/internal/orders"
	paysvc "github.com/giglane/giglane-backend/internal/payments"
	walletsvc "github.com/giglane/giglane-backend/internal/wallet"
	"github.com/giglane/giglane-backend/pkg/config"
	"github.com/giglane/giglane-backend/pkg/enums"
	"github.com/giglane/giglane-backend/pkg/logger"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Readiness     map[string]controllers.Pinger
	Orders        ordersvc.Service
	Wallet        walletsvc.Service
	Payments      paysvc.Service
	Notifications notifsvc.Service
	Disputes      disputesvc.Service
	Coworkers     coworkersvc.Service
	Files         controllers.Uploader
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Readiness))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor(logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(deps.Orders, logg))
			r.Get("/bought", controllers.OrdersBuyerList(deps.Orders, logg))
			r.Get("/sold", controllers.OrdersSellerList(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.Post("/{orderId}/deliver", controllers.OrderDeliver(deps.Orders, logg))
			r.Post("/{orderId}/revision", controllers.OrderRequestRevision(deps.Orders, logg))
			r.Post("/{orderId}/approve", controllers.OrderApprove(deps.Orders, logg))
			r.Post("/{orderId}/review", controllers.OrderReview(deps.Orders, logg))
			r.Post("/{orderId}/dispute", controllers.DisputeRaise(deps.Disputes, logg))
			r.Post("/{orderId}/dispute/respond", controllers.DisputeRespond(deps.Disputes, logg))
			r.Route("/{orderId}/coworkers", func(r chi.Router) {
				r.Post("/", controllers.CoworkerInvite(deps.Coworkers, logg))
				r.Post("/respond", controllers.CoworkerRespond(deps.Coworkers, logg))
			})
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletGet(deps.Wallet, logg))
			r.Get("/transactions", controllers.WalletTransactions(deps.Wallet, logg))
			r.Post("/top-up", controllers.WalletTopUp(deps.Payments, logg))
			r.Route("/cards", func(r chi.Router) {
				r.Get("/", controllers.WalletListCards(deps.Payments, logg))
				r.Post("/", controllers.WalletRegisterCard(deps.Payments, logg))
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationsList(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.NotificationMarkRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.NotificationsMarkAllRead(deps.Notifications, logg))
		})

		r.Post("/files", controllers.FileUpload(deps.Files, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Actor(logg))
		r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.Post("/{orderId}/dispute/respond", controllers.DisputeRespond(deps.Disputes, logg))
			r.Delete("/{orderId}", controllers.AdminOrderDelete(deps.Orders, logg))
		})
	})

	return r
}
