package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetyard/fleetyard-backend/api/controllers"
	"github.com/fleetyard/fleetyard-backend/api/middleware"
	"github.com/fleetyard/fleetyard-backend/internal/activity"
	"github.com/fleetyard/fleetyard-backend/internal/auth"
	"github.com/fleetyard/fleetyard-backend/internal/maintenance"
	"github.com/fleetyard/fleetyard-backend/internal/notifications"
	"github.com/fleetyard/fleetyard-backend/internal/orders"
	"github.com/fleetyard/fleetyard-backend/internal/parts"
	"github.com/fleetyard/fleetyard-backend/internal/users"
	"github.com/fleetyard/fleetyard-backend/internal/vehicles"
	"github.com/fleetyard/fleetyard-backend/pkg/config"
	"github.com/fleetyard/fleetyard-backend/pkg/db"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	"github.com/fleetyard/fleetyard-backend/pkg/logger"
	"github.com/fleetyard/fleetyard-backend/pkg/metrics"
	"github.com/fleetyard/fleetyard-backend/pkg/redis"
)

// Services bundles the domain services the API exposes.
type Services struct {
	Auth          auth.Service
	Users         users.Service
	Vehicles      vehicles.Service
	Parts         parts.Service
	Maintenance   maintenance.Service
	Orders        orders.Service
	Notifications notifications.Service
	Activity      activity.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	adminRole := string(enums.UserRoleCompanyAdmin)

	var redisP redis.Pinger
	if redisClient != nil {
		redisP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", controllers.AuthLogin(svcs.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.UserList(svcs.Users, logg))
				r.Get("/{userId}", controllers.UserDetail(svcs.Users, logg))
				r.Get("/{userId}/vehicles", controllers.UserVehicles(svcs.Vehicles, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(adminRole, logg))
					r.Post("/", controllers.UserCreate(svcs.Users, logg))
					r.Put("/{userId}", controllers.UserUpdate(svcs.Users, logg))
					r.Delete("/{userId}", controllers.UserDelete(svcs.Users, logg))
				})
			})

			r.Route("/vehicles", func(r chi.Router) {
				r.Post("/", controllers.VehicleCreate(svcs.Vehicles, logg))
				r.Get("/", controllers.VehicleList(svcs.Vehicles, logg))
				r.Get("/qr/{code}", controllers.VehicleByQRCode(svcs.Vehicles, logg))
				r.Get("/{vehicleId}", controllers.VehicleDetail(svcs.Vehicles, logg))
				r.Put("/{vehicleId}", controllers.VehicleUpdate(svcs.Vehicles, logg))
				r.Delete("/{vehicleId}", controllers.VehicleDelete(svcs.Vehicles, logg))
				r.Get("/{vehicleId}/maintenance", controllers.VehicleMaintenance(svcs.Maintenance, logg))

				r.Route("/{vehicleId}/parts", func(r chi.Router) {
					r.Post("/", controllers.VehicleAttachPart(svcs.Vehicles, logg))
					r.Get("/", controllers.VehicleListParts(svcs.Vehicles, logg))
					r.Put("/{bindingId}", controllers.VehicleUpdateBinding(svcs.Vehicles, logg))
					r.Delete("/{bindingId}", controllers.VehicleDetachPart(svcs.Vehicles, logg))
				})
			})

			r.Route("/parts", func(r chi.Router) {
				r.Post("/", controllers.PartCreate(svcs.Parts, logg))
				r.Get("/", controllers.PartList(svcs.Parts, logg))
				r.Get("/low-stock", controllers.PartLowStock(svcs.Parts, logg))
				r.Get("/{partId}", controllers.PartDetail(svcs.Parts, logg))
				r.Put("/{partId}", controllers.PartUpdate(svcs.Parts, logg))
				r.Delete("/{partId}", controllers.PartDelete(svcs.Parts, logg))
				r.Post("/{partId}/restock", controllers.PartRestock(svcs.Parts, logg))
			})

			r.Route("/maintenance", func(r chi.Router) {
				r.Post("/", controllers.MaintenanceCreate(svcs.Maintenance, logg))
				r.Get("/", controllers.MaintenanceList(svcs.Maintenance, logg))
				r.Get("/pending", controllers.MaintenancePending(svcs.Maintenance, logg))
				r.Get("/unscheduled", controllers.MaintenanceUnscheduled(svcs.Maintenance, logg))
				r.Get("/pending-approval", controllers.MaintenancePendingApproval(svcs.Maintenance, logg))
				r.Get("/{taskId}", controllers.MaintenanceDetail(svcs.Maintenance, logg))
				r.Put("/{taskId}", controllers.MaintenanceUpdate(svcs.Maintenance, logg))
				r.Delete("/{taskId}", controllers.MaintenanceDelete(svcs.Maintenance, logg))
				r.Post("/{taskId}/complete", controllers.MaintenanceComplete(svcs.Maintenance, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(adminRole, logg))
					r.Post("/{taskId}/approve", controllers.MaintenanceApprove(svcs.Maintenance, logg))
					r.Post("/{taskId}/reject", controllers.MaintenanceReject(svcs.Maintenance, logg))
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.OrderCreate(svcs.Orders, logg))
				r.Get("/", controllers.OrderList(svcs.Orders, logg))
				r.Get("/{orderId}", controllers.OrderDetail(svcs.Orders, logg))
				r.Put("/{orderId}", controllers.OrderUpdate(svcs.Orders, logg))
				r.Delete("/{orderId}", controllers.OrderDelete(svcs.Orders, logg))
				r.Post("/{orderId}/items", controllers.OrderAddItem(svcs.Orders, logg))
				r.Get("/{orderId}/items", controllers.OrderListItems(svcs.Orders, logg))
				r.Delete("/{orderId}/items/{itemId}", controllers.OrderRemoveItem(svcs.Orders, logg))

				r.With(middleware.RequireRole(adminRole, logg)).
					Put("/{orderId}/status", controllers.OrderUpdateStatus(svcs.Orders, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.NotificationList(svcs.Notifications, logg))
				r.Get("/unread-count", controllers.NotificationUnreadCount(svcs.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.NotificationMarkRead(svcs.Notifications, logg))
				r.Post("/read-all", controllers.NotificationMarkAllRead(svcs.Notifications, logg))
			})

			r.Route("/activity-logs", func(r chi.Router) {
				r.Get("/", controllers.ActivityList(svcs.Activity, logg))
				r.Get("/recent", controllers.ActivityRecent(svcs.Activity, logg))
			})
		})
	})

	return r
}
