package server

import (
	"net/http"
	"time"

	"washtrack-backend/internal/config"
	"washtrack-backend/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	branches handler.BranchHandler,
	dashboard handler.DashboardHandler,
	ledger handler.LedgerHandler,
	categories handler.CategoryHandler,
	attendance handler.AttendanceHandler,
	leave handler.LeaveHandler,
	employees handler.EmployeeHandler,
	payroll handler.PayrollHandler,
	tickets handler.TicketHandler,
	notifications handler.NotificationHandler,
	siteConfig handler.SiteConfigHandler,
	coupons handler.CouponAdminHandler,
	users handler.UserHandler,
	loyalty handler.LoyaltyHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	branches.RegisterPublicRoutes(r)
	loyalty.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(SessionMiddleware(cfg.CookieName, cfg.SessionSecret))

		// any authenticated principal (branch admins see their own scope,
		// super admins pass an explicit branchId)
		pr.Group(func(br chi.Router) {
			br.Use(RequireAuth)
			auth.RegisterSessionRoutes(br)
			br.Route("/branch", func(b chi.Router) {
				dashboard.RegisterBranchRoutes(b)
				ledger.RegisterRoutes(b)
				categories.RegisterRoutes(b)
				attendance.RegisterRoutes(b)
				leave.RegisterRoutes(b)
				employees.RegisterRoutes(b)
				payroll.RegisterRoutes(b)
				tickets.RegisterBranchRoutes(b)
				notifications.RegisterBranchRoutes(b)
				siteConfig.RegisterBranchRoutes(b)
			})
		})

		// super admin only
		pr.Group(func(ar chi.Router) {
			ar.Use(RequireAdmin)
			ar.Route("/admin", func(a chi.Router) {
				dashboard.RegisterAdminRoutes(a)
				branches.RegisterAdminRoutes(a)
				tickets.RegisterAdminRoutes(a)
				notifications.RegisterAdminRoutes(a)
				siteConfig.RegisterAdminRoutes(a)
				coupons.RegisterRoutes(a)
				users.RegisterRoutes(a)
			})
		})
	})

	return r
}
