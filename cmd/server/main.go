package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"washtrack-backend/internal/config"
	"washtrack-backend/internal/db"
	"washtrack-backend/internal/handler"
	"washtrack-backend/internal/repository"
	"washtrack-backend/internal/server"
	"washtrack-backend/internal/service"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if os.Getenv("AUTO_MIGRATE") == "true" {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("failed to run migrations", "err", err)
			os.Exit(1)
		}
	}

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	branchRepo := repository.BranchRepository{DB: pg}
	ledgerRepo := repository.LedgerRepository{DB: pg}
	categoryRepo := repository.CategoryRepository{DB: pg}
	employeeRepo := repository.EmployeeRepository{DB: pg}
	attendanceRepo := repository.AttendanceRepository{DB: pg}
	leaveRepo := repository.LeaveRepository{DB: pg}
	payrollRepo := repository.PayrollRepository{DB: pg}
	ticketRepo := repository.TicketRepository{DB: pg}
	notificationRepo := repository.NotificationRepository{DB: pg}
	configRepo := repository.ConfigRepository{DB: pg}
	themeRepo := repository.ThemeRepository{DB: pg}
	bannerRepo := repository.BannerRepository{DB: pg}
	customerRepo := repository.CustomerRepository{DB: pg}
	vehicleRepo := repository.VehicleRepository{DB: pg}
	pointRepo := repository.PointRepository{DB: pg}
	couponRepo := repository.CouponRepository{DB: pg}

	if email := os.Getenv("BOOTSTRAP_ADMIN_EMAIL"); email != "" {
		password := os.Getenv("BOOTSTRAP_ADMIN_PASSWORD")
		if password == "" {
			logger.Error("BOOTSTRAP_ADMIN_PASSWORD is required when BOOTSTRAP_ADMIN_EMAIL is set")
			os.Exit(1)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("failed to hash bootstrap password", "err", err)
			os.Exit(1)
		}
		if err := userRepo.SeedSuperAdmin(ctx, "Super Admin", email, string(hash)); err != nil {
			logger.Error("failed to seed super admin", "err", err)
			os.Exit(1)
		}
	}

	// services
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Branches: branchRepo}
	loyaltySvc := service.LoyaltyService{Coupons: couponRepo}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Config: cfg, Service: authSvc}
	branchHandler := handler.BranchHandler{Repo: branchRepo}
	dashboardHandler := handler.DashboardHandler{
		Branches:      branchRepo,
		Ledger:        ledgerRepo,
		Employees:     employeeRepo,
		Attendance:    attendanceRepo,
		Tickets:       ticketRepo,
		Notifications: notificationRepo,
		Payroll:       payrollRepo,
	}
	ledgerHandler := handler.LedgerHandler{Repo: ledgerRepo}
	categoryHandler := handler.CategoryHandler{Repo: categoryRepo}
	attendanceHandler := handler.AttendanceHandler{Repo: attendanceRepo}
	leaveHandler := handler.LeaveHandler{Repo: leaveRepo}
	employeeHandler := handler.EmployeeHandler{Repo: employeeRepo}
	payrollHandler := handler.PayrollHandler{Repo: payrollRepo}
	ticketHandler := handler.TicketHandler{Repo: ticketRepo}
	notificationHandler := handler.NotificationHandler{Repo: notificationRepo}
	siteConfigHandler := handler.SiteConfigHandler{Config: configRepo, Themes: themeRepo, Banners: bannerRepo}
	couponAdminHandler := handler.CouponAdminHandler{Coupons: couponRepo, Customers: customerRepo, Points: pointRepo}
	userHandler := handler.UserHandler{Users: userRepo, Branches: branchRepo}
	loyaltyHandler := handler.LoyaltyHandler{
		Branches:  branchRepo,
		Themes:    themeRepo,
		Banners:   bannerRepo,
		Config:    configRepo,
		Customers: customerRepo,
		Vehicles:  vehicleRepo,
		Points:    pointRepo,
		Coupons:   couponRepo,
		Loyalty:   loyaltySvc,
	}

	router := server.NewRouter(cfg, logger,
		healthHandler, authHandler, branchHandler, dashboardHandler,
		ledgerHandler, categoryHandler, attendanceHandler, leaveHandler, employeeHandler,
		payrollHandler, ticketHandler, notificationHandler,
		siteConfigHandler, couponAdminHandler, userHandler, loyaltyHandler)

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
