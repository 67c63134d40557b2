package routes

import (
	"coop-backoffice/internal/adapters/http/handlers"
	"coop-backoffice/internal/adapters/http/middleware"
	"coop-backoffice/internal/adapters/persistence/repositories"
	"coop-backoffice/internal/config"
	"coop-backoffice/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	memberRepo := repositories.NewMemberRepository(db)

	// Initialize services
	accessService := services.NewAccessService(db)
	authService := services.NewAuthService(db, userRepo, refreshTokenRepo, accessService, cfg)
	userService := services.NewUserService(db, userRepo, accessService)
	memberService := services.NewMemberService(db, memberRepo)
	ledgerService := services.NewLedgerService(db)
	loanService := services.NewLoanService(db, ledgerService)
	savingsService := services.NewSavingsService(db, ledgerService)
	inventoryService := services.NewInventoryService(db)
	salesService := services.NewSalesService(db, inventoryService, ledgerService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	userHandler := handlers.NewUserHandler(userService, accessService)
	memberHandler := handlers.NewMemberHandler(memberService)
	accountHandler := handlers.NewAccountHandler(ledgerService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	loanHandler := handlers.NewLoanHandler(loanService)
	savingsHandler := handlers.NewSavingsHandler(savingsService)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	salesHandler := handlers.NewSalesHandler(salesService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	apiV1.Get("/", healthHandler.APIInfo)

	// Auth routes (public)
	authRoutes := apiV1.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// User management routes
	userRoutes := apiV1.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(cfg))
	setupUserRoutes(userRoutes, userHandler, db)

	// Member routes
	memberRoutes := apiV1.Group("/members")
	memberRoutes.Use(middleware.AuthMiddleware(cfg))
	setupMemberRoutes(memberRoutes, memberHandler, db)

	// Finance routes (accounts, transactions, loans, savings)
	financeRoutes := apiV1.Group("/finance")
	financeRoutes.Use(middleware.AuthMiddleware(cfg))
	setupFinanceRoutes(financeRoutes, accountHandler, transactionHandler, loanHandler, savingsHandler, db)

	// Inventory routes
	inventoryRoutes := apiV1.Group("/inventory")
	inventoryRoutes.Use(middleware.AuthMiddleware(cfg))
	setupInventoryRoutes(inventoryRoutes, inventoryHandler, db)

	// Sales routes
	salesRoutes := apiV1.Group("/sales")
	salesRoutes.Use(middleware.AuthMiddleware(cfg))
	setupSalesRoutes(salesRoutes, salesHandler, db)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes with stricter rate limits
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupUserRoutes configures user management routes
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler, db *gorm.DB) {
	router.Get("/roles", middleware.RequirePermission(db, "can_manage_users"), handler.ListRoles)
	router.Get("/", middleware.RequirePermission(db, "can_manage_users"), handler.List)
	router.Get("/:id", middleware.RequirePermission(db, "can_manage_users"), handler.Get)
	router.Put("/:id", middleware.RequirePermission(db, "can_manage_users"), handler.Update)
	router.Delete("/:id", middleware.RequirePermission(db, "can_manage_users"), handler.Delete)
	router.Put("/:id/role", middleware.RequirePermission(db, "can_manage_users"), handler.SetRole)
	router.Get("/:id/access", middleware.RequirePermission(db, "can_manage_permissions"), handler.GetAccess)
	router.Put("/:id/access", middleware.StrictRateLimiter(), middleware.RequirePermission(db, "can_manage_permissions"), handler.UpdateAccess)
}

// setupMemberRoutes configures member registry routes
func setupMemberRoutes(router fiber.Router, handler *handlers.MemberHandler, db *gorm.DB) {
	router.Get("/", middleware.RequirePermission(db, "can_view_members"), handler.List)
	router.Get("/:id", middleware.RequirePermission(db, "can_view_members"), handler.Get)
	router.Post("/", middleware.RequirePermission(db, "can_add_members"), handler.Create)
	router.Put("/:id", middleware.RequirePermission(db, "can_edit_members"), handler.Update)
	router.Delete("/:id", middleware.RequirePermission(db, "can_delete_members"), handler.Delete)
}

// setupFinanceRoutes configures chart of accounts, ledger, loan and savings routes
func setupFinanceRoutes(
	router fiber.Router,
	accountHandler *handlers.AccountHandler,
	transactionHandler *handlers.TransactionHandler,
	loanHandler *handlers.LoanHandler,
	savingsHandler *handlers.SavingsHandler,
	db *gorm.DB,
) {
	// Chart of accounts
	router.Get("/accounts", middleware.RequirePermission(db, "can_view_finances"), accountHandler.List)
	router.Get("/accounts/:id", middleware.RequirePermission(db, "can_view_finances"), accountHandler.Get)
	router.Get("/accounts/:id/transactions", middleware.RequirePermission(db, "can_view_finances"), accountHandler.Transactions)
	router.Post("/accounts", middleware.RequirePermission(db, "can_manage_accounts"), accountHandler.Create)
	router.Put("/accounts/:id", middleware.RequirePermission(db, "can_manage_accounts"), accountHandler.Update)
	router.Delete("/accounts/:id", middleware.RequirePermission(db, "can_manage_accounts"), accountHandler.Delete)

	// Financial reports
	router.Get("/reports/balance-sheet", middleware.RequirePermission(db, "can_view_financial_reports"), accountHandler.BalanceSheet)
	router.Get("/reports/income-statement", middleware.RequirePermission(db, "can_view_financial_reports"), accountHandler.IncomeStatement)

	// Ledger transactions
	router.Get("/transactions/stats", middleware.RequirePermission(db, "can_view_finances"), transactionHandler.Stats)
	router.Get("/transactions", middleware.RequirePermission(db, "can_view_finances"), transactionHandler.List)
	router.Get("/transactions/:id", middleware.RequirePermission(db, "can_view_finances"), transactionHandler.Get)
	router.Post("/transactions", middleware.RequirePermission(db, "can_create_transactions"), transactionHandler.Create)
	router.Post("/transactions/:id/validate", middleware.RequirePermission(db, "can_validate_transactions"), transactionHandler.Validate)
	router.Post("/transactions/:id/reconcile", middleware.RequirePermission(db, "can_validate_transactions"), transactionHandler.Reconcile)

	// Member loans
	router.Get("/loans", middleware.RequirePermission(db, "can_manage_loans"), loanHandler.List)
	router.Get("/loans/:id", middleware.RequirePermission(db, "can_manage_loans"), loanHandler.Get)
	router.Post("/loans", middleware.RequirePermission(db, "can_manage_loans"), loanHandler.Create)
	router.Post("/loans/:id/approve", middleware.RequirePermission(db, "can_manage_loans"), loanHandler.Approve)
	router.Post("/loans/:id/disburse", middleware.RequirePermission(db, "can_manage_loans"), loanHandler.Disburse)
	router.Post("/loans/:id/activate", middleware.RequirePermission(db, "can_manage_loans"), loanHandler.Activate)
	router.Post("/loans/:id/record-payment", middleware.RequirePermission(db, "can_manage_loans"), loanHandler.RecordPayment)
	router.Post("/loans/:id/cancel", middleware.RequirePermission(db, "can_manage_loans"), loanHandler.Cancel)
	router.Post("/loans/:id/default", middleware.RequirePermission(db, "can_manage_loans"), loanHandler.MarkDefaulted)

	// Member savings
	router.Get("/savings", middleware.RequirePermission(db, "can_view_finances"), savingsHandler.List)
	router.Get("/savings/:id", middleware.RequirePermission(db, "can_view_finances"), savingsHandler.Get)
	router.Post("/savings", middleware.RequirePermission(db, "can_manage_accounts"), savingsHandler.Create)
	router.Post("/savings/:id/deposit", middleware.RequirePermission(db, "can_process_payments"), savingsHandler.Deposit)
	router.Post("/savings/:id/withdraw", middleware.RequirePermission(db, "can_process_payments"), savingsHandler.Withdraw)
	router.Post("/savings/:id/capitalize-interest", middleware.RequirePermission(db, "can_manage_accounts"), savingsHandler.CapitalizeInterest)
}

// setupInventoryRoutes configures product and stock routes
func setupInventoryRoutes(router fiber.Router, handler *handlers.InventoryHandler, db *gorm.DB) {
	// Categories
	router.Get("/categories", middleware.RequirePermission(db, "can_view_inventory"), handler.ListCategories)
	router.Post("/categories", middleware.RequirePermission(db, "can_add_products"), handler.CreateCategory)

	// Products
	router.Get("/low-stock", middleware.RequirePermission(db, "can_view_inventory"), handler.LowStock)
	router.Get("/products", middleware.RequirePermission(db, "can_view_inventory"), handler.ListProducts)
	router.Get("/products/:id", middleware.RequirePermission(db, "can_view_inventory"), handler.GetProduct)
	router.Post("/products", middleware.RequirePermission(db, "can_add_products"), handler.CreateProduct)
	router.Put("/products/:id", middleware.RequirePermission(db, "can_edit_products"), handler.UpdateProduct)
	router.Delete("/products/:id", middleware.RequirePermission(db, "can_delete_products"), handler.DeleteProduct)

	// Stock movements
	router.Get("/products/:id/movements", middleware.RequirePermission(db, "can_view_inventory"), handler.ListMovements)
	router.Post("/movements", middleware.RequirePermission(db, "can_manage_stock"), handler.CreateMovement)
	router.Post("/products/:id/adjust-stock", middleware.RequirePermission(db, "can_manage_stock"), handler.AdjustStock)
}

// setupSalesRoutes configures point of sale routes
func setupSalesRoutes(router fiber.Router, handler *handlers.SalesHandler, db *gorm.DB) {
	router.Get("/", middleware.RequirePermission(db, "can_view_sales"), handler.List)
	router.Get("/:id", middleware.RequirePermission(db, "can_view_sales"), handler.Get)
	router.Post("/", middleware.RequirePermission(db, "can_create_sales"), handler.Create)
	router.Post("/:id/complete", middleware.RequirePermission(db, "can_create_sales"), handler.Complete)
	router.Post("/:id/cancel", middleware.RequirePermission(db, "can_edit_sales"), handler.Cancel)
}
