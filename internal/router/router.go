// Package router assembles the Gin engine and its route table.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/leoomartinelli/painel-financeiro-martinelli/internal/docs" // Import swagger docs
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/handlers"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/middleware"
	"github.com/leoomartinelli/painel-financeiro-martinelli/internal/services"
)

// Services is the set of business services the API exposes.
type Services struct {
	Users        services.UserServicer
	Transactions services.TransactionServicer
	Categories   services.CategoryServicer
	Summary      services.SummaryServicer
	Card         services.CardServicer
	PiggyBanks   services.PiggyBankServicer
	Recurring    services.RecurringServicer
}

// New builds the engine with the global middleware chain, the public routes
// and the bearer-protected /api/v1 routes.
func New(svc Services, tokens *middleware.TokenIssuer) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, tokens)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Transactions)
	summaryHandler := handlers.NewSummaryHandler(svc.Summary)
	cardHandler := handlers.NewCardHandler(svc.Card)
	piggyBankHandler := handlers.NewPiggyBankHandler(svc.PiggyBanks)
	recurringHandler := handlers.NewRecurringHandler(svc.Recurring)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens))

	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile/share-link", authHandler.UpdateShareLink)

	protected.GET("/summary", summaryHandler.GetSummary)
	protected.GET("/summary/annual", summaryHandler.GetAnnualSeries)
	protected.GET("/dashboard", summaryHandler.GetDashboard)

	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	categories := protected.Group("/categories")
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)
	categories.GET("/:id/transactions", categoryHandler.ListCategoryTransactions)

	card := protected.Group("/card")
	card.GET("", cardHandler.GetOpenBucket)
	card.POST("/settle", cardHandler.SettleBucket)

	piggyBanks := protected.Group("/piggy-banks")
	piggyBanks.GET("", piggyBankHandler.ListPiggyBanks)
	piggyBanks.POST("", piggyBankHandler.CreatePiggyBank)
	piggyBanks.POST("/:id/move", piggyBankHandler.MovePiggyBank)
	piggyBanks.PUT("/:id", piggyBankHandler.UpdatePiggyBank)
	piggyBanks.DELETE("/:id", piggyBankHandler.DeletePiggyBank)

	recurring := protected.Group("/recurring-rules")
	recurring.GET("", recurringHandler.ListRecurringRules)
	recurring.POST("", recurringHandler.CreateRecurringRule)
	recurring.POST("/process", recurringHandler.ProcessDueRules)
	recurring.DELETE("/:id", recurringHandler.DeleteRecurringRule)

	return router
}

// cors allows the browser front end to call the API from another origin.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
