// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/royalty-ledger/internal/config"
	"github.com/javajoker/royalty-ledger/internal/database"
	"github.com/javajoker/royalty-ledger/internal/handlers"
	"github.com/javajoker/royalty-ledger/internal/middleware"
	"github.com/javajoker/royalty-ledger/internal/services"
	"github.com/javajoker/royalty-ledger/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	return Setup(db, cfg, logger, services.NewBlockchainService(cfg.Chain, logger))
}

// Setup builds the engine around the given chain gateway.
func Setup(db *gorm.DB, cfg *config.Config, logger *logrus.Logger, chain services.ChainGateway) *gin.Engine {
	// Initialize services
	ledgerRepo := database.NewLedgerRepository(db)
	engine := services.NewReconciliationService(ledgerRepo, chain, cfg.Chain, logger)
	accountService := services.NewAccountService(db, cfg)
	musicService := services.NewMusicService(db, ledgerRepo)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(accountService, musicService, cfg.Chain)
	musicHandler := handlers.NewMusicHandler(musicService, cfg.Chain)
	ledgerHandler := handlers.NewLedgerHandler(ledgerRepo, engine, musicService, cfg.Chain, logger)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	chainLimit := middleware.ChainRateLimit(cfg.RateLimit.ChainRequestsPerSecond, cfg.RateLimit.ChainBurst)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.GeneralRateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"network": cfg.Chain.Network,
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Account routes
		accounts := v1.Group("/accounts")
		{
			accounts.POST("/connect", middleware.AuthRateLimit(), accountHandler.Connect)
			accounts.GET("/me", middleware.AuthRequired(), accountHandler.GetMe)
			accounts.PUT("/me", middleware.AuthRequired(), accountHandler.UpdateMe)
			accounts.GET("/:id", accountHandler.GetAccount)
			accounts.GET("/:id/music", accountHandler.GetAccountMusic)
			accounts.GET("/:id/tips", accountHandler.GetAccountTips)
		}

		// Music routes
		music := v1.Group("/music")
		{
			music.GET("", musicHandler.ListMusic)
			music.GET("/:id", middleware.OptionalAuth(), musicHandler.GetMusic)
			music.GET("/:id/tips", musicHandler.ListTips)
			music.GET("/:id/ledger", ledgerHandler.GetLedger)
			music.GET("/:id/royalties/claimable", ledgerHandler.GetClaimable)

			// Authenticated routes
			protected := music.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", musicHandler.RegisterMusic)
				protected.PUT("/:id/ip-asset", musicHandler.AttachIPAsset)
				protected.POST("/:id/like", musicHandler.ToggleLike)

				// On-chain workflows
				protected.POST("/:id/licenses", chainLimit, ledgerHandler.MintLicense)
				protected.POST("/:id/royalties", chainLimit, ledgerHandler.PayRoyalty)
				protected.POST("/:id/royalties/claim", chainLimit, ledgerHandler.ClaimRoyalty)
				protected.POST("/:id/tips", chainLimit, ledgerHandler.Tip)
			}
		}
	}

	return r
}
