package handlers

import (
	"github.com/dbbank/bank_backend/cmd/docs"
	portssvc "github.com/dbbank/bank_backend/internal/core/ports/services"
	"github.com/dbbank/bank_backend/internal/middleware"
	"github.com/dbbank/bank_backend/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces.
// trigger may be nil when the process runs without a scheduler.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	trigger SweepTrigger,
) error {
	if err := registerValidators(); err != nil {
		return err
	}

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services, trigger)

	setupSwaggerRoutes(r, cfg)
	return nil
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	trigger SweepTrigger,
) {
	v1 := r.Group("/api/v1")

	// Customer routes act on behalf of the user in the bearer token
	user := v1.Group("", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	registerTransferRoutes(user, services.Transfer)
	registerScheduleRoutes(user, services.Schedule, services.RunLog)

	admin := v1.Group("/admin", middleware.AdminAPIKeyAuth(cfg.AdminAPIKeyHash))
	registerAdminRoutes(admin, trigger, services)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
