package handlers

import (
	_ "brewing_control/docs"
	"brewing_control/internal/logger"
	"brewing_control/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAuthRoutes(router)
	h.registerAPIRoutes(router)

	// Snapshot stream, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerProcessRoutes(api)
		h.registerRecipeRoutes(api)
	}
}

func (h *Handler) registerProcessRoutes(api *gin.RouterGroup) {
	process := api.Group("/process")
	{
		// Body: {"steps":[...]} as JSON, or a YAML recipe document
		process.POST("/recipe", h.submitRecipe)
		process.GET("/recipe", h.getRecipe)

		process.POST("/start", h.startProcess)
		process.POST("/pause", h.pauseProcess)
		process.POST("/skip", h.skipStep)
		process.POST("/stop", h.stopProcess)

		process.PUT("/temperatures", h.setTemperatureGoals)
		process.PUT("/temperatures/:index", h.overrideTemperature)
		process.PUT("/actuators", h.setActuatorGoals)
		process.PUT("/actuators/:index", h.overrideActuator)
		process.PUT("/duration", h.overrideDuration)

		process.GET("/actuators", h.getActuators)
		process.GET("/state", h.getState)
	}
}

func (h *Handler) registerRecipeRoutes(api *gin.RouterGroup) {
	recipes := api.Group("/recipes")
	{
		recipes.GET("", h.listRecipes)
		recipes.POST("", h.createRecipe)
		recipes.GET("/:id", h.getStoredRecipe)
		recipes.DELETE("/:id", h.deleteRecipe)
		recipes.POST("/:id/load", h.loadStoredRecipe)
	}
}
