package apiserver

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/opencanvass/territory/internal/apiserver/handler"
	"github.com/opencanvass/territory/internal/apiserver/middleware"
	"github.com/opencanvass/territory/internal/assignment"
	"github.com/opencanvass/territory/internal/auth"
	"github.com/opencanvass/territory/internal/auth/jwt"
	"github.com/opencanvass/territory/internal/common/cnst"
	"github.com/opencanvass/territory/internal/common/config"
	"github.com/opencanvass/territory/internal/database"
	"github.com/opencanvass/territory/pkg/metrics"
)

// Deps carries everything the router needs
type Deps struct {
	Config     *config.ServerConfig
	DB         database.Database
	Logger     *zap.Logger
	JWTService *jwt.Service
	Metrics    *metrics.Metrics
}

// NewRouter builds the gin engine with all routes registered. Read routes
// require basic access, mutating domain routes manager access, and user
// management admin access.
func NewRouter(d Deps) *gin.Engine {
	authSvc := auth.NewService(d.DB, d.Logger)
	assignSvc := assignment.NewService(d.DB, d.Logger)

	authHandler := handler.NewAuth(authSvc, d.JWTService, d.DB, d.Logger)
	territoryHandler := handler.NewTerritory(d.DB, d.Logger)
	propertyHandler := handler.NewProperty(d.DB, d.Logger)
	fieldTripHandler := handler.NewFieldTrip(d.DB, d.Logger)
	assignmentHandler := handler.NewAssignment(assignSvc, d.DB, d.Logger)
	notificationHandler := handler.NewNotification(d.DB, d.Logger)
	userHandler := handler.NewUser(authSvc, d.DB, d.Logger)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID())
	if d.Config.Metrics.Enabled {
		r.Use(d.Metrics.GinMiddleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.POST("/api/auth/login", authHandler.Login)

	authed := r.Group("/api", middleware.JWTAuthMiddleware(d.JWTService))

	authed.POST("/auth/logout", authHandler.Logout)
	authed.GET("/auth/profile", authHandler.GetProfile)
	authed.PUT("/auth/profile", authHandler.UpdateProfile)
	authed.POST("/auth/change-password", authHandler.ChangePassword)

	// browsing and visit recording, open to every authenticated user
	read := authed.Group("", middleware.RequireLevel(cnst.LevelBasic))
	{
		read.GET("/territories", territoryHandler.HandleList)
		read.GET("/territories/:id", territoryHandler.HandleGet)
		read.GET("/territories/:id/streets", territoryHandler.HandleListStreets)
		read.GET("/territories/:id/active-assignment", assignmentHandler.HandleActiveForTerritory)

		read.GET("/streets/:streetId/properties", propertyHandler.HandleListByStreet)
		read.GET("/properties/multi-unit", propertyHandler.HandleListMultiUnit)
		read.GET("/properties/:id", propertyHandler.HandleGet)
		read.GET("/properties/:id/history", propertyHandler.HandleListHistory)
		read.GET("/properties/:id/visits", propertyHandler.HandleListVisits)
		read.GET("/properties/:id/visits/latest", propertyHandler.HandleLatestVisit)
		read.GET("/properties/:id/active-assignment", assignmentHandler.HandleActiveForProperty)
		read.POST("/properties/:id/visits", propertyHandler.HandleCreateVisit)

		read.GET("/field-trips", fieldTripHandler.HandleList)
		read.GET("/field-trips/upcoming", fieldTripHandler.HandleUpcoming)
		read.GET("/field-trips/:id", fieldTripHandler.HandleGet)

		read.GET("/assignments/territories", assignmentHandler.HandleListTerritory)
		read.GET("/assignments/territories/due-today", assignmentHandler.HandleDueToday)
		read.GET("/assignments/territories/:id", assignmentHandler.HandleGetTerritory)
		read.GET("/assignments/properties", assignmentHandler.HandleListProperty)
		read.GET("/assignments/properties/:id", assignmentHandler.HandleGetProperty)

		read.GET("/notifications", notificationHandler.HandleList)
		read.POST("/notifications/:id/read", notificationHandler.HandleMarkRead)
		read.POST("/notifications/:id/archive", notificationHandler.HandleArchive)
	}

	// structural changes require manager access
	manage := authed.Group("", middleware.RequireLevel(cnst.LevelManager))
	{
		manage.POST("/territories", territoryHandler.HandleCreate)
		manage.PUT("/territories/:id", territoryHandler.HandleUpdate)
		manage.DELETE("/territories/:id", territoryHandler.HandleDelete)
		manage.POST("/territories/:id/streets", territoryHandler.HandleCreateStreet)
		manage.DELETE("/streets/:streetId", territoryHandler.HandleDeleteStreet)

		manage.POST("/properties", propertyHandler.HandleCreate)
		manage.PUT("/properties/:id", propertyHandler.HandleUpdate)
		manage.DELETE("/properties/:id", propertyHandler.HandleDelete)
		manage.PUT("/properties/:id/units/:unitId", propertyHandler.HandleUpdateUnit)
		manage.POST("/properties/:id/history", propertyHandler.HandleAddHistory)

		manage.POST("/field-trips", fieldTripHandler.HandleCreate)
		manage.PUT("/field-trips/:id", fieldTripHandler.HandleUpdate)
		manage.DELETE("/field-trips/:id", fieldTripHandler.HandleDelete)

		manage.POST("/assignments/territories", assignmentHandler.HandleCreateTerritory)
		manage.PUT("/assignments/territories/:id", assignmentHandler.HandleUpdateTerritory)
		manage.POST("/assignments/territories/:id/conclude", assignmentHandler.HandleConcludeTerritory)
		manage.DELETE("/assignments/territories/:id", assignmentHandler.HandleDeleteTerritory)
		manage.POST("/assignments/properties", assignmentHandler.HandleCreateProperty)
		manage.PUT("/assignments/properties/:id", assignmentHandler.HandleUpdateProperty)
		manage.POST("/assignments/properties/:id/conclude", assignmentHandler.HandleConcludeProperty)
		manage.DELETE("/assignments/properties/:id", assignmentHandler.HandleDeleteProperty)
	}

	// user management and the audit trail require admin access
	admin := authed.Group("", middleware.RequireLevel(cnst.LevelAdmin))
	{
		admin.GET("/users", userHandler.HandleList)
		admin.POST("/users", userHandler.HandleCreate)
		admin.PUT("/users/:id", userHandler.HandleUpdate)
		admin.DELETE("/users/:id", userHandler.HandleDelete)
		admin.GET("/activity", userHandler.HandleActivity)
		admin.POST("/notifications/broadcast", notificationHandler.HandleBroadcast)
	}

	return r
}
