package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eventportal/internal/auth"
	"eventportal/internal/httpmiddleware"
)

// RouterConfig holds the router-level concerns outside the handlers.
type RouterConfig struct {
	AllowedOrigins []string
	// UploadDir is served under /uploads when set.
	UploadDir string
	// AuthLimiter guards signup and login; Limiter guards everything. Either
	// may be nil.
	AuthLimiter *httpmiddleware.SimpleTokenBucket
	Limiter     *httpmiddleware.SimpleTokenBucket
}

// NewRouter builds the gin engine with every API route and its access
// requirement.
func NewRouter(h *Handler, rc RouterConfig) *gin.Engine {
	binding.EnableDecoderDisallowUnknownFields = true

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger("/metrics", "/api/health"))
	r.Use(httpmiddleware.Metrics())
	r.Use(httpmiddleware.SecurityHeaders())
	if len(rc.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     rc.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	if rc.Limiter != nil {
		r.Use(rc.Limiter.GinMiddleware())
	}
	r.Use(auth.LoadSession(h.sessions, h.opts.SigningKey, h.opts.Issuer))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if rc.UploadDir != "" {
		r.Static("/uploads", rc.UploadDir)
	}

	api := r.Group("/api")
	api.GET("/health", h.Health)

	var authLimit []gin.HandlerFunc
	if rc.AuthLimiter != nil {
		authLimit = append(authLimit, rc.AuthLimiter.GinMiddleware())
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", append(authLimit, h.Signup)...)
		authGroup.POST("/login", append(authLimit, h.Login)...)
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/session", h.Session)
	}

	faculty := auth.Require(auth.RequireRole(auth.RoleFaculty))
	student := auth.Require(auth.RequireRole(auth.RoleStudent))
	staff := auth.Require(auth.AnyOfRoles(auth.RoleFaculty, auth.RoleAdmin))

	events := api.Group("/events")
	{
		events.GET("", h.ListEvents)
		events.GET("/my/events", faculty, h.MyEvents)
		events.GET("/:id", h.GetEvent)
		events.POST("", faculty, h.CreateEvent)
		events.PUT("/:id", faculty, h.UpdateEvent)
		// Ownership is resolved in the service once the event is loaded.
		events.DELETE("/:id", auth.Require(auth.Authenticated()), h.DeleteEvent)
	}

	reg := api.Group("/registration")
	{
		reg.POST("/:eventId", student, h.Register)
		reg.GET("/my/registrations", student, h.MyRegistrations)
		reg.GET("/check/:eventId", student, h.CheckRegistration)
		reg.GET("/event/:eventId", staff, h.EventRegistrations)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Route not found"})
	})
	return r
}
