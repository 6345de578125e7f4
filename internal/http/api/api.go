// Package api wires the HTTP surface: routes, session middleware, and the
// login throttle.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/paintsnap/server/internal/auth"
	"github.com/paintsnap/server/internal/config"
	"github.com/paintsnap/server/internal/http/api/handlers"
	"github.com/paintsnap/server/internal/quota"
	"github.com/paintsnap/server/internal/ratelimit"
	"github.com/paintsnap/server/internal/store"
)

// loginAttemptsPerMinute caps credential attempts per client IP.
const loginAttemptsPerMinute = 10

// Deps carries the constructed collaborators the routes need.
type Deps struct {
	DB      *gorm.DB
	Store   *store.Store
	Auth    *auth.Service
	Quota   *quota.Enforcer
	JWT     config.JWTConfig
	Limiter ratelimit.Limiter
}

// RegisterRoutes registers all endpoints, middleware, and handlers.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.GET("/healthz", healthHandler.Healthz)

	authHandler := handlers.NewAuthHandler(deps.Auth, deps.JWT)
	throttled := r.Group("")
	throttled.Use(loginThrottleMiddleware(deps.Limiter))
	throttled.POST("/auth/register", authHandler.Register)
	throttled.POST("/auth/login", authHandler.Login)
	throttled.POST("/auth/login/totp", authHandler.LoginTOTP)
	throttled.POST("/auth/verify-token", authHandler.VerifyToken)
	r.POST("/auth/logout", authHandler.Logout)

	photoHandler := handlers.NewPhotoHandler(deps.Store, deps.Quota)
	// Raw image reads are public by design; everything else needs a session.
	r.GET("/photos/:id/image", photoHandler.Image)

	authed := r.Group("")
	authed.Use(sessionMiddleware(deps.Auth))

	authed.GET("/auth/user", authHandler.Me)

	projectHandler := handlers.NewProjectHandler(deps.Store)
	authed.POST("/projects", projectHandler.Create)
	authed.GET("/projects", projectHandler.List)
	authed.GET("/projects/:id", projectHandler.Get)
	authed.PATCH("/projects/:id", projectHandler.Update)
	authed.DELETE("/projects/:id", projectHandler.Delete)

	areaHandler := handlers.NewAreaHandler(deps.Store, deps.Quota)
	authed.POST("/areas", areaHandler.Create)
	authed.GET("/areas", areaHandler.List)
	authed.GET("/areas/:id", areaHandler.Get)
	authed.PATCH("/areas/:id", areaHandler.Update)
	authed.DELETE("/areas/:id", areaHandler.Delete)
	authed.GET("/areas/:id/photos", areaHandler.ListPhotos)

	authed.POST("/photos", photoHandler.Create)
	authed.GET("/photos", photoHandler.List)
	authed.GET("/photos/:id", photoHandler.Get)
	authed.PATCH("/photos/:id", photoHandler.Update)
	authed.PATCH("/photos/:id/move", photoHandler.Move)
	authed.DELETE("/photos/:id", photoHandler.Delete)

	tagHandler := handlers.NewTagHandler(deps.Store, deps.Quota)
	authed.POST("/photos/:id/tags", tagHandler.Create)
	authed.GET("/photos/:id/tags", tagHandler.List)
	authed.PATCH("/photos/:id/tags/:tagId", tagHandler.Update)
	authed.DELETE("/photos/:id/tags/:tagId", tagHandler.Delete)

	accountHandler := handlers.NewAccountHandler(deps.Store)
	authed.GET("/account/plans", accountHandler.Plans)
	authed.GET("/account/usage", accountHandler.Usage)
	authed.POST("/account/totp/prepare", accountHandler.PrepareTOTP)
	authed.POST("/account/totp/confirm", accountHandler.ConfirmTOTP)
	authed.POST("/account/totp/disable", accountHandler.DisableTOTP)
}

// sessionMiddleware resolves the session token from the Authorization
// header or the session cookie and loads the user onto the context.
func sessionMiddleware(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if cookie, errCookie := c.Cookie(handlers.SessionCookie); errCookie == nil {
				token = cookie
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthenticated"})
			return
		}

		user, errUser := svc.CurrentUser(c.Request.Context(), token)
		if errUser != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid session"})
			return
		}
		handlers.SetCurrentUser(c, user)
		c.Next()
	}
}

// loginThrottleMiddleware applies the fixed-window limiter per client IP.
func loginThrottleMiddleware(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		result, errAllow := limiter.Allow(c.Request.Context(), c.ClientIP(), loginAttemptsPerMinute, time.Now())
		if errAllow != nil {
			// A broken limiter must not lock everyone out.
			c.Next()
			return
		}
		if !result.Allowed {
			c.Header("Retry-After", result.Reset.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many attempts, slow down"})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return strings.TrimSpace(token)
}
