package handlers

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/opencourse/coursework-service/internal/config"
	"github.com/opencourse/coursework-service/internal/models"
	"github.com/opencourse/coursework-service/internal/repositories"
	"github.com/opencourse/coursework-service/internal/utils"
)

// InitCasdoor configures the global Casdoor SDK client from service config
func InitCasdoor(cfg *config.Config) {
	casdoorsdk.InitConfig(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientKey,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrg,
		cfg.CasdoorApp,
	)
}

// AuthMiddleware verifies Casdoor JWTs and resolves the local user record
type AuthMiddleware struct {
	users  repositories.UserRepository
	logger utils.Logger
}

func NewAuthMiddleware(users repositories.UserRepository, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		users:  users,
		logger: logger,
	}
}

// RequireAuth validates the bearer token and stores user_id and user_role
// in the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing authorization token",
			})
			return
		}

		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			m.logger.Warn("Token validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid authorization token",
			})
			return
		}

		user, err := m.users.GetByUsername(c.Request.Context(), claims.Name)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
					Message: "Unknown user",
				})
				return
			}
			m.logger.Error("User lookup failed", "username", claims.Name, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Message: "Internal server error",
			})
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user_role", user.Role)
		c.Next()
	}
}

// RequireStaff allows only teachers, assistants, and admins through. It must
// run after RequireAuth.
func (m *AuthMiddleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "User not authenticated",
			})
			return
		}
		userRole, ok := role.(models.UserRole)
		if !ok || !userRole.IsCourseStaff() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Message: "Forbidden - insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
