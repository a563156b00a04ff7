package routes

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/handlers"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/utils"
)

// AuthMiddleware validates the bearer token and loads user_id, role and
// the operator's bound access_id into the context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Falta el encabezado Authorization",
				"code":    "ERR_NO_AUTH_HEADER",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Formato de Authorization inválido",
				"code":    "ERR_INVALID_AUTH_FORMAT",
			})
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return utils.JWTSecret, nil
		}, jwt.WithExpirationRequired())
		if err != nil {
			code := "ERR_INVALID_TOKEN"
			message := "Token inválido"
			if errors.Is(err, jwt.ErrTokenExpired) {
				code = "ERR_TOKEN_EXPIRED"
				message = "El token ha expirado"
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": message,
				"code":    code,
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Contenido del token inválido",
				"code":    "ERR_INVALID_CLAIMS",
			})
			c.Abort()
			return
		}

		userID, _ := claims["user_id"].(string)
		role, ok := claims["role"].(string)
		if userID == "" || !ok ||
			(role != models.RoleSuperAdmin && role != models.RoleAdmin && role != models.RoleOperator) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Rol inválido en el token",
				"code":    "ERR_INVALID_ROLE",
			})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("role", role)
		if accessID, ok := claims["access_id"].(string); ok && accessID != "" {
			c.Set("access_id", accessID)
		}
		c.Next()
	}
}

// RoleMiddleware restricts an endpoint to the given roles. SUPER_ADMIN
// always passes.
func RoleMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		roleStr, ok := role.(string)
		if !exists || !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "No fue posible obtener el rol",
				"code":    "ERR_ROLE_NOT_FOUND",
			})
			c.Abort()
			return
		}

		if roleStr == models.RoleSuperAdmin {
			c.Next()
			return
		}

		for _, allowed := range allowedRoles {
			if roleStr == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"message": "Permisos insuficientes",
			"code":    "ERR_INSUFFICIENT_PERMISSIONS",
		})
		c.Abort()
	}
}

func Path(router *gin.RouterGroup) {
	v1 := router.Group("/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(200, gin.H{"message": "pong"})
		})

		// Camera push endpoint: the LPR devices cannot authenticate.
		webhook := v1.Group("/webhook")
		{
			webhook.POST("/lpr", handlers.LPRWebhook)
			webhook.GET("/lpr", handlers.LPRStatus)
		}

		users := v1.Group("/users")
		{
			users.POST("/login", handlers.Login)

			usersWithAuth := users.Group("")
			usersWithAuth.Use(AuthMiddleware())
			{
				usersWithAuth.GET("", RoleMiddleware(models.RoleAdmin), handlers.GetUsers)
				usersWithAuth.POST("", RoleMiddleware(models.RoleAdmin), handlers.CreateUser)
				usersWithAuth.DELETE("/:id", RoleMiddleware(models.RoleAdmin), handlers.DeleteUser)
			}
		}

		spots := v1.Group("/spots")
		spots.Use(AuthMiddleware())
		{
			spots.GET("", handlers.GetSpots)
			spots.GET("/available", handlers.GetAvailableSpots)
			spots.GET("/counts", RoleMiddleware(models.RoleAdmin), handlers.GetSpotCounts)
			spots.PUT("/counts", RoleMiddleware(models.RoleAdmin), handlers.UpdateSpotCounts)
			spots.POST("/:id/occupy", handlers.OccupySpot)
			spots.POST("/:id/free", handlers.FreeSpot)
			spots.POST("/:id/toggle-type", RoleMiddleware(models.RoleAdmin), handlers.ToggleSpotType)
			spots.PUT("/:id/fee", RoleMiddleware(models.RoleAdmin), handlers.UpdateSpotMonthlyFee)
			spots.PUT("/:id/assignment", RoleMiddleware(models.RoleAdmin), handlers.UpdateSpotAssignment)
			spots.DELETE("/:id/assignment", RoleMiddleware(models.RoleAdmin), handlers.RemoveSpotAssignment)
		}

		access := v1.Group("/access")
		access.Use(AuthMiddleware())
		{
			access.POST("/entry", handlers.ProcessEntry)
			access.POST("/exit", handlers.ProcessExit)
		}

		reports := v1.Group("/reports")
		reports.Use(AuthMiddleware())
		{
			reports.GET("", RoleMiddleware(models.RoleAdmin), handlers.GetReport)
		}

		settings := v1.Group("/settings")
		settings.Use(AuthMiddleware())
		{
			settings.GET("/price", handlers.GetPricing)
			settings.PUT("/price", RoleMiddleware(models.RoleAdmin), handlers.UpdatePricing)
			settings.GET("/charging", handlers.GetCharging)
			settings.PUT("/charging", RoleMiddleware(models.RoleAdmin), handlers.UpdateCharging)
			settings.GET("/branding", handlers.GetBranding)
			settings.PUT("/branding", RoleMiddleware(models.RoleAdmin), handlers.UpdateBranding)
			settings.GET("/trial", handlers.GetTrialStatus)
		}

		admin := v1.Group("/admin")
		{
			// Setup has to work on an empty database, before any user
			// can log in.
			admin.GET("/setup", handlers.Setup)
			admin.GET("/diagnostic", handlers.Diagnostic)
			admin.GET("/simulate", handlers.SimulateEntry)

			adminWithAuth := admin.Group("")
			adminWithAuth.Use(AuthMiddleware())
			{
				adminWithAuth.GET("/db-check", RoleMiddleware(models.RoleAdmin), handlers.DBCheck)
				adminWithAuth.POST("/cameras", RoleMiddleware(models.RoleAdmin), handlers.CreateCamera)
				adminWithAuth.POST("/simulate-month", RoleMiddleware(), handlers.SimulateMonth)
				adminWithAuth.POST("/clear", RoleMiddleware(), handlers.ClearRecords)
			}
		}
	}
}
