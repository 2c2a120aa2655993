package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/domain/repository"
	"github.com/sangkips/clientbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/clientbook-api/internal/presentation/http/handler"
)

// RequireActiveBusiness rejects tokens whose business is unknown or
// deactivated, and puts the business on the context.
func RequireActiveBusiness(businesses repository.BusinessRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		businessID := handler.GetBusinessID(c)
		if businessID == uuid.Nil {
			response.Forbidden(c, "Business context required")
			c.Abort()
			return
		}

		business, err := businesses.GetByID(c.Request.Context(), businessID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if business == nil || !business.Active {
			response.Forbidden(c, "Business is not active")
			c.Abort()
			return
		}

		c.Set("business", business)
		c.Next()
	}
}
