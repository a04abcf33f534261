package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ExtractIntQuery создает middleware для извлечения и валидации числового query-параметра.
// Отсутствующий параметр заменяется на defaultValue.
func ExtractIntQuery(paramName, contextKey string, defaultValue int) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := c.GetQuery(paramName)
		if !ok || raw == "" {
			c.Set(contextKey, defaultValue)
			c.Next()
			return
		}

		value, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", paramName), "error_type": "validation"})
			c.Abort()
			return
		}
		c.Set(contextKey, value)
		c.Next()
	}
}
