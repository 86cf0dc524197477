package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Ключи контекста для параметров пути
const (
	ParamUserID          = "param_user_id"
	ParamResultID        = "param_result_id"
	ParamAssessmentID    = "param_assessment_id"
	ParamCertificationID = "param_certification_id"
)

// ExtractUintParam извлекает положительный числовой параметр URL и кладет его в контекст как uint.
func ExtractUintParam(paramName, contextKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
		if err != nil || id == 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":      fmt.Sprintf("Invalid %s", paramName),
				"error_type": "invalid_param",
			})
			return
		}
		c.Set(contextKey, uint(id))
		c.Next()
	}
}

// UintParam возвращает ранее извлеченный параметр
func UintParam(c *gin.Context, contextKey string) uint {
	v, _ := c.Get(contextKey)
	id, _ := v.(uint)
	return id
}
