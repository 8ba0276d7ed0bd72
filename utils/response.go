package utils

import (
	"github.com/gin-gonic/gin"

	"facility-booking-backend/apperror"
)

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"status": "success", "data": data})
}

// JSONError writes the error envelope. Untyped errors are reported as internal
// without leaking their text.
func JSONError(c *gin.Context, err error) {
	ae, ok := apperror.As(err)
	if !ok {
		c.JSON(apperror.HTTPStatus(apperror.KindInternal), gin.H{
			"error": gin.H{
				"code":    "error.internal",
				"kind":    apperror.KindInternal,
				"message": "internal error",
			},
		})
		return
	}

	body := gin.H{
		"code":    ae.Code,
		"kind":    ae.Kind,
		"message": ae.Message,
	}
	if ae.Details != nil {
		body["details"] = ae.Details
	}
	c.JSON(apperror.HTTPStatus(ae.Kind), gin.H{"error": body})
}

// AbortJSONError is JSONError for middleware.
func AbortJSONError(c *gin.Context, err error) {
	JSONError(c, err)
	c.Abort()
}
