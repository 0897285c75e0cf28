package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"agreement-radar/types"
)

// ErrorBody is the body of every non-2xx JSON response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Issues types.FieldErrors `json:"issues,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: msg})
}

// ValidationFailed reports every rejected field with 400.
func ValidationFailed(c *gin.Context, issues types.FieldErrors) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{
		Error:  "Validation failed",
		Issues: issues,
	})
}
