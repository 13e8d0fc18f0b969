package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openroom/backend/pkg/apperr"
)

// ErrorBody is the JSON shape for all failure responses.
type ErrorBody struct {
	ErrorMessage string `json:"errorMessage"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorBody{ErrorMessage: msg})
}

// NotFound sends 404.
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, ErrorBody{ErrorMessage: msg})
}

// Conflict sends 409.
func Conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusConflict, ErrorBody{ErrorMessage: msg})
}

// Internal sends 500.
func Internal(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, ErrorBody{ErrorMessage: msg})
}

// Error maps an apperr kind to its HTTP status. fallback is used as the
// message for unclassified errors so causes are never exposed to clients.
func Error(c *gin.Context, err error, fallback string) {
	msg := apperr.Message(err, fallback)
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		BadRequest(c, msg)
	case apperr.KindNotFound:
		NotFound(c, msg)
	case apperr.KindConflict:
		Conflict(c, msg)
	default:
		Internal(c, msg)
	}
}
