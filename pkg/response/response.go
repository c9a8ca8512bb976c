package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gaida-lisongo/server-batis-nexus/pkg/apperrors"
)

// Response is the JSON envelope used by every route: {success, message|error, data}.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data})
}

func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Error: message})
}

func ParamError(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

// Error maps the domain error taxonomy onto HTTP statuses:
// validation/funds/state 400, not-found 404, conflict 409, anything else 500.
// Internal causes are only echoed to the client outside release mode.
func Error(c *gin.Context, err error) {
	var (
		validationErr *apperrors.ValidationError
		notFoundErr   *apperrors.NotFoundError
		conflictErr   *apperrors.ConflictError
		fundsErr      *apperrors.InsufficientFundsError
		stateErr      *apperrors.StateError
	)

	switch {
	case errors.As(err, &validationErr):
		Fail(c, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &fundsErr):
		Fail(c, http.StatusBadRequest, fundsErr.Error())
	case errors.As(err, &stateErr):
		Fail(c, http.StatusBadRequest, stateErr.Error())
	case errors.As(err, &notFoundErr):
		Fail(c, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		Fail(c, http.StatusConflict, conflictErr.Error())
	default:
		if gin.Mode() == gin.ReleaseMode {
			Fail(c, http.StatusInternalServerError, "internal server error")
			return
		}
		Fail(c, http.StatusInternalServerError, err.Error())
	}
}
