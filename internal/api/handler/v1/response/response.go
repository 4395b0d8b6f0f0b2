package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Err is the JSON error body rendered at the API boundary. The wrapped
// internal error is logged, never serialized.
type Err struct {
	StatusCode int    `json:"-"`
	Msg        string `json:"error"`

	internal error
}

func (e *Err) Error() string {
	if e.internal != nil {
		return fmt.Sprintf("%v: %v", e.Msg, e.internal)
	}

	return e.Msg
}

func RenderErr(ctx *gin.Context, err *Err) {
	if err.StatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.Int("status", err.StatusCode),
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
	}

	ctx.JSON(err.StatusCode, err)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		StatusCode: http.StatusBadRequest,
		Msg:        err.Error(),
	}
}

func ErrWrongCredentials() *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Msg:        "invalid email or password",
	}
}

func ErrMissingToken() *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Msg:        "token not provided",
	}
}

func ErrInvalidToken() *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Msg:        "invalid or expired token",
	}
}

func ErrInvalidWebhookSignature() *Err {
	return &Err{
		StatusCode: http.StatusUnauthorized,
		Msg:        "unauthorized",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		StatusCode: http.StatusForbidden,
		Msg:        "permission denied",
		internal:   err,
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		StatusCode: http.StatusNotFound,
		Msg:        fmt.Sprintf("%v not found (%v=%v)", resource, key, value),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		StatusCode: http.StatusConflict,
		Msg:        err.Error(),
	}
}

func ErrPaymentGateway(err error) *Err {
	return &Err{
		StatusCode: http.StatusInternalServerError,
		Msg:        "payment gateway error",
		internal:   err,
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		StatusCode: http.StatusInternalServerError,
		Msg:        "internal server error",
		internal:   err,
	}
}
