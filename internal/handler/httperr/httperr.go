package httperr

import (
	"log/slog"
	"net/http"

	"coach-booking/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

const internalMessage = "Internal server error"

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

func NewResponse(status int, msg string, detail any) Response {
	resp := Response{Status: status, Detail: detail}
	resp.Error.Message = msg
	return resp
}

func Internal() Response {
	return NewResponse(http.StatusInternalServerError, internalMessage, nil)
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		err = errs.New(msg)
	}

	resp := NewResponse(status, msg, detail)

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// Abort answers with the public message carried by err. Anything without a
// public message becomes a 500 and is logged with its stack.
func Abort(c *gin.Context, err error) {
	pe, ok := errs.AsPublic(err)
	if !ok {
		slog.Error("unhandled error",
			"path", c.Request.URL.Path,
			"error", err,
			"stack", errs.ExtractStackLines(err, 5),
		)
		AbortWithError(c, http.StatusInternalServerError, err, internalMessage, nil)
		return
	}
	AbortWithError(c, StatusOf(pe.Kind()), err, pe.Error(), nil)
}

func StatusOf(k errs.Kind) int {
	switch k {
	case errs.KindBadRequest:
		return http.StatusBadRequest
	case errs.KindUnauthorized:
		return http.StatusUnauthorized
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindConflict:
		return http.StatusConflict
	case errs.KindUnprocessable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
