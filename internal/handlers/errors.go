package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"film_api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const errInternal = "internal server error"

// errorBody is the shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// failure is attached to a gin error so the responder can log it with context.
type failure struct {
	key    string
	fields []any
}

// fail hands err to the error responder. logKey names the failed operation in
// the log when err turns out to be an internal error.
func fail(c *gin.Context, logKey string, err error, kv ...any) {
	_ = c.Error(err).SetMeta(failure{key: logKey, fields: kv})
}

// errorResponder maps the last handler error onto a response. Domain errors get
// their status and message; anything else is logged and answered with a bare 500.
func (h *Handler) errorResponder(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	ginErr := c.Errors.Last()
	status, msg := h.classify(c, ginErr.Err)
	if status == http.StatusInternalServerError {
		f, _ := ginErr.Meta.(failure)
		if f.key == "" {
			f.key = "request_failed"
		}
		h.log.Errorw(f.key, append([]any{"err", ginErr.Err, "path", c.Request.URL.Path}, f.fields...)...)
	}
	c.JSON(status, errorBody{Error: msg})
}

func (h *Handler) classify(c *gin.Context, err error) (int, string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Msg
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, notFoundMessage(c)
	case errors.Is(err, service.ErrDuplicateUsername):
		return http.StatusConflict, service.ErrDuplicateUsername.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrExpiredToken):
		return http.StatusForbidden, errTokenInvalid
	default:
		return http.StatusInternalServerError, errInternal
	}
}

func notFoundMessage(c *gin.Context) string {
	if resource := c.GetString(ctxResourceKey); resource != "" {
		return resource + " not found"
	}
	return "not found"
}

func (h *Handler) recoverPanic(c *gin.Context, recovered any) {
	h.log.Errorw("panic_recovered", "panic", recovered, "path", c.Request.URL.Path)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errInternal})
}

// bindJSONOrBadRequest binds the request body into dst. On failure it reports a
// field-level validation error and returns false.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.log.Infow("bad_request_body", "path", c.Request.URL.Path, "err", err)
		fail(c, "bad_request_body", &service.ValidationError{Msg: bindErrorMessage(err)})
		return false
	}
	return true
}

func bindErrorMessage(err error) string {
	var (
		verrs     validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		return fieldMessage(verrs[0])
	case errors.As(err, &typeErr):
		return fmt.Sprintf("%s must be %s", typeErr.Field, describeKind(typeErr.Type))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return "malformed JSON body"
	case errors.Is(err, io.EOF):
		return "request body is required"
	default:
		return "invalid request body"
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}

func describeKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Bool:
		return "a boolean"
	default:
		return "a valid " + t.Kind().String()
	}
}

var tagNameOnce sync.Once

// useJSONFieldNames makes validation errors report json field names.
func useJSONFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}
