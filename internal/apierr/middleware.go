package apierr

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorBody struct {
	Message string       `json:"message"`
	Code    string       `json:"code"`
	Errors  []FieldError `json:"errors,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// Middleware is the single translator from failures to the wire error
// contract. Handlers and middleware push typed errors via c.Error and abort;
// panics are recovered and treated as unclassified. Every failure is logged;
// the log call never prevents the response from being written.
func Middleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}

	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				classified := Classify(panicError{value: r})
				logFailure(logger, c, classified, debug.Stack())
				writeError(c, classified)
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		classified := Classify(c.Errors[0].Err)
		logFailure(logger, c, classified, nil)
		writeError(c, classified)
	}
}

func writeError(c *gin.Context, e *Error) {
	if c.Writer.Written() {
		return
	}
	c.JSON(e.Status, errorEnvelope{Error: errorBody{
		Message: e.Message,
		Code:    e.Code,
		Errors:  e.Fields,
	}})
}

func logFailure(logger *zap.Logger, c *gin.Context, e *Error, stack []byte) {
	defer func() {
		// A failing log emission must never take down the response path.
		_ = recover()
	}()

	fields := []zap.Field{
		zap.String("code", e.Code),
		zap.Int("status", e.Status),
		zap.Bool("operational", e.Operational()),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
	}
	if cause := e.Unwrap(); cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	if stack != nil {
		fields = append(fields, zap.ByteString("stack", stack))
	}

	if e.Operational() {
		logger.Warn(e.Message, fields...)
		return
	}
	logger.Error(e.Message, fields...)
}

type panicError struct {
	value any
}

func (p panicError) Error() string {
	if err, ok := p.value.(error); ok {
		return "panic: " + err.Error()
	}
	return "panic in handler"
}
