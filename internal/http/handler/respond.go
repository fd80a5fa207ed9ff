package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/meminc/powsysmon/internal/apierr"
)

// envelope is the success wire shape. Data is always present, even when null.
type envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, envelope{Data: data, Message: message})
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// bindError keeps field-level violations intact for the dispatcher and folds
// everything else (malformed JSON, wrong types) into a plain validation error.
func bindError(err error) error {
	var violations validator.ValidationErrors
	if errors.As(err, &violations) {
		return err
	}
	return apierr.Validation("Invalid request body")
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apierr.Validation("Invalid path parameter", apierr.FieldError{Path: "id", Message: "must be an integer"})
	}
	return id, nil
}
