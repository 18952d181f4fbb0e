package validation

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/apperr"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/validate"
)

type FieldErrors map[string]string

// FromBindError maps binding/validation failures to field -> message, keyed
// by the json (or form) tag of dst's fields.
func FromBindError(err error, dst any) FieldErrors {
	return FieldErrors(validate.Fields(err, dst))
}

// BindJSON decodes the body into dst and returns an apperr.Invalid carrying
// the field messages on failure. An empty body binds as zero values.
func BindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if verr := validateStruct(dst); verr != nil {
				return apperr.InvalidErr("Please check the highlighted fields.", FromBindError(verr, dst))
			}
			return nil
		}
		return apperr.InvalidErr("Please check the highlighted fields.", FromBindError(err, dst))
	}
	return nil
}

// BindQuery binds URL query parameters (form tags).
func BindQuery(c *gin.Context, dst any) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return apperr.InvalidErr("Invalid query parameters.", FromBindError(err, dst))
	}
	return nil
}

func validateStruct(dst any) error {
	if v, ok := validatorEngine(); ok {
		return v.Struct(dst)
	}
	return nil
}
