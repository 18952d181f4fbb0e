package validation

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/shared/validate"
)

func init() {
	if v, ok := validatorEngine(); ok {
		if err := validate.Register(v); err != nil {
			panic(err)
		}
	}
}

func validatorEngine() (*validator.Validate, bool) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	return v, ok
}
