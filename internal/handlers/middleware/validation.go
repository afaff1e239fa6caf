package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/writify/writify-backend/internal/domain/entities"
	"github.com/writify/writify-backend/internal/domain/valueobjects"
)

// RegisterValidators adds the marketplace tags to gin's validator and makes
// field errors report JSON names.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return registerValidators(v)
}

func registerValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})

	validators := map[string]validator.Func{
		"whatsapp": func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || valueobjects.IsValidWhatsApp(s)
		},
		"writer_status": func(fl validator.FieldLevel) bool {
			return entities.WriterStatus(fl.Field().String()).IsValid()
		},
		"user_role": func(fl validator.FieldLevel) bool {
			return entities.Role(fl.Field().String()).IsValid()
		},
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}
