package handler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// RequestValidator adapts go-playground/validator to echo.Validator.
// Field names in errors are the JSON names of the request DTOs.
type RequestValidator struct {
	v *validator.Validate
}

// NewValidator returns the validator installed as echo's e.Validator.
func NewValidator() echo.Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// roomtype accepts the fixed room categories only
	_ = v.RegisterValidation("roomtype", func(fl validator.FieldLevel) bool {
		return model.RoomType(fl.Field().String()).Valid()
	})
	return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

func validationFields(ves validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(ves))
	for _, fe := range ves {
		out[fe.Field()] = append(out[fe.Field()], describe(fe))
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a URL", fe.Field())
	case "roomtype":
		return fmt.Sprintf("%s must be one of %v", fe.Field(), model.RoomTypes)
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}
