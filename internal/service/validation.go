package service

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports fields by their form names.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		default:
			return name
		}
	})
	return validate
}

func validationMessage(fe validator.FieldError) string {
	path := strings.Split(fe.Namespace(), ".")
	if len(path) > 1 {
		path = path[1:]
	}

	switch {
	case path[0] == "api_key":
		return "Please enter your API key."
	case len(path) > 1:
		return "Please upload all required files."
	case fe.Tag() == "max":
		return "The " + strings.ReplaceAll(path[0], "_", " ") + " is too long."
	default:
		return "Invalid " + strings.ReplaceAll(path[0], "_", " ") + "."
	}
}
