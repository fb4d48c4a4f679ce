package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/Filipe-Ambrozio/stockwatch/internal/expiry"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	rules := map[string]func(string) bool{
		"department":   models.IsDepartment,
		"user_section": models.IsUserSection,
		"status_color": models.IsStatusColor,
		"calendar_date": func(s string) bool {
			_, err := expiry.ParseDate(s)
			return err == nil
		},
		"username": func(s string) bool {
			return strings.IndexFunc(s, unicode.IsSpace) < 0
		},
	}
	for tag, ok := range rules {
		ok := ok
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return ok(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	return v
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " is too long"
	case "department":
		return fe.Field() + " must be one of " + strings.Join(models.Departments, ", ")
	case "user_section":
		return fe.Field() + " must be Admin, Management or a department"
	case "status_color":
		return fe.Field() + " must be one of " + strings.Join(models.StatusColors, ", ")
	case "calendar_date":
		return fe.Field() + " must be a date as YYYY-MM-DD"
	case "username":
		return fe.Field() + " must not contain spaces"
	default:
		return fe.Field() + " is invalid"
	}
}
