package cli

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
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
	return v
}

// validateBody checks a request body and reports the first violation as a
// validation error.
func validateBody(body any) error {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return ErrValidation.MsgErr(err.Error(), err)
	}
	return ErrValidation.New(describeFieldError(verrs[0]))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("Invalid value %q for %s: must be one of %s",
			fmt.Sprint(fe.Value()), fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed validation %q", fe.Field(), fe.Tag())
	}
}

// checkChoice validates a single flag value against its allowed choices.
func checkChoice(flag, value string, choices []string) error {
	if value == "" || len(choices) == 0 {
		return nil
	}
	if err := validate.Var(value, "oneof="+strings.Join(choices, " ")); err != nil {
		return ErrValidation.New(fmt.Sprintf("Invalid value %q for --%s: must be one of %s",
			value, flag, strings.Join(choices, ", ")))
	}
	return nil
}

// parseID coerces an identifier the API expects as a number.
func parseID(noun, id string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return 0, ErrValidation.New(fmt.Sprintf("Invalid %s ID %q: must be an integer", noun, id))
	}
	return n, nil
}
