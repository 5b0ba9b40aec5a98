package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

func message(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required", "notblank":
		return field + " is required"
	case "gt":
		if param == "0" {
			return field + " must be positive"
		}
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte", "min":
		return sizeMessage(fe, "at least")
	case "lte", "max":
		return sizeMessage(fe, "at most")
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(strings.Fields(param), ", "))
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "alpha":
		return field + " must contain only letters"
	case "vin":
		return field + " must be a 17 character VIN without I, O or Q"
	case "phone":
		return field + " must be 7 to 20 digits, spaces or + - ( )"
	case "maxyear":
		return fmt.Sprintf("%s must not be later than %d", field, MaxModelYear())
	}
	return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
}

func sizeMessage(fe validator.FieldError, bound string) string {
	field := fe.Field()
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("%s must be %s %s characters", field, bound, fe.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("%s must contain %s %s items", field, bound, fe.Param())
	}
	return fmt.Sprintf("%s must be %s %s", field, bound, fe.Param())
}
