// Package validation wraps go-playground/validator with the listing rules and
// turns failures into field level messages keyed by dotted json path.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	vinPattern   = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)
	phonePattern = regexp.MustCompile(`^[0-9+\-() ]{7,20}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return "-"
		}
		return name
	})

	mustRegister(v, "vin", func(fl validator.FieldLevel) bool {
		return vinPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		if f.Kind() == reflect.String {
			return strings.TrimSpace(f.String()) != ""
		}
		return !f.IsZero()
	})
	mustRegister(v, "maxyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(MaxModelYear())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// MaxModelYear is the newest model year accepted for a listing.
func MaxModelYear() int {
	return time.Now().Year() + 1
}

// Struct validates s and returns a *domain.ValidationError describing every
// failing field, or nil.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		path := fieldPath(fe.Namespace())
		fields[path] = append(fields[path], message(fe))
	}
	return domain.NewValidationError(fields)
}

// fieldPath drops the root type and embedded struct names from a validator
// namespace, e.g. "VehicleDetails.ListingContact.sellerContact.email" becomes
// "sellerContact.email".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	kept := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		if r := []rune(p)[0]; unicode.IsUpper(r) {
			continue
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return namespace
	}
	return strings.Join(kept, ".")
}

// Wizard steps of the post-ad form.
const (
	StepBasic   = "basic"
	StepDetails = "details"
	StepMedia   = "media"
	StepContact = "contact"
	StepAll     = "all"
)

// NewStep returns a pointer to the schema for a wizard step, ready to be
// decoded into. Unknown steps return false.
func NewStep(step string) (any, bool) {
	switch strings.ToLower(strings.TrimSpace(step)) {
	case StepBasic, "basics":
		return &models.ListingBasics{}, true
	case StepDetails, "specs":
		return &models.ListingSpecs{}, true
	case StepMedia:
		return &models.ListingMedia{}, true
	case StepContact:
		return &models.ListingContact{}, true
	case StepAll, "":
		return &models.VehicleDetails{}, true
	}
	return nil, false
}

// Steps lists the accepted step names.
func Steps() []string {
	return []string{StepBasic, StepDetails, StepMedia, StepContact, StepAll}
}
