package validations

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	purposes = map[string]bool{"LESSON": true, "RENTAL": true, "PERSONAL_TRAINING": true}
	cadences = map[string]bool{"DAILY": true, "WEEKLY": true, "MONTHLY": true}
	statuses = map[string]bool{"PENDING": true, "CONFIRMED": true, "COMPLETED": true, "CANCELLED": true}
)

// Register adds the booking rules to v. Matching is case-insensitive.
// Field errors report the json (or form) name instead of the Go field name.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldName)

	rules := map[string]map[string]bool{
		"purpose": purposes,
		"cadence": cadences,
		"status":  statuses,
	}
	for tag, allowed := range rules {
		allowed := allowed
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return allowed[strings.ToUpper(strings.TrimSpace(fl.Field().String()))]
		}); err != nil {
			return err
		}
	}
	return nil
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
