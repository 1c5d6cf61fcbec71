package auth

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
)

// FormatValidationErrorToMap flattens an ozzo validation result into a
// field => message map suitable for a JSON response.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var errs validation.Errors
	if ok := asValidationErrors(err, &errs); !ok {
		out["form"] = err.Error()
		return out
	}

	for field, ferr := range errs {
		if ferr == nil {
			continue
		}
		out[field] = ferr.Error()
	}

	return out
}

func asValidationErrors(err error, target *validation.Errors) bool {
	if errs, ok := err.(validation.Errors); ok {
		*target = errs
		return true
	}
	return false
}

// ValidateEmailShape accepts any address with a local part and a domain.
// Deliverability is the mail provider's problem, not ours.
func ValidateEmailShape(value any) error {
	s, _ := value.(string)
	if !strings.Contains(s, "@") {
		return fmt.Errorf("must be a valid email address")
	}
	return nil
}
