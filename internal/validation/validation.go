// Package validation checks request structs and turns every violated
// constraint into one aggregated validation error.
//
// Struct tags use go-playground/validator with three extra tags:
// "hash32" (0x + 64 hex), "address" (0x + 40 hex) and "rfc3339".
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/evidenceledger/veritas/internal/apperr"
	"github.com/evidenceledger/veritas/internal/errl"
	"github.com/evidenceledger/veritas/internal/fingerprint"
)

// AddressFormatMessage is the message given for a malformed account or
// contract identifier.
const AddressFormatMessage = "invalid address format: must start with 0x and contain exactly 40 hexadecimal characters"

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		// Registration only fails for empty tags or nil functions.
		_ = v.RegisterValidation("hash32", func(fl validator.FieldLevel) bool {
			return fingerprint.IsHash32(fl.Field().String())
		})
		_ = v.RegisterValidation("address", func(fl validator.FieldLevel) bool {
			return fingerprint.IsAddress(fl.Field().String())
		})
		_ = v.RegisterValidation("rfc3339", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(time.RFC3339, fl.Field().String())
			return err == nil
		})

		instance = v
	})
	return instance
}

// Struct validates s. The returned error is a validation apperr.Error whose
// Details name every offending field, in declaration order.
func Struct(s any) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(apperr.KindInternal, "internal error", errl.Error(err))
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, describe(fe))
	}
	return apperr.Validation("invalid request", details...)
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "hash32":
		return field + ": " + fingerprint.HashFormatMessage
	case "address":
		return field + ": " + AddressFormatMessage
	case "rfc3339":
		return field + " must be an RFC 3339 timestamp"
	case "url", "http_url":
		return field + " must be an absolute URL"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
