// Package validator checks ingestion requests with struct-tag rules and
// reports per-field error details.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/Adithya-Monish-Kumar-K/Multilingual-Search-Engine/internal/ingestion"
)

// ValidationError holds per-field validation failure messages, keyed by the
// JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

type Validator struct {
	validate  *playground.Validate
	supported map[string]struct{}
}

// New returns a Validator accepting documents in the given languages.
func New(supportedLanguages []string) *Validator {
	v := &Validator{
		validate:  playground.New(playground.WithRequiredStructEnabled()),
		supported: make(map[string]struct{}, len(supportedLanguages)),
	}
	for _, l := range supportedLanguages {
		v.supported[l] = struct{}{}
	}
	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.validate.RegisterValidation("supported_language", func(fl playground.FieldLevel) bool {
		_, ok := v.supported[fl.Field().String()]
		return ok
	})
	return v
}

// ValidateIngestRequest normalizes req in place and checks it.
func (v *Validator) ValidateIngestRequest(req *ingestion.IngestRequest) error {
	req.Normalize()
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	errs := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs[fe.Field()] = message(fe)
	}
	return &ValidationError{Fields: errs}
}

// Supported returns the accepted language codes, sorted.
func (v *Validator) Supported() []string {
	out := make([]string, 0, len(v.supported))
	for l := range v.supported {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func message(fe playground.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be an absolute URL", fe.Field())
	case "supported_language":
		return fmt.Sprintf("%s %q is not a supported language", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
