// Package inputval validates form input structs with waffle/pantry/validate
// and turns failures into messages fit for a flash or form error.
//
//	type createPageInput struct {
//	    Name string `validate:"required,max=200" label:"Page name"`
//	    Slug string `validate:"required,slug,max=100" label:"Slug"`
//	}
//
//	if res := inputval.Validate(in); res.HasErrors() {
//	    renderWithError(w, r, res.First())
//	}
package inputval

import (
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/stratapage/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/validate"
)

// Result holds validation failures in field order.
type Result struct {
	Errors []FieldError
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) > 0 {
		return r.Errors[0].Message
	}
	return ""
}

var (
	validator     *validate.Validator
	validatorOnce sync.Once
)

func getValidator() *validate.Validator {
	validatorOnce.Do(func() {
		validator = validate.New(validate.WithStopOnFirstError())

		validator.RegisterRuleFunc("slug", func(value any) bool {
			s, ok := value.(string)
			return ok && IsValidSlug(s)
		}, "slug")

		validator.RegisterRuleFunc("sectiontype", func(value any) bool {
			s, ok := value.(string)
			return ok && models.IsValidSectionType(s)
		}, "sectiontype")

		// empty means the default theme
		validator.RegisterRuleFunc("theme", func(value any) bool {
			s, ok := value.(string)
			return ok && models.IsValidTheme(s)
		}, "theme")
	})
	return validator
}

// Validate checks s against its `validate` tags. Messages use the field's
// `label` tag, falling back to the json name or the Go field name.
//
// Besides the pantry/validate rules (required, email, oneof, min, max) it
// understands slug, sectiontype and theme.
func Validate(s any) *Result {
	result := &Result{}

	err := getValidator().Struct(s)
	if err == nil {
		return result
	}

	errs, ok := err.(validate.Errors)
	if !ok {
		return result
	}
	labels := fieldLabels(s)
	for _, e := range errs {
		label := labels[e.Field]
		if label == "" {
			label = e.Field
		}
		result.Errors = append(result.Errors, FieldError{
			Field:   e.Field,
			Label:   label,
			Message: message(label, e.Rule, e.Param),
		})
	}
	return result
}

func fieldLabels(s any) map[string]string {
	labels := make(map[string]string)

	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return labels
	}

	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := field.Name
		if tag, _, _ := strings.Cut(field.Tag.Get("json"), ","); tag != "" && tag != "-" {
			name = tag
		}
		if label := field.Tag.Get("label"); label != "" {
			labels[name] = label
		}
	}
	return labels
}

func message(label, rule, param string) string {
	switch rule {
	case "required":
		return label + " is required."
	case "email":
		return "A valid email address is required."
	case "oneof", "enum":
		return label + " must be one of: " + strings.ReplaceAll(param, " ", ", ") + "."
	case "min":
		return label + " must be at least " + param + " characters."
	case "max":
		return label + " must be at most " + param + " characters."
	case "slug":
		return label + " may only contain lowercase letters, numbers and dashes."
	case "sectiontype":
		names := make([]string, 0, 5)
		for _, t := range models.AllSectionTypes() {
			names = append(names, string(t))
		}
		return label + " must be one of: " + strings.Join(names, ", ") + "."
	case "theme":
		return label + " must be one of: " + strings.Join(models.AllThemes(), ", ") + "."
	default:
		return label + " is invalid."
	}
}

// IsValidSlug reports whether s is non-empty and uses only [a-z0-9-].
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-') {
			return false
		}
	}
	return true
}

// IsValidLink accepts what a section button or image may point at: nothing,
// an in-page #anchor, a site path, or an http(s) URL.
func IsValidLink(s string) bool {
	s = strings.TrimSpace(s)
	switch {
	case s == "", strings.HasPrefix(s, "#"):
		return true
	case strings.HasPrefix(s, "/"):
		return !strings.HasPrefix(s, "//")
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
