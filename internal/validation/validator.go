// Package validation checks untrusted request bodies against the user and
// order shapes before they reach storage.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"usersvc/internal/models"

	"github.com/go-playground/validator/v10"
)

// bodyField is the path reported for problems with the document as a whole.
const bodyField = "body"

// Validator decodes and validates payloads. It holds no request state and is
// safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("capitalized", isCapitalized); err != nil {
		panic(fmt.Sprintf("validation: register capitalized: %v", err))
	}
	return &Validator{validate: v}
}

// isCapitalized accepts strings whose first rune is already upper case.
func isCapitalized(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r))+s[size:] == s
}

// User validates a full user document.
func (v *Validator) User(body []byte) (models.User, error) {
	var p UserPayload
	if err := v.decode(body, &p); err != nil {
		return models.User{}, err
	}
	return p.User(), nil
}

// Order validates a single order.
func (v *Validator) Order(body []byte) (models.Order, error) {
	var p OrderPayload
	if err := v.decode(body, &p); err != nil {
		return models.Order{}, err
	}
	return p.Order(), nil
}

func (v *Validator) decode(body []byte, dst any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return &Error{Violations: []Violation{{Field: bodyField, Constraint: "required", Message: "request body is required"}}}
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(dst); err != nil {
		return &Error{Violations: []Violation{decodeViolation(err)}}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &Error{Violations: []Violation{{Field: bodyField, Constraint: "json", Message: "unexpected data after JSON document"}}}
	}
	if n, ok := dst.(interface{ normalize() }); ok {
		n.normalize()
	}
	if err := v.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return &Error{Violations: []Violation{{Field: bodyField, Constraint: "invalid", Message: err.Error()}}}
		}
		out := &Error{Violations: make([]Violation, 0, len(verrs))}
		for _, fe := range verrs {
			out.Violations = append(out.Violations, fieldViolation(fe))
		}
		return out
	}
	return nil
}

func decodeViolation(err error) Violation {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = bodyField
		}
		return Violation{
			Field:      field,
			Constraint: "type",
			Message:    fmt.Sprintf("expected %s, got %s", typeName(typeErr.Type), typeErr.Value),
		}
	}
	return Violation{Field: bodyField, Constraint: "json", Message: "malformed JSON: " + err.Error()}
}

func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice:
		return "array"
	case reflect.Struct:
		return "object"
	default:
		return t.Kind().String()
	}
}

func fieldViolation(fe validator.FieldError) Violation {
	// Namespace is "UserPayload.fullName.firstName"; drop the struct name.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "min":
		msg = "must not be empty"
	case "max":
		msg = fmt.Sprintf("cannot be more than %s characters", fe.Param())
	case "email":
		msg = "must be a valid email address"
	case "capitalized":
		msg = fmt.Sprintf("%v is not in capitalize format", fe.Value())
	default:
		msg = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
	return Violation{Field: field, Constraint: fe.Tag(), Message: msg}
}
