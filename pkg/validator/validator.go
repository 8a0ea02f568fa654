package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// ValidationError represents a single field validation failure. Path is the dotted
// location inside the validated struct, e.g. "seed.users[0].name".
type ValidationError struct {
	Field string `json:"field"`
	Path  string `json:"path,omitempty"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

func (v ValidationError) String() string {
	location := v.Path
	if location == "" {
		location = v.Field
	}
	if v.Param == "" {
		return fmt.Sprintf("%s failed on %s", location, v.Tag)
	}
	return fmt.Sprintf("%s failed on %s=%s", location, v.Tag, v.Param)
}

// ValidationErrors collects multiple validation failures.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(v))
	for i, failure := range v {
		parts[i] = failure.String()
	}
	return strings.Join(parts, "; ")
}

// ValidateStruct validates a struct using registered rules.
func ValidateStruct(s interface{}) error {
	return convert(getValidator().Struct(s))
}

// ValidateVar validates a single value against a tag expression, e.g. "required,gt=0".
func ValidateVar(field string, value interface{}, tag string) error {
	err := convert(getValidator().Var(value, tag))
	var failures ValidationErrors
	if errors.As(err, &failures) {
		for i := range failures {
			failures[i].Field = field
			failures[i].Path = field
		}
	}
	return err
}

// RegisterValidation exposes underlying validator custom rules.
func RegisterValidation(tag string, fn validator.Func) error {
	return getValidator().RegisterValidation(tag, fn)
}

func convert(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	failures := make(ValidationErrors, 0, len(ve))
	for _, fe := range ve {
		failures = append(failures, ValidationError{
			Field: fe.Field(),
			Path:  trimRoot(fe.Namespace()),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return failures
}

// trimRoot drops the top-level struct name from a validator namespace.
func trimRoot(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return ""
}

// notBlank rejects strings that are empty once surrounding whitespace is removed.
func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// fieldName reports json names first and falls back to the mapstructure tag used by
// configuration structs.
func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "mapstructure"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		switch name {
		case "":
			continue
		case "-":
			return fld.Name
		default:
			return name
		}
	}
	return fld.Name
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("notblank", notBlank)
		validate.RegisterTagNameFunc(fieldName)
	})
	return validate
}
