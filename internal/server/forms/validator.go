// Package forms holds request payloads and the validator that checks them.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/go-playground/validator/v10"
)

// Validator wraps a lazily initialised go-playground engine and reports
// every violation as a *common.ValidationError keyed by JSON field name.
type Validator struct {
	once     sync.Once
	validate *validator.Validate
}

// Default is the process-wide validator.
var Default = &Validator{}

// Validate checks obj. It returns nil, a *common.ValidationError, or an
// error for a value that cannot be validated at all.
func (v *Validator) Validate(obj any) error {
	if kindOfData(obj) != reflect.Struct {
		return nil
	}

	v.lazyinit()

	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &common.ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

// Engine returns the underlying validator engine.
func (v *Validator) Engine() *validator.Validate {
	v.lazyinit()
	return v.validate
}

func (v *Validator) lazyinit() {
	v.once.Do(func() {
		v.validate = validator.New(validator.WithRequiredStructEnabled())

		v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})

		_ = v.validate.RegisterValidation("notblank", notBlank)
		_ = v.validate.RegisterValidation("maxbytes", maxBytes)
	})
}

func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	for f.Kind() == reflect.Ptr {
		if f.IsNil() {
			return false
		}
		f = f.Elem()
	}
	if f.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(f.String()) != ""
}

// maxBytes limits the encoded length of a string, which is what bcrypt
// counts, rather than its rune count.
func maxBytes(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.String {
		return true
	}
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(f.String()) <= n
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}

// kindOfData returns the Kind of data, looking through one pointer.
func kindOfData(data any) reflect.Kind {
	value := reflect.ValueOf(data)
	valueType := value.Kind()

	if valueType == reflect.Ptr {
		valueType = value.Elem().Kind()
	}
	return valueType
}
