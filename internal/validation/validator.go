package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kinderhub/backend/internal/domain"
	"github.com/kinderhub/backend/internal/dto"
)

// New returns a validator that reports JSON field names and knows the
// ddmmyyyy tag for canonical dates.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("ddmmyyyy", func(fl validator.FieldLevel) bool {
		return domain.ValidDate(fl.Field().String())
	})
	return v
}

// Details converts a validation error into response details, in struct
// field order.
func Details(err error) []dto.ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []dto.ErrorDetail{{Field: "", Message: err.Error()}}
	}
	details := make([]dto.ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, dto.ErrorDetail{
			Field:   fe.Field(),
			Message: Message(fe),
		})
	}
	return details
}

// FirstReason returns the message of the first failing field.
func FirstReason(err error) string {
	details := Details(err)
	if len(details) == 0 {
		return "Invalid record"
	}
	return details[0].Message
}

func Message(fe validator.FieldError) string {
	label := Label(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "ddmmyyyy":
		return "Invalid date format"
	case "email":
		return label + " must be a valid email"
	case "url":
		return label + " must be a valid URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	}
	return label + " is invalid"
}

// Label turns a camelCase field name into words: "startDate" -> "Start date".
func Label(field string) string {
	if field == "" {
		return "Value"
	}
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		case r >= 'A' && r <= 'Z':
			prev := field[i-1]
			if prev >= 'A' && prev <= 'Z' {
				b.WriteRune(r)
				continue
			}
			b.WriteByte(' ')
			// acronyms such as "ID" keep their case
			if i+1 < len(field) && field[i+1] >= 'A' && field[i+1] <= 'Z' {
				b.WriteRune(r)
				continue
			}
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// TrimStrings trims every settable string field of the struct v points to.
// Fields tagged trim:"-" (passwords) are left alone.
func TrimStrings(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		if rt.Field(i).Tag.Get("trim") == "-" {
			continue
		}
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
