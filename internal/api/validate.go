package api

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

// ErrInvalidRequest matches any *ValidationError.
var ErrInvalidRequest = errors.New("invalid request")

// ValidationError lists the request fields that failed validation, keyed by
// their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, e.Fields[name])
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalidRequest) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRequest
}

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag  = "notblank"
	dayOfWeekTag = "dayofweek"
	slotTimeTag  = "slottime"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report JSON names so errors match what the API documents.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = validate.RegisterValidation(dayOfWeekTag, dayOfWeekValidation)
	_ = validate.RegisterValidation(slotTimeTag, slotTimeValidation)
	validate.RegisterStructValidation(scheduleRequestValidation, ScheduleRequest{})

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, dayOfWeekTag, slotTimeTag, "client_or_name"} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case dayOfWeekTag:
		return fmt.Sprintf("%s must be a weekday name, got %q", fe.Field(), fe.Value())
	case slotTimeTag:
		return fmt.Sprintf("%s must be HH:MM or HH:MM:SS, got %q", fe.Field(), fe.Value())
	case "client_or_name":
		return "either ClientId or FullName and Age are required"
	default:
		return fe.Error()
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

func dayOfWeekValidation(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case schedule.DayOfWeek:
		return v.Valid()
	case string:
		return schedule.DayOfWeek(v).Valid()
	}
	return false
}

func slotTimeValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := schedule.NormalizeTime(s)
	return err == nil
}

// scheduleRequestValidation requires an existing client or a new client's
// name and age.
func scheduleRequestValidation(sl validator.StructLevel) {
	r := sl.Current().Interface().(ScheduleRequest)
	if r.ClientID != nil && *r.ClientID != "" {
		return
	}
	if r.FullName == nil || strings.TrimSpace(*r.FullName) == "" || r.Age == nil {
		sl.ReportError(r.ClientID, "ClientId", "ClientID", "client_or_name", "")
	}
}

// validateBody validates a struct body, or each struct element of a slice body.
func validateBody(body any) error {
	v := reflect.ValueOf(body)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		return toValidationError(validate.Struct(v.Interface()))
	case reflect.Slice:
		for i := 0; i < v.Len(); i++ {
			el := v.Index(i)
			if el.Kind() != reflect.Struct {
				continue
			}
			if err := toValidationError(validate.Struct(el.Interface())); err != nil {
				return fmt.Errorf("item %d: %w", i+1, err)
			}
		}
	}
	return nil
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(translator)
	}
	return &ValidationError{Fields: fields}
}
