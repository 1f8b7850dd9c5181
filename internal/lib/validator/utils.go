package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	govalidator "github.com/go-playground/validator/v10"

	"yamdb/proj/internal/utils"
)

// FieldErrors maps a JSON field name onto a human readable message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return strings.Join(parts, "; ")
}

func NewFieldError(field, msg string) FieldErrors {
	return FieldErrors{field: msg}
}

var (
	usernameRx = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
	slugRx     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// New returns a validator with the custom tags used across request DTOs registered.
func New() *govalidator.Validate {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	must(v.RegisterValidation("username", ValidateUsername))
	must(v.RegisterValidation("notme", ValidateNotMe))
	must(v.RegisterValidation("slug", ValidateSlug))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// structField strips the element index validator appends for dived slices.
func structField(err govalidator.FieldError) string {
	name, _, _ := strings.Cut(err.StructField(), "[")
	return name
}

func structType(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func getFieldName(obj any, origFieldName string) (fieldName string) {
	t := structType(obj)
	field, found := t.FieldByName(origFieldName)
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", origFieldName, t.Name()))
	}
	if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
		if jsonName := strings.Split(tag, ",")[0]; jsonName != "" {
			return jsonName
		}
	}
	return utils.CamelToSnake(origFieldName)
}

func ProcessValidationErrors(obj any, errs govalidator.ValidationErrors) FieldErrors {
	processedErrors := make(FieldErrors)
	for _, e := range errs {
		processedErrors[getFieldName(obj, structField(e))] = GetErrorMsgForField(obj, e)
	}
	return processedErrors
}

// ValidateStruct returns nil when obj is valid.
func ValidateStruct(validator *govalidator.Validate, obj any) FieldErrors {
	if err := validator.Struct(obj); err != nil {
		return ProcessValidationErrors(obj, err.(govalidator.ValidationErrors))
	}
	return nil
}

func GetErrorMsgForField(obj any, err govalidator.FieldError) (errorMsg string) {
	t := structType(obj)
	field, found := t.FieldByName(structField(err))
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", structField(err), t.Name()))
	}
	errorMsg = field.Tag.Get("errorMsg")
	if errorMsg != "" {
		return
	}
	switch err.Tag() {
	case "required":
		errorMsg = "This field is required"
	case "max":
		if err.Kind() == reflect.String {
			errorMsg = fmt.Sprintf("Ensure this field has no more than %s characters", err.Param())
		} else {
			errorMsg = fmt.Sprintf("The maximum value is %s", err.Param())
		}
	case "min":
		if err.Kind() == reflect.String {
			errorMsg = fmt.Sprintf("Ensure this field has at least %s characters", err.Param())
		} else {
			errorMsg = fmt.Sprintf("The minimum value is %s", err.Param())
		}
	case "gte":
		errorMsg = fmt.Sprintf("Value should be greater than or equal to %s", err.Param())
	case "lte":
		errorMsg = fmt.Sprintf("Value should be less than or equal to %s", err.Param())
	case "oneof":
		errorMsg = fmt.Sprintf("Value should be one of %s", err.Param())
	case "unique":
		errorMsg = "Value must not contain duplicate values"
	case "email":
		errorMsg = "Value must be a valid email address"
	case "username":
		errorMsg = "Username may contain only letters, digits and @/./+/-/_ characters"
	case "notme":
		errorMsg = `Username "me" is not allowed`
	case "slug":
		errorMsg = "Slug may contain only latin letters, digits, hyphens and underscores"
	default:
		errorMsg = "This field is invalid"
	}
	return
}

// CUSTOM VALIDATORS

func ValidateUsername(fl govalidator.FieldLevel) bool {
	return usernameRx.MatchString(fl.Field().String())
}

func ValidateNotMe(fl govalidator.FieldLevel) bool {
	return !strings.EqualFold(fl.Field().String(), "me")
}

func ValidateSlug(fl govalidator.FieldLevel) bool {
	return slugRx.MatchString(fl.Field().String())
}

