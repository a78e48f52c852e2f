package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"reflect"
	"strings"

	"p2p-wallet/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(fieldName)
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("no_html", validateNoHTML)
	}
}

// fieldName reports fields by their wire name so error paths match the request body.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// decimalValue exposes decimals to the validator as their string form.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

// validateMoney accepts a strictly positive decimal. Minimum unit and
// precision are enforced by the transfer engine.
func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// validateNoHTML rejects markup characters in display names.
func validateNoHTML(fl validator.FieldLevel) bool {
	return !strings.ContainsAny(fl.Field().String(), "<>")
}

// BindJSON decodes the request body into obj, sanitizes its strings and
// then runs the binding validator, so length rules see trimmed input.
func BindJSON(c *gin.Context, obj interface{}) *apperror.AppError {
	body, err := c.GetRawData()
	if err != nil {
		return BindError(err)
	}
	if err := json.Unmarshal(body, obj); err != nil {
		return BindError(err)
	}
	SanitizeStruct(obj)
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return BindError(err)
	}
	return nil
}

var fieldLabels = map[string]string{
	"firstName":   "First name",
	"lastName":    "Last name",
	"email":       "Email",
	"password":    "Password",
	"receiverId":  "Receiver ID",
	"payerId":     "Payer ID",
	"amount":      "Amount",
	"description": "Description",
	"action":      "Action",
}

// BindError converts a ShouldBind* failure into a VAL_001 error carrying one
// entry per offending field.
func BindError(err error) *apperror.AppError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.ErrPayloadTooLarge()
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{Path: fe.Field(), Message: fieldMessage(fe)})
		}
		return apperror.ValidationFields("Validation failed", fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperror.ValidationFields("Validation failed", []apperror.FieldError{
			{Path: typeErr.Field, Message: fmt.Sprintf("%s has an invalid type", label(typeErr.Field))},
		})
	}

	return apperror.ValidationFields("Invalid JSON payload", []apperror.FieldError{
		{Path: "body", Message: "Request body must be valid JSON"},
	})
}

func fieldMessage(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", name, fe.Param())
	case "uuid":
		return "Invalid ID format"
	case "money":
		return name + " must be positive"
	case "no_html":
		return name + " must not contain HTML"
	case "oneof":
		opts := strings.Fields(fe.Param())
		if len(opts) == 2 {
			return fmt.Sprintf("%s must be either %s or %s", name, opts[0], opts[1])
		}
		return fmt.Sprintf("%s must be one of: %s", name, strings.Join(opts, ", "))
	}
	return name + " is invalid"
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer. The `sanitize` tag narrows
// this per field: "trim" only trims, "-" leaves the field untouched.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		mode := rt.Field(i).Tag.Get("sanitize")
		if !f.CanSet() || mode == "-" {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String(), mode))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String(), mode))
			}
		}
	}
}

func sanitize(s, mode string) string {
	s = strings.TrimSpace(s)
	if mode == "trim" {
		return s
	}
	return html.EscapeString(s)
}
