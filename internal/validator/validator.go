package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

var phoneRe = regexp.MustCompile(`^[+]?[0-9\s\-()]{10,}$`)

// Setup registers the validator with English translations and the custom
// record rules on Gin's binding engine. Call once during application startup.
func Setup() {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return
	}

	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// personname: at least two characters, letters and spaces only.
	v.RegisterValidation("personname", func(fl govalidator.FieldLevel) bool {
		name := strings.TrimSpace(fl.Field().String())
		if len(name) < 2 {
			return false
		}
		for _, r := range name {
			if !unicode.IsLetter(r) && !unicode.IsSpace(r) {
				return false
			}
		}
		return true
	})

	// phone: optional leading +, then at least 10 digits/separators.
	v.RegisterValidation("phone", func(fl govalidator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})

	// Register English translations.
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	en_translations.RegisterDefaultTranslations(v, trans)

	registerCustomTranslation(v, "personname", "{0} must contain only letters and spaces")
	registerCustomTranslation(v, "phone", "{0} must be a valid phone number")
}

func registerCustomTranslation(v *govalidator.Validate, tag, msg string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		},
		func(ut ut.Translator, fe govalidator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	)
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// Check validates a struct outside a request context, for rows assembled
// from imported files. Returns nil on success or a field error map.
func Check(dst interface{}) map[string]string {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return nil
	}
	if err := v.Struct(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
