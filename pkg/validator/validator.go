package validator

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validate  = validator.New()
	sanitizer = bluemonday.StrictPolicy()
)

func Init() {
	registerCustomValidations(validate)

	if engine, ok := binding.Validator.Engine().(*validator.Validate); ok {
		registerCustomValidations(engine)
	}
}

func registerCustomValidations(v *validator.Validate) {
	v.RegisterValidation("product_id", validateProductID)
	v.RegisterValidation("country_code", validateCountryCode)
	v.RegisterValidation("currency_code", validateCurrencyCode)
}

func Validate(s interface{}) error {
	return validate.Struct(s)
}

func SanitizeString(s string) string {
	return sanitizer.Sanitize(s)
}

func TrimSpaces(s string) string {
	return strings.TrimSpace(s)
}

func NormalizeSpaces(s string) string {
	space := regexp.MustCompile(`\s+`)
	return space.ReplaceAllString(s, " ")
}

func validateProductID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]+$`, id)
	return matched && len(id) >= 1 && len(id) <= 64
}

func validateCountryCode(fl validator.FieldLevel) bool {
	return IsCountryCode(fl.Field().String())
}

func validateCurrencyCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	matched, _ := regexp.MatchString(`^[a-zA-Z]{3}$`, code)
	return matched
}

// IsCountryCode reports whether the value is a 2-letter ISO 3166-1 alpha code.
func IsCountryCode(code string) bool {
	matched, _ := regexp.MatchString(`^[a-zA-Z]{2}$`, strings.TrimSpace(code))
	return matched
}

func ValidateURL(url string) bool {
	urlRegex := regexp.MustCompile(`^https?://[a-zA-Z0-9\-\.]+(:\d+)?(/.*)?$`)
	return urlRegex.MatchString(url)
}
