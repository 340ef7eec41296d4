// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	usernameRe      = regexp.MustCompile("^[a-zA-Z0-9_]+$")
	productNumberRe = regexp.MustCompile("^[0-9a-z]+$")
	productScoreRe  = regexp.MustCompile("^[A-Z]+$")
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("username", validateUsername)
	validate.RegisterValidation("product_number", validateProductNumber)
	validate.RegisterValidation("product_score", validateProductScore)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()

	if len(username) < 3 || len(username) > 50 {
		return false
	}
	return usernameRe.MatchString(username)
}

// Product "number" codes are short lowercase base-36 identifiers.
func validateProductNumber(fl validator.FieldLevel) bool {
	return productNumberRe.MatchString(fl.Field().String())
}

// Product "score" codes are short uppercase letter grades.
func validateProductScore(fl validator.FieldLevel) bool {
	return productScoreRe.MatchString(fl.Field().String())
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "gte":
		return e.Field() + " must be at least " + e.Param()
	case "lte":
		return e.Field() + " must be at most " + e.Param()
	case "username":
		return "Username must be 3-50 characters and contain only letters, numbers, and underscores"
	case "product_number":
		return "Number may only contain digits and lowercase letters"
	case "product_score":
		return "Score may only contain uppercase letters"
	default:
		return e.Field() + " is invalid"
	}
}
