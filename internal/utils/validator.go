// internal/utils/validator.go
package utils

import (
	"math/big"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

var (
	usernamePattern = regexp.MustCompile("^[a-zA-Z0-9_]+$")
	digitsPattern   = regexp.MustCompile("^[0-9]+$")
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("username", validateUsername)
	validate.RegisterValidation("eth_address", validateEthAddress)
	validate.RegisterValidation("decimal_amount", validateDecimalAmount)
	validate.RegisterValidation("royalty_percent", validateRoyaltyPercent)
	validate.RegisterValidation("license_terms", validateLicenseTerms)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateUsername(fl validator.FieldLevel) bool {
	username := fl.Field().String()

	// Username should be alphanumeric and underscores, 3-50 characters
	if len(username) < 3 || len(username) > 50 {
		return false
	}

	return usernamePattern.MatchString(username)
}

func validateEthAddress(fl validator.FieldLevel) bool {
	return common.IsHexAddress(fl.Field().String())
}

// decimal_amount: a non-negative decimal string such as "0.25".
func validateDecimalAmount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative()
}

// royalty_percent: a decimal string between 0 and 100 inclusive.
func validateRoyaltyPercent(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative() && d.LessThanOrEqual(decimal.NewFromInt(100))
}

// license_terms: an on-chain license terms id, a positive uint256 in
// decimal digits.
func validateLicenseTerms(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if !digitsPattern.MatchString(raw) {
		return false
	}
	n, ok := new(big.Int).SetString(raw, 10)
	return ok && n.Sign() > 0 && n.BitLen() <= 256
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
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
	case "url":
		return e.Field() + " must be a valid URL"
	case "username":
		return "Username must be 3-50 characters and contain only letters, numbers, and underscores"
	case "eth_address":
		return e.Field() + " must be a 0x-prefixed 20 byte hex address"
	case "decimal_amount":
		return e.Field() + " must be a non-negative decimal number"
	case "royalty_percent":
		return e.Field() + " must be a percentage between 0 and 100"
	case "license_terms":
		return e.Field() + " must be a positive whole number"
	default:
		return e.Field() + " is invalid"
	}
}
