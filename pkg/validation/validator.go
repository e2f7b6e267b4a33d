package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validate is the global validator instance
var Validate *validator.Validate

func init() {
	Validate = validator.New()

	_ = Validate.RegisterValidation("traffic_factor", validateTrafficFactor)
	_ = Validate.RegisterValidation("risk_factor", validateRiskFactor)
}

// ValidateStruct validates a struct and returns a readable error if validation fails
func ValidateStruct(s interface{}) error {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var messages []string
	for _, fieldErr := range validationErrors {
		messages = append(messages, fmt.Sprintf("%s failed on %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// ValidCoordinate reports whether lat/lng are within WGS84 bounds.
func ValidCoordinate(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ValidTimeWindow reports whether the window is chronological.
func ValidTimeWindow(start, end time.Time) bool {
	return !start.After(end)
}

func validateTrafficFactor(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return v >= 0 && v <= 1
}

func validateRiskFactor(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return v >= 0 && v <= 1
}
