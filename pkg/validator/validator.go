package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyField is returned when a required field is empty
var ErrEmptyField = errors.New("field cannot be empty")

// Required checks if a string field is not empty
func Required(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s: %w", fieldName, ErrEmptyField)
	}
	return nil
}

// Positive checks that an integer setting is greater than zero
func Positive(value int, fieldName string) error {
	if value <= 0 {
		return errors.New(fieldName + " must be greater than zero")
	}
	return nil
}

// PositiveFloat checks that a float setting is greater than zero
func PositiveFloat(value float64, fieldName string) error {
	if value <= 0 {
		return errors.New(fieldName + " must be greater than zero")
	}
	return nil
}

// Range checks that an integer setting falls within [min, max]
func Range(value, min, max int, fieldName string) error {
	if value < min || value > max {
		return errors.New(fieldName + " must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max))
	}
	return nil
}

// OneOf checks that a string setting is one of the allowed values
func OneOf(value, fieldName string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return errors.New(fieldName + " must be one of: " + strings.Join(allowed, ", "))
}

// Ordered checks that low is strictly below high (e.g. tier thresholds)
func Ordered(low, high int, fieldName string) error {
	if low >= high {
		return errors.New(fieldName + " thresholds must be strictly increasing")
	}
	return nil
}
