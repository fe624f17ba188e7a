// Package identifiers validates Philippine statutory identifier formats.
//
// Validators return booleans rather than errors so callers can aggregate
// format problems into a single list.
package identifiers

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validation tags registered by RegisterValidations.
const (
	TagTIN        = "ph_tin"
	TagSSS        = "ph_sss"
	TagPhilHealth = "ph_philhealth"
	TagPagIBIG    = "ph_pagibig"
)

var (
	tinPattern        = regexp.MustCompile(`^\d{3}-\d{3}-\d{3}-\d{3}$`)
	sssPattern        = regexp.MustCompile(`^\d{2}-\d{7}-\d$`)
	philHealthPattern = regexp.MustCompile(`^\d{2}-\d{9}-\d$`)
	pagIBIGPattern    = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}$`)
)

// ValidTIN reports whether tin follows the 000-000-000-000 layout,
// including the 3-digit branch code.
func ValidTIN(tin string) bool {
	return tinPattern.MatchString(strings.TrimSpace(tin))
}

// ValidSSS reports whether n follows the 00-0000000-0 layout.
func ValidSSS(n string) bool {
	return sssPattern.MatchString(strings.TrimSpace(n))
}

// ValidPhilHealth reports whether n follows the 00-000000000-0 layout.
func ValidPhilHealth(n string) bool {
	return philHealthPattern.MatchString(strings.TrimSpace(n))
}

// ValidPagIBIG reports whether n follows the 0000-0000-0000 layout.
func ValidPagIBIG(n string) bool {
	return pagIBIGPattern.MatchString(strings.TrimSpace(n))
}

// RegisterValidations installs the ph_* struct tags on v.
func RegisterValidations(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		TagTIN:        ValidTIN,
		TagSSS:        ValidSSS,
		TagPhilHealth: ValidPhilHealth,
		TagPagIBIG:    ValidPagIBIG,
	}
	for tag, fn := range rules {
		check := fn
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		}); err != nil {
			return err
		}
	}
	return nil
}

// NewValidator returns a validator with the ph_* tags registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}
