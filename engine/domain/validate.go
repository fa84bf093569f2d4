package domain

import (
	"strconv"
	"strings"
)

// ParseYear interprets the year dropdown's display text. It accepts only
// plain digits inside [MinModelYear, MaxModelYear]; the placeholder label
// "Year" and anything else report false.
func ParseYear(text string) (int, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	y, err := strconv.Atoi(text)
	if err != nil || y < MinModelYear || y > MaxModelYear {
		return 0, false
	}
	return y, true
}

// IsSelected reports whether a make or model value is a real choice.
func IsSelected(value string) bool {
	value = strings.TrimSpace(value)
	return value != "" && value != Placeholder
}

// ValidateVehicleNames checks a make/model/year triple against SupportedMakes.
func ValidateVehicleNames(makeName, modelName string, year int) error {
	models, ok := SupportedMakes[makeName]
	if !ok {
		return NewValidationError("make", makeName, ErrUnsupportedMake)
	}

	found := false
	for _, m := range models {
		if strings.EqualFold(m, modelName) {
			found = true
			break
		}
	}
	if !found {
		return NewValidationError("model", modelName, ErrUnsupportedModel)
	}

	if year < MinModelYear || year > MaxModelYear {
		return NewValidationError("year", strconv.Itoa(year), ErrYearOutOfRange)
	}
	return nil
}
