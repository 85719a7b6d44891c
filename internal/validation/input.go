package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input limits.
const (
	MaxNameLength        = 255
	MaxEmailLength       = 320
	MaxPhoneLength       = 20
	MaxDescriptionLength = 100000
	MaxJSONPayload       = 1048576
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateName checks the length of a display name. Empty is allowed.
func ValidateName(name string) error {
	if length := utf8.RuneCountInString(name); length > MaxNameLength {
		return fmt.Errorf("name exceeds maximum length of %d characters (got %d)", MaxNameLength, length)
	}
	return nil
}

// ValidateRequired rejects blank values for the named field.
func ValidateRequired(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// ValidateEmail checks length and format. Empty is allowed.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if length := utf8.RuneCountInString(email); length > MaxEmailLength {
		return fmt.Errorf("email exceeds maximum length of %d characters (got %d)", MaxEmailLength, length)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}
	return nil
}

// ValidatePhone allows digits, spaces, dashes, parentheses and a leading +.
// Empty is allowed.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if length := utf8.RuneCountInString(phone); length > MaxPhoneLength {
		return fmt.Errorf("phone number exceeds maximum length of %d characters (got %d)", MaxPhoneLength, length)
	}
	digits := 0
	for i, r := range phone {
		switch {
		case r == '+' && i == 0:
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return fmt.Errorf("invalid phone format: contains invalid character '%c'", r)
		}
	}
	if digits == 0 {
		return fmt.Errorf("invalid phone format: no digits")
	}
	return nil
}

// ValidateSlug accepts lowercase words joined by single dashes. Empty is allowed.
func ValidateSlug(slug string) error {
	if slug == "" || slugPattern.MatchString(slug) {
		return nil
	}
	return fmt.Errorf("invalid slug %q: use lowercase letters, digits and single dashes", slug)
}

// ValidateDescription checks the byte size of long-form text.
func ValidateDescription(text string) error {
	if len(text) > MaxDescriptionLength {
		return fmt.Errorf("description exceeds maximum size of %d bytes (got %d)", MaxDescriptionLength, len(text))
	}
	return nil
}

// ValidatePrice rejects negative prices.
func ValidatePrice(price float64, field string) error {
	if price < 0 {
		return fmt.Errorf("%s must not be negative", field)
	}
	return nil
}

// ValidateQuantity requires a positive quantity.
func ValidateQuantity(qty int) error {
	if qty < 1 {
		return fmt.Errorf("quantity must be at least 1 (got %d)", qty)
	}
	return nil
}

// ValidateJSONPayload checks that a raw request body is present and not oversized.
func ValidateJSONPayload(payload string) error {
	if payload == "" {
		return fmt.Errorf("JSON payload cannot be empty")
	}
	if len(payload) > MaxJSONPayload {
		return fmt.Errorf("JSON payload exceeds maximum size of %d bytes (got %d)", MaxJSONPayload, len(payload))
	}
	return nil
}
