package validation

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	if err := ValidateName(""); err != nil {
		t.Errorf("empty name: %v", err)
	}
	if err := ValidateName(strings.Repeat("é", MaxNameLength)); err != nil {
		t.Errorf("name at limit should count runes, got %v", err)
	}
	if err := ValidateName(strings.Repeat("a", MaxNameLength+1)); err == nil {
		t.Error("expected error for long name")
	}
}

func TestValidateRequired(t *testing.T) {
	if err := ValidateRequired("  ", "fullName"); err == nil || !strings.Contains(err.Error(), "fullName is required") {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateRequired("Ann", "fullName"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateEmail(t *testing.T) {
	valid := []string{"", "ann@example.com", "Ann <ann@example.com>"}
	for _, e := range valid {
		if err := ValidateEmail(e); err != nil {
			t.Errorf("ValidateEmail(%q): %v", e, err)
		}
	}
	invalid := []string{"ann", "ann@", strings.Repeat("a", MaxEmailLength) + "@example.com"}
	for _, e := range invalid {
		if err := ValidateEmail(e); err == nil {
			t.Errorf("ValidateEmail(%q) expected error", e)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	valid := []string{"", "+84 912 345 678", "(028) 3822-1234"}
	for _, p := range valid {
		if err := ValidatePhone(p); err != nil {
			t.Errorf("ValidatePhone(%q): %v", p, err)
		}
	}
	invalid := []string{"12a45", "1+2", "---", strings.Repeat("1", MaxPhoneLength+1)}
	for _, p := range invalid {
		if err := ValidatePhone(p); err == nil {
			t.Errorf("ValidatePhone(%q) expected error", p)
		}
	}
}

func TestValidateSlug(t *testing.T) {
	for _, s := range []string{"", "about", "summer-sale-2026"} {
		if err := ValidateSlug(s); err != nil {
			t.Errorf("ValidateSlug(%q): %v", s, err)
		}
	}
	for _, s := range []string{"About", "a--b", "-a", "a b", "a_b"} {
		if err := ValidateSlug(s); err == nil {
			t.Errorf("ValidateSlug(%q) expected error", s)
		}
	}
}

func TestValidateNumbers(t *testing.T) {
	if err := ValidatePrice(-1, "price"); err == nil {
		t.Error("expected error for negative price")
	}
	if err := ValidatePrice(0, "price"); err != nil {
		t.Errorf("zero price: %v", err)
	}
	if err := ValidateQuantity(0); err == nil {
		t.Error("expected error for zero quantity")
	}
	if err := ValidateQuantity(3); err != nil {
		t.Errorf("quantity 3: %v", err)
	}
}

func TestValidateSizes(t *testing.T) {
	if err := ValidateDescription(strings.Repeat("x", MaxDescriptionLength+1)); err == nil {
		t.Error("expected error for oversized description")
	}
	if err := ValidateJSONPayload(""); err == nil {
		t.Error("expected error for empty payload")
	}
	if err := ValidateJSONPayload(`{"a":1}`); err != nil {
		t.Errorf("small payload: %v", err)
	}
	if err := ValidateJSONPayload(strings.Repeat("x", MaxJSONPayload+1)); err == nil {
		t.Error("expected error for oversized payload")
	}
}
