package poolstore

import "testing"

func TestValidateHashFormatRejectsMixedCase(t *testing.T) {
	if err := ValidateHashFormat("deadBEEF"); err == nil {
		t.Fatal("expected mixed-case hash to be rejected")
	} else if _, ok := err.(*InvalidHashFormatError); !ok {
		t.Errorf("expected *InvalidHashFormatError, got %T: %v", err, err)
	}
}

func TestValidateHashFormatRejectsNonHex(t *testing.T) {
	if err := ValidateHashFormat("deadg00d"); err == nil {
		t.Fatal("expected non-hex hash to be rejected")
	}
}

func TestValidateHashFormatAcceptsLowercaseHex(t *testing.T) {
	if err := ValidateHashFormat("deadbeefcafe"); err != nil {
		t.Errorf("expected lowercase hex hash to be accepted, got %v", err)
	}
}

func TestValidateHashFormatRejectsTooShort(t *testing.T) {
	if err := ValidateHashFormat("ab"); err == nil {
		t.Fatal("expected a hash shorter than one shard prefix plus a byte to be rejected")
	}
}

func TestValidateLanguageCodeAcceptsFreeForm(t *testing.T) {
	for _, lang := range []string{"en", "eng", "pt-br", "zh_Hans", "a"} {
		if err := ValidateLanguageCode(lang); err != nil {
			t.Errorf("ValidateLanguageCode(%q) = %v, want nil", lang, err)
		}
	}
}

func TestValidateLanguageCodeRejectsEmpty(t *testing.T) {
	if err := ValidateLanguageCode(""); err == nil {
		t.Fatal("expected empty language code to be rejected")
	} else if _, ok := err.(*InvalidLanguageCodeError); !ok {
		t.Errorf("expected *InvalidLanguageCodeError, got %T: %v", err, err)
	}
}

func TestValidateLanguageCodeRejectsDisallowedCharacters(t *testing.T) {
	if err := ValidateLanguageCode("en/us"); err == nil {
		t.Fatal("expected a language code containing '/' to be rejected")
	}
}
