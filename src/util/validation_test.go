package util

import "testing"

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"alice@example.com",
		"bob.smith+tag@sub.example.co.uk",
		"x_y%z@domain.io",
	}
	invalid := []string{
		"",
		"not-an-email",
		"@example.com",
		"alice@",
		"alice@example",
	}

	for _, email := range valid {
		if !ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if ValidateEmail(email) {
			t.Errorf("ValidateEmail(%q) = true, want false", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Abcdef1!", true},
		{"longEnough9$", true},
		{"short1!", false},       // too short
		{"alllowercase1!", false}, // no uppercase
		{"ALLUPPERCASE1!", false}, // no lowercase
		{"NoDigits!!", false},
		{"NoSpecial11", false},
	}

	for _, tt := range tests {
		if got := ValidatePassword(tt.password); got != tt.want {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}
