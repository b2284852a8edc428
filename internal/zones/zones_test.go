package zones

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		input    string
		expected ZoneID
	}{
		{"Northwest Mountains", Northwest},
		{"Southeast Mountains", Southeast},
		{"northwest mountains", Unknown},
		{"Elk Mountains", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Resolve(tt.input)
			if result != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		id       ZoneID
		expected bool
	}{
		{Northwest, true},
		{Southeast, true},
		{Unknown, false},
		{ZoneID("elk"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			if Valid(tt.id) != tt.expected {
				t.Errorf("Valid(%q) = %v, want %v", tt.id, Valid(tt.id), tt.expected)
			}
		})
	}
}
