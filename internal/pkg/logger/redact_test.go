package logger

import "testing"

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"joe@pizza.com", "j***@pizza.com"},
		{"a@b.co", "a***@b.co"},
		{"not-an-email", "not-an-email"},
		{"@nodomain.com", "@nodomain.com"},
	}
	for _, tt := range tests {
		if got := RedactEmail(tt.in); got != tt.want {
			t.Errorf("RedactEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedactPhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"+15125550100", "+********0100"},
		{"(512) 555-0100", "(***) ***-0100"},
		{"0100", "0100"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RedactPhone(tt.in); got != tt.want {
			t.Errorf("RedactPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
