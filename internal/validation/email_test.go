package validation

import "testing"

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"TestUser@Example.COM", "testuser@example.com"},
		{"  padded@example.com ", "padded@example.com"},
		{"John.Doe+arena@gmail.com", "johndoe@gmail.com"},
		{"john.doe@googlemail.com", "johndoe@gmail.com"},
		{"someone+news@outlook.com", "someone@outlook.com"},
		{"someone-news@yahoo.com", "someone@yahoo.com"},
		{"a-b-c@yahoo.com", "a-b@yahoo.com"},
		{"-tag@ymail.com", "-tag@ymail.com"},
		{"someone+tag@icloud.com", "someone@icloud.com"},
		{"first.last+tag@example.com", "first.last+tag@example.com"},
		{"+only@gmail.com", "+only@gmail.com"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeEmail(tt.in); got != tt.want {
				t.Errorf("NormalizeEmail(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
