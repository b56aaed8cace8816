package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegister() RegisterInput {
	return RegisterInput{
		Username: "testuser123",
		Email:    "testuser123@example.com",
		Password: "TestPass123",
	}
}

func TestRegister_Valid(t *testing.T) {
	v := New()
	in := validRegister()

	errs := v.Register(&in)

	assert.False(t, errs.HasErrors(), "unexpected errors: %v", errs)
	assert.Equal(t, "testuser123@example.com", in.Email)
}

func TestRegister_FieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		want   Errors
	}{
		{
			name:   "username too short",
			mutate: func(in *RegisterInput) { in.Username = "ab" },
			want:   Errors{{Field: "username", Message: MsgUsernameLength}},
		},
		{
			name:   "username too long",
			mutate: func(in *RegisterInput) { in.Username = strings.Repeat("a", 31) },
			want:   Errors{{Field: "username", Message: MsgUsernameLength}},
		},
		{
			name:   "username with punctuation",
			mutate: func(in *RegisterInput) { in.Username = "bad-name!" },
			want:   Errors{{Field: "username", Message: MsgUsernameCharset}},
		},
		{
			name:   "invalid email",
			mutate: func(in *RegisterInput) { in.Email = "invalid-email" },
			want:   Errors{{Field: "email", Message: MsgEmailInvalid}},
		},
		{
			name:   "weak password",
			mutate: func(in *RegisterInput) { in.Password = "weak" },
			want: Errors{
				{Field: "password", Message: MsgPasswordLength},
				{Field: "password", Message: MsgPasswordComplexity},
			},
		},
		{
			name:   "password without digit",
			mutate: func(in *RegisterInput) { in.Password = "NoDigitsHere" },
			want:   Errors{{Field: "password", Message: MsgPasswordComplexity}},
		},
		{
			name:   "email longer than the column allows",
			mutate: func(in *RegisterInput) { in.Email = strings.Repeat("a", 64) + "@" + longDomain(300) },
			want:   Errors{{Field: "email", Message: MsgEmailInvalid}},
		},
		{
			name:   "password longer than 72 bytes",
			mutate: func(in *RegisterInput) { in.Password = "Aa1" + strings.Repeat("x", 70) },
			want:   nil,
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegister()
			tt.mutate(&in)

			assert.Equal(t, tt.want, v.Register(&in))
		})
	}
}

// longDomain builds a syntactically valid domain of at least n characters
// from 63-character labels.
func longDomain(n int) string {
	labels := []string{}
	for total := 0; total < n; total += 64 {
		labels = append(labels, strings.Repeat("b", 63))
	}
	return strings.Join(labels, ".") + ".com"
}

func TestEmailLengthBoundary(t *testing.T) {
	v := New()

	// 64 + 1 + 185 + 4 = 254 characters.
	domain := strings.Repeat("c", 63) + "." + strings.Repeat("c", 63) + "." + strings.Repeat("c", 57) + ".com"
	atLimit := strings.Repeat("a", 64) + "@" + domain
	require.Len(t, atLimit, MaxEmailLength)

	in := validRegister()
	in.Email = atLimit
	assert.Empty(t, v.Register(&in))

	overLimit := atLimit[:len(atLimit)-4] + "c.com"
	require.Len(t, overLimit, MaxEmailLength+1)

	in = validRegister()
	in.Email = overLimit
	assert.Equal(t, Errors{{Field: "email", Message: MsgEmailInvalid}}, v.Register(&in))

	login := LoginInput{Email: overLimit, Password: "x"}
	assert.Equal(t, Errors{{Field: "email", Message: MsgEmailInvalid}}, v.Login(&login))
}

func TestRegister_CollectsAllViolations(t *testing.T) {
	v := New()
	in := RegisterInput{Username: "testuser123"}

	errs := v.Register(&in)

	require.True(t, errs.HasErrors())
	assert.Equal(t, Errors{
		{Field: "email", Message: MsgEmailInvalid},
		{Field: "password", Message: MsgPasswordLength},
		{Field: "password", Message: MsgPasswordComplexity},
	}, errs)
}

func TestRegister_PasswordClassesAnyOrder(t *testing.T) {
	v := New()
	for _, pw := range []string{"1aB234", "ZZZzz9", "9abcdE"} {
		in := validRegister()
		in.Password = pw
		assert.Empty(t, v.Register(&in), "password %q should pass", pw)
	}
}

func TestRegister_InvalidEmailIsNotNormalized(t *testing.T) {
	v := New()
	in := validRegister()
	in.Email = "Not An Email"

	v.Register(&in)

	assert.Equal(t, "Not An Email", in.Email)
}

func TestLogin(t *testing.T) {
	v := New()

	in := LoginInput{Email: "TestUser123@Example.com", Password: "weak"}
	assert.Empty(t, v.Login(&in), "login must not apply complexity rules")
	assert.Equal(t, "testuser123@example.com", in.Email)

	empty := LoginInput{Email: "testuser123@example.com"}
	assert.Equal(t, Errors{{Field: "password", Message: MsgPasswordRequired}}, v.Login(&empty))

	bad := LoginInput{Email: "invalid-email", Password: "x"}
	assert.Equal(t, Errors{{Field: "email", Message: MsgEmailInvalid}}, v.Login(&bad))
}
