// Package validation implements the declarative input rules for registration
// and login payloads.
//
// Each rule pairs a field with a validator tag and a user-facing message.
// All rules are evaluated, so a payload with several problems reports every
// one of them in rule order.
package validation

import (
	"regexp"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// User-facing messages. These are surfaced verbatim to API clients.
const (
	MsgUsernameLength     = "Username must be between 3 and 30 characters"
	MsgUsernameCharset    = "Username may only contain letters, numbers and underscores"
	MsgEmailInvalid       = "Please enter a valid email address"
	MsgPasswordLength     = "Password must be at least 6 characters"
	MsgPasswordComplexity = "Password must contain at least one lowercase letter, one uppercase letter and one number"
	MsgPasswordRequired   = "Password is required"
)

// MaxEmailLength is the longest address accepted, per RFC 5321 path limits.
// The users.email column holds 255 characters.
const MaxEmailLength = 254

// FieldError is a single rule violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is an ordered list of violations. Empty means the input is valid.
type Errors []FieldError

// HasErrors reports whether any rule failed.
func (e Errors) HasErrors() bool {
	return len(e) > 0
}

// Rule binds a validator tag to a field and the message shown when it fails.
type Rule struct {
	Field   string
	Tag     string
	Message string
}

var emailTag = "required,max=" + strconv.Itoa(MaxEmailLength) + ",email"

// RegisterRules apply to POST /api/users/register.
var RegisterRules = []Rule{
	{Field: "username", Tag: "min=3,max=30", Message: MsgUsernameLength},
	{Field: "username", Tag: "username_charset", Message: MsgUsernameCharset},
	{Field: "email", Tag: emailTag, Message: MsgEmailInvalid},
	{Field: "password", Tag: "min=6", Message: MsgPasswordLength},
	{Field: "password", Tag: "password_complexity", Message: MsgPasswordComplexity},
}

// LoginRules apply to POST /api/users/login.
// Password complexity is deliberately not checked at login.
var LoginRules = []Rule{
	{Field: "email", Tag: emailTag, Message: MsgEmailInvalid},
	{Field: "password", Tag: "required", Message: MsgPasswordRequired},
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// RegisterInput is the registration payload. Email is normalized in place
// when it passes validation.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput is the login payload. Email is normalized in place when it
// passes validation.
type LoginInput struct {
	Email    string
	Password string
}

// Validator evaluates rule sets. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator with the custom tags used by the rule sets.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration of well-formed tags on a fresh instance cannot fail.
	_ = v.RegisterValidation("username_charset", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password_complexity", func(fl validator.FieldLevel) bool {
		return hasPasswordClasses(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Check evaluates rules against the named field values.
func (v *Validator) Check(rules []Rule, fields map[string]string) Errors {
	var errs Errors
	for _, rule := range rules {
		if err := v.validate.Var(fields[rule.Field], rule.Tag); err != nil {
			errs = append(errs, FieldError{Field: rule.Field, Message: rule.Message})
		}
	}
	return errs
}

// Register validates a registration payload and normalizes its email.
func (v *Validator) Register(in *RegisterInput) Errors {
	errs := v.Check(RegisterRules, map[string]string{
		"username": in.Username,
		"email":    in.Email,
		"password": in.Password,
	})
	if !errs.has("email") {
		in.Email = NormalizeEmail(in.Email)
	}
	return errs
}

// Login validates a login payload and normalizes its email.
func (v *Validator) Login(in *LoginInput) Errors {
	errs := v.Check(LoginRules, map[string]string{
		"email":    in.Email,
		"password": in.Password,
	})
	if !errs.has("email") {
		in.Email = NormalizeEmail(in.Email)
	}
	return errs
}

func (e Errors) has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// hasPasswordClasses reports whether s contains a lowercase ASCII letter,
// an uppercase ASCII letter and an ASCII digit, in any order.
func hasPasswordClasses(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}
