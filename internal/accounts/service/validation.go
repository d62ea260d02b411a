package service

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	minUsernameLen = 4
	maxUsernameLen = 24
	minPasswordLen = 8

	passwordSpecials = `!@#$%^&()_+-={}[]\|:;'<>,.?/`
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func validateUsername(v *ValidationError, field, username string) {
	n := utf8.RuneCountInString(username)
	switch {
	case n < minUsernameLen || n > maxUsernameLen:
		v.add(field, "must be between 4 and 24 characters")
	case !usernamePattern.MatchString(username):
		v.add(field, "may only contain letters, digits, hyphens and underscores")
	}
}

// validatePassword enforces length plus at least one letter, one digit and
// one special character.
func validatePassword(v *ValidationError, field, password string) {
	if utf8.RuneCountInString(password) < minPasswordLen {
		v.add(field, "password must be at least 8 characters long")
		return
	}

	var letter, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	switch {
	case !letter:
		v.add(field, "password must contain at least one letter")
	case !digit:
		v.add(field, "password must contain at least one number")
	case !special:
		v.add(field, "password must contain at least one special character")
	}
}

// validateEmail accepts a bare addr-spec whose domain has at least one dot.
func validateEmail(v *ValidationError, field, email string) {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		v.add(field, "not a valid email address")
		return
	}

	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		v.add(field, "not a valid email address")
	}
}
