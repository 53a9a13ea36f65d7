// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/olegiv/blogicum/internal/model"
)

// Password rule violations returned by ValidatePassword.
var (
	ErrPasswordTooShort     = fmt.Errorf("password must contain at least %d characters", model.MinPasswordLength)
	ErrPasswordNumeric      = errors.New("password cannot be entirely numeric")
	ErrPasswordCommon       = errors.New("password is too common")
	ErrPasswordLikeUsername = errors.New("password is too similar to the username")
)

// usernamePattern allows letters and digits of any script plus _.@+-.
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// commonPasswords is a short list of passwords that are always rejected.
var commonPasswords = map[string]struct{}{
	"password":  {},
	"password1": {},
	"12345678":  {},
	"123456789": {},
	"qwertyui":  {},
	"qwerty123": {},
	"iloveyou":  {},
	"11111111":  {},
	"changeme":  {},
	"letmein1":  {},
	"sunshine":  {},
	"football":  {},
	"baseball":  {},
	"welcome1":  {},
	"abcdefgh":  {},
	"00000000":  {},
	"1q2w3e4r":  {},
	"superman":  {},
	"starwars":  {},
	"princess":  {},
}

// ValidateUsername checks an account name for length and allowed characters.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}
	if len([]rune(username)) > model.MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", model.MaxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return errors.New("username may contain only letters, digits and @/./+/-/_")
	}
	return nil
}

// ValidatePassword applies the registration password rules.
// Returns every violated rule.
func ValidatePassword(password, username string) []error {
	var errs []error

	if len([]rune(password)) < model.MinPasswordLength {
		errs = append(errs, ErrPasswordTooShort)
	}
	if password != "" && isNumeric(password) {
		errs = append(errs, ErrPasswordNumeric)
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		errs = append(errs, ErrPasswordCommon)
	}
	if username != "" && similar(strings.ToLower(password), strings.ToLower(username)) {
		errs = append(errs, ErrPasswordLikeUsername)
	}

	return errs
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// similar reports whether one string contains the other once both have
// at least three characters.
func similar(password, username string) bool {
	if len(username) < 3 || len(password) < 3 {
		return false
	}
	return strings.Contains(password, username) || strings.Contains(username, password)
}
