package validate

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[\p{L}\p{N} _'\-.]{1,50}$`)
	reOTP   = regexp.MustCompile(`^[0-9]{6}$`)
	rePhone = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,19}$`)
)

var (
	ErrPasswordShort    = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > 50 {
		s = string(r[:50])
	}
	return s, reQ.MatchString(s)
}

func Qty(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	} // clamp to avoid abuse
	return n
}

// ID parses a positive backend id (product, variant, cart item, ...).
func ID(s string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return n, err == nil && n > 0
}

// OptionalID is ID for fields that may be left empty; empty yields 0.
func OptionalID(s string) (int64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, true
	}
	return ID(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len([]rune(s)) > 50 {
		return "", false
	}
	return s, true
}

// Password checks a new password and its confirmation.
func Password(pw, confirm string) error {
	if len(pw) < 6 {
		return ErrPasswordShort
	}
	if pw != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

// OTP accepts exactly six digits.
func OTP(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reOTP.MatchString(s)
}

// Phone accepts an optional leading + and 6 to 20 digits, spaces or dashes.
func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePhone.MatchString(s)
}

// Date accepts yyyy-mm-dd.
func Date(s string) (string, bool) {
	s = strings.TrimSpace(s)
	_, err := time.Parse("2006-01-02", s)
	return s, err == nil
}

func Price(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil && f >= 0 && f < 1e7
}

func Percent(s string) (float64, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil && f >= 0 && f <= 100
}
