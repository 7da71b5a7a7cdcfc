package utils

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = 14

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Date layouts accepted on input: Brazilian first, then ISO.
const (
	DateLayoutBR  = "02/01/2006"
	DateLayoutISO = "2006-01-02"
)

// ParseFlexibleDate accepts DD/MM/YYYY or YYYY-MM-DD (extra time suffixes are
// cut off). Returns false when neither layout matches.
func ParseFlexibleDate(value string) (time.Time, bool) {
	s := strings.TrimSpace(value)
	if len(s) > 10 {
		s = s[:10]
	}
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayoutBR, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(DateLayoutISO, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatDateBR renders a date value as DD/MM/YYYY. Besides the two input
// layouts it also accepts dashed Brazilian dates; anything else is returned
// verbatim.
func FormatDateBR(value string) string {
	s := strings.TrimSpace(value)
	if len(s) > 10 {
		s = s[:10]
	}
	if s == "" {
		return value
	}
	for _, layout := range []string{DateLayoutISO, DateLayoutBR, "02-01-2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayoutBR)
		}
	}
	return value
}

// CivilYearAge is the competitive age: calendar year difference, ignoring
// whether the birthday has passed.
func CivilYearAge(birthDate time.Time, now time.Time) int {
	return now.Year() - birthDate.Year()
}
