package location

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxCodeLength = 200

	// codePattern allows one to five upper-case segments after the RW prefix,
	// each made of alphanumeric runs joined by single underscores.
	codePattern = `^RW(?:-[\p{Lu}\p{Lo}\p{N}]+(?:_[\p{Lu}\p{Lo}\p{N}]+)*){1,5}$`
)

var codeRegex = regexp.MustCompile(codePattern)

// NormaliseCode trims and upper-cases a code and checks its shape.
func NormaliseCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", fmt.Errorf("%w: code cannot be empty", ErrInvalidCode)
	}
	if len(code) > maxCodeLength {
		return "", fmt.Errorf("%w: code exceeds %d characters", ErrInvalidCode, maxCodeLength)
	}
	if !codeRegex.MatchString(code) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return code, nil
}
