// Package names interns object names once per process and maps them to the
// per-package name lists stored in package files.
package names

import (
	"strconv"
	"strings"
)

// Name is an interned identifier. Number holds the numeric suffix plus one,
// so zero means "no suffix".
type Name struct {
	Index  uint32
	Number int32
}

const (
	NAME_NONE      = "None"
	NAME_NO_NUMBER = 0
)

var None = Name{}

func (n Name) IsNone() bool {
	return n.Index == 0 && n.Number == NAME_NO_NUMBER
}

// Default registry based
func (n Name) String() string {
	return Default.String(n)
}

// New interns s into the process-wide table
func New(s string) Name {
	return Default.Intern(s)
}

// Splits "Base_12" into ("Base", 13). Leading zeros and bare "_" keep the
// whole string as base.
func splitNumber(s string) (string, int32) {
	i := strings.LastIndexByte(s, '_')
	if i <= 0 || i == len(s)-1 {
		return s, NAME_NO_NUMBER
	}
	digits := s[i+1:]
	if len(digits) > 1 && digits[0] == '0' {
		return s, NAME_NO_NUMBER
	}
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return s, NAME_NO_NUMBER
		}
	}
	v, err := strconv.ParseInt(digits, 10, 32)
	if err != nil || v >= 1<<31-1 {
		return s, NAME_NO_NUMBER
	}
	return s[:i], int32(v) + 1
}

func joinNumber(base string, number int32) string {
	if number == NAME_NO_NUMBER {
		return base
	}
	return base + "_" + strconv.FormatInt(int64(number-1), 10)
}
