package main

import (
	"fmt"
	"strconv"
	"strings"
)

// LineCount is the value of the lines argument: a plain count tails the
// last NUM lines, while "+NUM" skips the first NUM lines instead of
// counting from the end.
type LineCount struct {
	Count     int
	FromStart bool
}

func (lc *LineCount) UnmarshalText(text []byte) error {
	s := string(text)
	if strings.HasPrefix(s, "+") {
		lc.FromStart = true
		s = strings.TrimPrefix(s, "+")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid number of lines %q: %w", string(text), err)
	}
	if n < 0 {
		return fmt.Errorf("invalid number of lines %q: must not be negative", string(text))
	}
	lc.Count = n
	return nil
}

func (lc LineCount) String() string {
	if lc.FromStart {
		return "+" + strconv.Itoa(lc.Count)
	}
	return strconv.Itoa(lc.Count)
}
