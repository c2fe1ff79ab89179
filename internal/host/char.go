package host

import (
	"fmt"
	"unicode/utf8"
)

// Char is a single character attribute. It is distinct from int32 so that
// numeric int32 attributes are never read as code points.
type Char rune

// UnmarshalText accepts exactly one character.
func (c *Char) UnmarshalText(text []byte) error {
	if utf8.RuneCount(text) != 1 {
		return fmt.Errorf("%q is not a single character", text)
	}
	r, _ := utf8.DecodeRune(text)
	if r == utf8.RuneError {
		return fmt.Errorf("%q is not valid UTF-8", text)
	}
	*c = Char(r)
	return nil
}

func (c Char) String() string { return string(rune(c)) }
