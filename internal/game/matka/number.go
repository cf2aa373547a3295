// Package matka implements the matka number codec, classification, rate
// lookup, result derivation and win/loss rules.
package matka

import (
	"fmt"
	"strings"
)

// Placeholder separates the open and close parts of an encoded game number.
const Placeholder = 'X'

// Side tells which declaration a number part is matched against.
type Side int

const (
	SideNone Side = iota // plain number with no placeholder
	SideOpen
	SideClose
)

func (s Side) String() string {
	switch s {
	case SideOpen:
		return "open"
	case SideClose:
		return "close"
	default:
		return "none"
	}
}

// Kind identifies the variant of a parsed Number.
type Kind int

const (
	KindSingleDigit Kind = iota + 1
	KindJodi
	KindPana
	KindHalfSangam
	KindFullSangam
)

func (k Kind) String() string {
	switch k {
	case KindSingleDigit:
		return "single_digit"
	case KindJodi:
		return "jodi"
	case KindPana:
		return "pana"
	case KindHalfSangam:
		return "half_sangam"
	case KindFullSangam:
		return "full_sangam"
	default:
		return "unknown"
	}
}

// Number is a parsed game number. It is one of SingleDigit, Jodi, Pana,
// HalfSangam or FullSangam; String returns the wire encoding.
type Number interface {
	Kind() Kind
	String() string
	isNumber()
}

// SingleDigit is a bid on one result digit: "3X" (open) or "X3" (close).
type SingleDigit struct {
	Side  Side
	Digit string
}

// Jodi is a bid on the two-digit combined result, e.g. "23".
type Jodi struct {
	Value string
}

// Pana is a bid on a 3-digit panel: "138X" (open), "X138" (close) or "138".
type Pana struct {
	Side   Side
	Digits string
}

// HalfSangam combines one side's digit with the other side's panel.
// Side is the side of the digit: "1X123" is open digit 1 with close panel 123,
// "123X1" is open panel 123 with close digit 1.
type HalfSangam struct {
	Side  Side
	Digit string
	Panel string
}

// FullSangam is an open panel with a close panel, e.g. "123X456".
type FullSangam struct {
	OpenPanel  string
	ClosePanel string
}

func (SingleDigit) Kind() Kind { return KindSingleDigit }
func (Jodi) Kind() Kind        { return KindJodi }
func (Pana) Kind() Kind        { return KindPana }
func (HalfSangam) Kind() Kind  { return KindHalfSangam }
func (FullSangam) Kind() Kind  { return KindFullSangam }

func (SingleDigit) isNumber() {}
func (Jodi) isNumber()        {}
func (Pana) isNumber()        {}
func (HalfSangam) isNumber()  {}
func (FullSangam) isNumber()  {}

func (n SingleDigit) String() string {
	if n.Side == SideClose {
		return string(Placeholder) + n.Digit
	}
	return n.Digit + string(Placeholder)
}

func (n Jodi) String() string { return n.Value }

func (n Pana) String() string {
	switch n.Side {
	case SideOpen:
		return n.Digits + string(Placeholder)
	case SideClose:
		return string(Placeholder) + n.Digits
	default:
		return n.Digits
	}
}

func (n HalfSangam) String() string {
	if n.Side == SideClose {
		return n.Panel + string(Placeholder) + n.Digit
	}
	return n.Digit + string(Placeholder) + n.Panel
}

func (n FullSangam) String() string {
	return n.OpenPanel + string(Placeholder) + n.ClosePanel
}

// Parse decodes a raw game number. The shape is decided by the length and
// the position of the placeholder; anything else is ErrMalformedNumber.
func Parse(raw string) (Number, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedNumber)
	}
	xs := strings.Count(raw, string(Placeholder))
	if xs > 1 {
		return nil, fmt.Errorf("%w: %q has more than one placeholder", ErrMalformedNumber, raw)
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] != Placeholder && !isDigit(raw[i]) {
			return nil, fmt.Errorf("%w: %q contains %q", ErrMalformedNumber, raw, raw[i])
		}
	}
	x := strings.IndexByte(raw, Placeholder)

	switch len(raw) {
	case 2:
		switch x {
		case -1:
			return Jodi{Value: raw}, nil
		case 0:
			return SingleDigit{Side: SideClose, Digit: raw[1:]}, nil
		case 1:
			return SingleDigit{Side: SideOpen, Digit: raw[:1]}, nil
		}
	case 3:
		if x == -1 {
			return Pana{Side: SideNone, Digits: raw}, nil
		}
	case 4:
		switch x {
		case 0:
			return Pana{Side: SideClose, Digits: raw[1:]}, nil
		case 3:
			return Pana{Side: SideOpen, Digits: raw[:3]}, nil
		}
	case 5:
		switch x {
		case 1:
			return HalfSangam{Side: SideOpen, Digit: raw[:1], Panel: raw[2:]}, nil
		case 3:
			return HalfSangam{Side: SideClose, Digit: raw[4:], Panel: raw[:3]}, nil
		}
	case 7:
		if x == 3 {
			return FullSangam{OpenPanel: raw[:3], ClosePanel: raw[4:]}, nil
		}
	}
	return nil, fmt.Errorf("%w: unsupported shape %q", ErrMalformedNumber, raw)
}

// StripPlaceholder removes the placeholder from a raw game number.
func StripPlaceholder(raw string) string {
	return strings.ReplaceAll(raw, string(Placeholder), "")
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
