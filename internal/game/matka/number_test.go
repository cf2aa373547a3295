package matka

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Number
	}{
		{"X3", SingleDigit{Side: SideClose, Digit: "3"}},
		{"3X", SingleDigit{Side: SideOpen, Digit: "3"}},
		{"23", Jodi{Value: "23"}},
		{"05", Jodi{Value: "05"}},
		{"138", Pana{Side: SideNone, Digits: "138"}},
		{"138X", Pana{Side: SideOpen, Digits: "138"}},
		{"X138", Pana{Side: SideClose, Digits: "138"}},
		{"1X123", HalfSangam{Side: SideOpen, Digit: "1", Panel: "123"}},
		{"123X1", HalfSangam{Side: SideClose, Digit: "1", Panel: "123"}},
		{"123X456", FullSangam{OpenPanel: "123", ClosePanel: "456"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.raw, got.String())
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, raw := range []string{
		"", "1", "X", "XX", "1X3", "12X4", "X1X3", "12345", "1234X", "12X45",
		"123456", "12X3456", "1234X56", "ab", "1a3", "13 ", "123x456",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedNumber), "unexpected error: %v", err)
		})
	}
}

func TestStripPlaceholder(t *testing.T) {
	assert.Equal(t, "138", StripPlaceholder("138X"))
	assert.Equal(t, "138", StripPlaceholder("X138"))
	assert.Equal(t, "1123", StripPlaceholder("1X123"))
	assert.Equal(t, "23", StripPlaceholder("23"))
}

func digitString(t *rapid.T, n int, label string) string {
	return rapid.StringOfN(rapid.RuneFrom([]rune("0123456789")), n, n, -1).Draw(t, label)
}

// TestNumberRoundTripProperty: for any well-formed number of any shape,
// parsing its encoding yields a value that encodes back to the same string.
func TestNumberRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var n Number
		switch rapid.IntRange(0, 7).Draw(t, "shape") {
		case 0:
			n = SingleDigit{Side: SideOpen, Digit: digitString(t, 1, "digit")}
		case 1:
			n = SingleDigit{Side: SideClose, Digit: digitString(t, 1, "digit")}
		case 2:
			n = Jodi{Value: digitString(t, 2, "jodi")}
		case 3:
			side := rapid.SampledFrom([]Side{SideNone, SideOpen, SideClose}).Draw(t, "side")
			n = Pana{Side: side, Digits: digitString(t, 3, "panel")}
		case 4:
			n = HalfSangam{Side: SideOpen, Digit: digitString(t, 1, "digit"), Panel: digitString(t, 3, "panel")}
		case 5:
			n = HalfSangam{Side: SideClose, Digit: digitString(t, 1, "digit"), Panel: digitString(t, 3, "panel")}
		default:
			n = FullSangam{OpenPanel: digitString(t, 3, "open"), ClosePanel: digitString(t, 3, "close")}
		}

		got, err := Parse(n.String())
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", n.String(), err)
		}
		if got != n {
			t.Fatalf("Parse(%q) = %#v, want %#v", n.String(), got, n)
		}
	})
}
