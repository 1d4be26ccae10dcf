package subtitle

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var rgbaRegex = regexp.MustCompile(
	`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*([0-9]*\.?[0-9]+)\s*)?\)$`,
)

// RGBA color with alpha in [0,1]
type RGBA struct {
	R, G, B uint8
	A       float64
}

// parses #RGB, #RRGGBB, rgb() and rgba() color strings
func ParseColor(s string) (RGBA, error) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return RGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, nil
	}

	m := rgbaRegex.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return RGBA{}, fmt.Errorf("invalid color %q", s)
	}

	var channels [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(m[i+1])
		if err != nil || v > 255 {
			return RGBA{}, fmt.Errorf("invalid color channel in %q", s)
		}
		channels[i] = uint8(v)
	}

	alpha := 1.0
	if m[4] != "" {
		a, err := strconv.ParseFloat(m[4], 64)
		if err != nil || a > 1 {
			return RGBA{}, fmt.Errorf("invalid alpha in %q", s)
		}
		alpha = a
	}

	return RGBA{R: channels[0], G: channels[1], B: channels[2], A: alpha}, nil
}

// ASS colors are &HBBGGRR&
func (c RGBA) ASSColor() string {
	return fmt.Sprintf("&H%02X%02X%02X&", c.B, c.G, c.R)
}

// ASS alpha is inverted: 00 is opaque, FF transparent
func (c RGBA) ASSAlpha() string {
	return fmt.Sprintf("&H%02X&", uint8(math.Round((1-c.A)*255)))
}

// #RRGGBB form, the editor's color notation
func (c RGBA) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// rgba() form with alpha rounded to two decimals
func (c RGBA) CSS() string {
	a := strconv.FormatFloat(math.Round(c.A*100)/100, 'f', -1, 64)
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, a)
}

// parses &HBBGGRR& (or &HAABBGGRR&, alpha ignored) into an opaque color
func parseASSColor(s string) (RGBA, bool) {
	hex := strings.TrimSuffix(strings.TrimPrefix(strings.ToUpper(s), "&H"), "&")
	if len(hex) < 6 || len(hex) > 8 {
		return RGBA{}, false
	}
	hex = hex[len(hex)-6:]
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGBA{}, false
	}
	return RGBA{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: 1}, true
}

// parses an &HAA& alpha tag into opacity in [0,1]
func parseASSAlpha(s string) (float64, bool) {
	hex := strings.TrimSuffix(strings.TrimPrefix(strings.ToUpper(s), "&H"), "&")
	v, err := strconv.ParseUint(hex, 16, 8)
	if err != nil {
		return 0, false
	}
	return 1 - float64(v)/255, true
}
