package mapdata

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit colour. Province colours are unique keys into the province table.
type RGB struct {
	R uint8 `json:"r" msgpack:"r"`
	G uint8 `json:"g" msgpack:"g"`
	B uint8 `json:"b" msgpack:"b"`
}

var (
	// Black marks pixels with no entity.
	Black = RGB{}
	// Gray marks owner-view pixels whose state has no resolvable owner colour.
	Gray = RGB{25, 25, 25}
)

func (c RGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// ParseRGB reads "r,g,b" (spaces allowed) or a "#rrggbb" hex colour.
func ParseRGB(s string) (RGB, error) {
	if strings.HasPrefix(strings.TrimSpace(s), "#") {
		c, err := colorful.Hex(strings.TrimSpace(s))
		if err != nil {
			return RGB{}, fmt.Errorf("color %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return RGB{r, g, b}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, fmt.Errorf("color %q: want r,g,b or #rrggbb", s)
	}
	var ch [3]uint8
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || v < 0 || v > 255 {
			return RGB{}, fmt.Errorf("color %q: channel %d out of range", s, i)
		}
		ch[i] = uint8(v)
	}
	return RGB{ch[0], ch[1], ch[2]}, nil
}

// Hex formats c as "#rrggbb".
func (c RGB) Hex() string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// FromInts clamps three integers into an RGB.
func FromInts(r, g, b int) RGB {
	return RGB{clampByte(r), clampByte(g), clampByte(b)}
}

// FromHSV converts hue, saturation and value in [0,1] to RGB with the
// classic six-sector formula. Each channel is scaled by 255 and truncated
// toward zero, not rounded. Hue wraps, so 1.0 is the same as 0.0.
func FromHSV(h, s, v float64) RGB {
	if s == 0 {
		return RGB{truncByte(v), truncByte(v), truncByte(v)}
	}
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return RGB{truncByte(r), truncByte(g), truncByte(b)}
}

// FromHSV360 converts the hsv360 notation: hue in degrees, saturation and
// value in percent.
func FromHSV360(h, s, v float64) RGB {
	return FromHSV(h/360, s/100, v/100)
}

func truncByte(f float64) uint8 {
	return clampByte(int(f * 255))
}

func clampByte(v int) uint8 {
	return uint8(min(max(v, 0), 255))
}
