package geo

import (
	"fmt"
	"math"
	"strings"
)

// LatLng is a geographic point used by the polyline codec.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EncodePolyline encodes a path using the Google polyline algorithm:
// 1e-5 fixed-point deltas, zig-zag sign encoding, 5-bit chunks offset by 63.
// Precision loss is bounded by 1e-5 per coordinate.
func EncodePolyline(path []LatLng) string {
	var sb strings.Builder
	prevLat, prevLng := 0, 0

	for _, p := range path {
		lat := int(math.Round(p.Lat * 1e5))
		lng := int(math.Round(p.Lng * 1e5))

		encodeSigned(lat-prevLat, &sb)
		encodeSigned(lng-prevLng, &sb)

		prevLat, prevLng = lat, lng
	}

	return sb.String()
}

// DecodePolyline decodes a Google-format polyline string back into a path.
func DecodePolyline(encoded string) ([]LatLng, error) {
	var path []LatLng
	lat, lng := 0, 0
	i := 0

	for i < len(encoded) {
		dLat, n, err := decodeSigned(encoded[i:])
		if err != nil {
			return nil, err
		}
		i += n

		if i >= len(encoded) {
			return nil, fmt.Errorf("polyline truncated at byte %d", i)
		}

		dLng, n, err := decodeSigned(encoded[i:])
		if err != nil {
			return nil, err
		}
		i += n

		lat += dLat
		lng += dLng
		path = append(path, LatLng{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}

	return path, nil
}

func encodeSigned(value int, sb *strings.Builder) {
	v := value << 1
	if value < 0 {
		v = ^v
	}
	for v >= 0x20 {
		sb.WriteByte(byte(0x20|(v&0x1f)) + 63)
		v >>= 5
	}
	sb.WriteByte(byte(v) + 63)
}

func decodeSigned(s string) (value, read int, err error) {
	result, shift := 0, 0
	for i := 0; i < len(s); i++ {
		b := int(s[i]) - 63
		if b < 0 {
			return 0, 0, fmt.Errorf("invalid polyline byte %q", s[i])
		}
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			if result&1 != 0 {
				return ^(result >> 1), i + 1, nil
			}
			return result >> 1, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("unterminated polyline chunk")
}
