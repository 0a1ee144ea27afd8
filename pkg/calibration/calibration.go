// Package calibration decodes the oscillator-calibration constant stored in
// non-volatile memory and rescales nominal tick counts with it, so that
// timing thresholds derived from the nominal 128 kHz sleep clock stay
// accurate on hardware whose real oscillator frequency deviates.
package calibration

import (
	"encoding/binary"

	pkgerrors "github.com/pkg/errors"
)

const (
	// Marker is the sentinel byte that must be present at the end of the
	// storage image for the stored constant to be applied.
	Marker byte = 0xCD

	// NominalHz is the nominal frequency of the sleep clock.
	NominalHz uint32 = 128000

	// MaxDeviationHz is the maximum accepted deviation from NominalHz.
	// Constants outside this band are discarded.
	MaxDeviationHz uint32 = 30000

	// ImageSize is the size of the storage image: a big-endian uint32
	// followed by the marker byte.
	ImageSize = 5

	// erasedField is what the 4-byte constant field reads as on erased
	// storage. Treated as absent even if the marker matches.
	erasedField = 0xFFFFFFFF
)

// Value is a measured oscillator frequency in Hz.
type Value uint32

// InBand reports whether the value is within the accepted deviation band
// around NominalHz.
func (v Value) InBand() bool {
	return uint32(v) >= NominalHz-MaxDeviationHz && uint32(v) <= NominalHz+MaxDeviationHz
}

// Decode parses a calibration storage image. It returns false when the
// image is too short, the marker byte is missing, or the constant field is
// erased (all ones).
func Decode(b []byte) (Value, bool) {
	if len(b) < ImageSize {
		return 0, false
	}
	if b[ImageSize-1] != Marker {
		return 0, false
	}
	raw := binary.BigEndian.Uint32(b[0:4])
	if raw == erasedField {
		return 0, false
	}
	return Value(raw), true
}

// Apply rescales a nominal tick count by the measured oscillator frequency:
// floor(v * nominal / NominalHz). When the value is absent or outside the
// accepted band, the nominal count is returned unchanged. The intermediate
// product can exceed 32 bits worth of headroom comfortably, so it is
// computed in 64 bits.
func Apply(v Value, ok bool, nominal uint16) uint16 {
	if !ok || !v.InBand() {
		return nominal
	}
	return uint16(uint64(v) * uint64(nominal) / uint64(NominalHz))
}

// Encode produces the storage image for a measured oscillator frequency.
// Frequencies outside the accepted band are refused, matching what the
// decoder would discard anyway.
func Encode(hz uint32) ([ImageSize]byte, error) {
	var img [ImageSize]byte
	if !Value(hz).InBand() {
		return img, pkgerrors.Errorf("frequency %d Hz outside accepted band [%d, %d]",
			hz, NominalHz-MaxDeviationHz, NominalHz+MaxDeviationHz)
	}
	binary.BigEndian.PutUint32(img[0:4], hz)
	img[ImageSize-1] = Marker
	return img, nil
}
