package flatfile

import (
	"bytes"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Encoding identifies a byte-order-mark signature.
type Encoding int

// Encoding constants.
const (
	EncodingUnknown Encoding = iota
	EncodingUTF8
	EncodingUTF16LE
	EncodingUTF16BE
	EncodingUTF32LE
	EncodingUTF32BE
)

// String returns the encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingUTF8:
		return "UTF-8"
	case EncodingUTF16LE:
		return "UTF-16LE"
	case EncodingUTF16BE:
		return "UTF-16BE"
	case EncodingUTF32LE:
		return "UTF-32LE"
	case EncodingUTF32BE:
		return "UTF-32BE"
	}
	return "unknown"
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
)

// DetectBOM inspects the first bytes of data for a byte-order-mark
// signature and returns the detected encoding plus the signature length.
// No signature yields EncodingUnknown; the caller supplies a default.
//
// UTF-32LE must be tested before UTF-16LE: its signature starts with the
// UTF-16LE one.
func DetectBOM(data []byte) (Encoding, int) {
	switch {
	case bytes.HasPrefix(data, bomUTF32LE):
		return EncodingUTF32LE, len(bomUTF32LE)
	case bytes.HasPrefix(data, bomUTF32BE):
		return EncodingUTF32BE, len(bomUTF32BE)
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingUTF8, len(bomUTF8)
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingUTF16LE, len(bomUTF16LE)
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingUTF16BE, len(bomUTF16BE)
	}
	return EncodingUnknown, 0
}

// decoderFor returns the x/text decoder for a detected signature.
func decoderFor(enc Encoding) encoding.Encoding {
	switch enc {
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case EncodingUTF32LE:
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM)
	case EncodingUTF32BE:
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM)
	}
	return nil
}

// decodeText converts raw file bytes to a string, honoring a BOM when one
// is present and falling back to def (or UTF-8 when def is nil) otherwise.
func decodeText(data []byte, def encoding.Encoding) (string, error) {
	enc, bomLen := DetectBOM(data)
	switch enc {
	case EncodingUTF8:
		return string(data[bomLen:]), nil
	case EncodingUnknown:
		if def == nil {
			return string(data), nil
		}
		out, err := def.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}

	out, err := decoderFor(enc).NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
