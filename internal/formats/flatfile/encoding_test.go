package flatfile

import (
	"testing"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

func TestDetectBOM(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		enc  Encoding
		skip int
	}{
		{"utf8", []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, EncodingUTF8, 3},
		{"utf16le", []byte{0xFF, 0xFE, 'h', 0x00}, EncodingUTF16LE, 2},
		{"utf16be", []byte{0xFE, 0xFF, 0x00, 'h'}, EncodingUTF16BE, 2},
		{"utf32le", []byte{0xFF, 0xFE, 0x00, 0x00, 'h', 0, 0, 0}, EncodingUTF32LE, 4},
		{"utf32be", []byte{0x00, 0x00, 0xFE, 0xFF, 0, 0, 0, 'h'}, EncodingUTF32BE, 4},
		{"none", []byte("plain"), EncodingUnknown, 0},
		{"empty", nil, EncodingUnknown, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enc, skip := DetectBOM(tc.data)
			if enc != tc.enc || skip != tc.skip {
				t.Errorf("DetectBOM = (%v, %d), want (%v, %d)", enc, skip, tc.enc, tc.skip)
			}
		})
	}
}

// A UTF-32LE BOM starts with the UTF-16LE BOM bytes; the longer mark must
// win when both match.
func TestDetectBOMPrefersUTF32(t *testing.T) {
	data := []byte{0xFF, 0xFE, 0x00, 0x00}
	enc, _ := DetectBOM(data)
	if enc != EncodingUTF32LE {
		t.Errorf("DetectBOM = %v, want %v", enc, EncodingUTF32LE)
	}
}

func TestDecodeTextRoundTrips(t *testing.T) {
	const text = "INDEX FILE\nNAME=Prüfung\n"
	encoders := []struct {
		name string
		enc  encoding.Encoding
	}{
		{"utf16le", unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
		{"utf16be", unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
		{"utf32le", utf32.UTF32(utf32.LittleEndian, utf32.UseBOM)},
		{"utf32be", utf32.UTF32(utf32.BigEndian, utf32.UseBOM)},
	}
	for _, tc := range encoders {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := tc.enc.NewEncoder().Bytes([]byte(text))
			if err != nil {
				t.Fatal(err)
			}
			got, err := decodeText(raw, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got != text {
				t.Errorf("decodeText = %q, want %q", got, text)
			}
		})
	}
}

func TestDecodeTextUTF8BOMStripped(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...)
	got, err := decodeText(raw, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("decodeText = %q, want hello", got)
	}
}

func TestDecodeTextDefaultEncoding(t *testing.T) {
	// Latin-1 bytes with no BOM: raw without a default, decoded with one.
	raw := []byte{'P', 'r', 0xFC, 'f'} // "Prüf" in ISO 8859-1

	got, err := decodeText(raw, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != string(raw) {
		t.Errorf("nil default should pass bytes through, got %q", got)
	}

	got, err = decodeText(raw, charmap.ISO8859_1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Prüf" {
		t.Errorf("decodeText with ISO 8859-1 default = %q, want Prüf", got)
	}
}

func TestEncodingString(t *testing.T) {
	if EncodingUTF16LE.String() == "" || EncodingUnknown.String() == "" {
		t.Error("Encoding.String returned an empty name")
	}
}
