// Package charset detects and decodes the text encodings seen in
// spreadsheet exports, so the rest of the pipeline only ever handles
// UTF-8.
package charset

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding represents a text encoding
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1252 Encoding = "windows-1252"
	EncodingISO88591    Encoding = "iso-8859-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectEncoding detects the encoding of a byte buffer. Valid UTF-8 is
// always preferred; otherwise the buffer is assumed to be Windows-1252,
// which is what desktop spreadsheet tools emit when saving plain CSV.
func DetectEncoding(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) {
		return EncodingUTF8
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}
	return EncodingWindows1252
}

// Decode converts a byte buffer from the given encoding to a UTF-8
// string, stripping a leading BOM when present.
func Decode(data []byte, enc Encoding) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	switch enc {
	case EncodingWindows1252:
		if utf8.Valid(data) {
			// Mislabeled but already UTF-8, do not double-decode.
			return string(data), nil
		}
		return decodeCharmap(data, charmap.Windows1252)
	case EncodingISO88591:
		return decodeCharmap(data, charmap.ISO8859_1)
	default:
		if utf8.Valid(data) {
			return string(data), nil
		}
		return decodeCharmap(data, charmap.Windows1252)
	}
}

func decodeCharmap(data []byte, cm *charmap.Charmap) (string, error) {
	out, _, err := transform.Bytes(cm.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
