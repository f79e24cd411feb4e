package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrTooManyFields is returned when a record is wider than the header.
var ErrTooManyFields = errors.New("record has more fields than header")

// FallbackEncoding is used when every candidate encoding fails.
const FallbackEncoding = "latin1"

// textEncoding is one candidate in the fallback chain.
type textEncoding struct {
	name   string
	decode func([]byte) ([]byte, error)
}

// csvEncodings is the ordered fallback chain for delimited exports.
var csvEncodings = []textEncoding{
	{name: "utf-8-sig", decode: decodeUTF8},
	{name: "utf-16", decode: decodeWith(unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM))},
	{name: "utf-16le", decode: decodeUTF16LE},
	{name: "cp1256", decode: decodeStrict(charmap.Windows1256)},
	{name: "cp1252", decode: decodeStrict(charmap.Windows1252)},
}

func decodeUTF8(data []byte) ([]byte, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("invalid utf-8")
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, errors.New("NUL byte in utf-8 text")
	}
	return unicode.UTF8BOM.NewDecoder().Bytes(data)
}

func decodeWith(enc encoding.Encoding) func([]byte) ([]byte, error) {
	return func(data []byte) ([]byte, error) {
		return enc.NewDecoder().Bytes(data)
	}
}

// decodeUTF16LE reads BOM-less little-endian UTF-16. It only accepts data
// that looks like it: even length, NUL high bytes on at least a quarter of
// the code units and never a NUL low byte.
func decodeUTF16LE(data []byte) ([]byte, error) {
	if !looksUTF16LE(data) {
		return nil, errors.New("not utf-16le")
	}
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
}

func looksUTF16LE(data []byte) bool {
	if len(data) < 2 || len(data)%2 != 0 {
		return false
	}
	highNULs := 0
	for i := 0; i < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return false
		}
		if data[i+1] == 0 {
			highNULs++
		}
	}
	return highNULs*4 >= len(data)/2
}

// decodeStrict rejects byte sequences the code page leaves undefined.
func decodeStrict(cm *charmap.Charmap) func([]byte) ([]byte, error) {
	return func(data []byte) ([]byte, error) {
		for _, b := range data {
			if r := cm.DecodeByte(b); r == utf8.RuneError {
				return nil, fmt.Errorf("byte 0x%02x undefined in %s", b, cm)
			}
		}
		return cm.NewDecoder().Bytes(data)
	}
}

// DecodeCSV parses a delimited export, trying each candidate encoding in
// order and returning the first that both decodes and parses. When all
// candidates fail the data is read as latin1 with lenient parsing, which
// does not fail on malformed bytes. The name of the encoding used is returned.
func DecodeCSV(data []byte) (Table, string, error) {
	for _, enc := range csvEncodings {
		text, err := enc.decode(data)
		if err != nil {
			continue
		}
		table, err := parseCSV(text, true)
		if err != nil {
			continue
		}
		return table, enc.name, nil
	}

	text, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return Table{}, FallbackEncoding, fmt.Errorf("decode %s: %w", FallbackEncoding, err)
	}
	table, err := parseCSV(text, false)
	if err != nil {
		return Table{}, FallbackEncoding, fmt.Errorf("parse csv: %w", err)
	}
	return table, FallbackEncoding, nil
}

// parseCSV reads text as comma separated records. In strict mode quoting
// errors and records wider than the header fail the parse; otherwise quotes
// are relaxed and extra fields are dropped. Short records are allowed.
func parseCSV(text []byte, strict bool) (Table, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = !strict

	var records [][]string
	width := -1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, err
		}
		if width < 0 {
			width = len(rec)
		} else if len(rec) > width {
			if strict {
				return Table{}, fmt.Errorf("line %d: %w", len(records)+1, ErrTooManyFields)
			}
			rec = rec[:width]
		}
		records = append(records, rec)
	}
	return newTable(records), nil
}
