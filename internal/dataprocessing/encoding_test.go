package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const arabicTransactions = "الرمز,النوع,حجم التداول,قيمة التداول\nCOMI,B,100,8150\nHRHO,S,50,1000\n"

func TestDecodeCSV_Encodings(t *testing.T) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(arabicTransactions))
	require.NoError(t, err)
	utf16NoBOM, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(arabicTransactions))
	require.NoError(t, err)
	cp1256, err := charmap.Windows1256.NewEncoder().Bytes([]byte(arabicTransactions))
	require.NoError(t, err)

	tests := []struct {
		name    string
		data    []byte
		wantEnc string
	}{
		{name: "plain utf-8", data: []byte(arabicTransactions), wantEnc: "utf-8-sig"},
		{name: "utf-8 with bom", data: append([]byte{0xEF, 0xBB, 0xBF}, arabicTransactions...), wantEnc: "utf-8-sig"},
		{name: "utf-16 with bom", data: utf16, wantEnc: "utf-16"},
		{name: "utf-16le without bom", data: utf16NoBOM, wantEnc: "utf-16le"},
		{name: "windows-1256", data: cp1256, wantEnc: "cp1256"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, enc, err := DecodeCSV(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantEnc, enc)
			assert.Equal(t, []string{"الرمز", "النوع", "حجم التداول", "قيمة التداول"}, table.Columns)
			require.Len(t, table.Rows, 2)
			assert.Equal(t, "COMI", table.Rows[0][0])
		})
	}
}

func TestLooksUTF16LE(t *testing.T) {
	assert.True(t, looksUTF16LE([]byte{'A', 0, ',', 0, 'B', 0}))
	assert.False(t, looksUTF16LE([]byte{'A', 0, ','}), "odd length")
	assert.False(t, looksUTF16LE([]byte("Symbol,Side,")), "no NUL bytes")
	assert.False(t, looksUTF16LE([]byte{'A', 0, 0, 0}), "NUL code unit")
}

func TestDecodeCSV_LenientFallback(t *testing.T) {
	// Every strict candidate rejects the bare quote and the wide record.
	data := []byte("Symbol,Volume\nCO\"MI,10,extra\nHRHO,5\n")

	table, enc, err := DecodeCSV(data)
	require.NoError(t, err)
	assert.Equal(t, FallbackEncoding, enc)
	assert.Equal(t, []string{"Symbol", "Volume"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"CO\"MI", "10"}, table.Rows[0])
}

func TestDecodeCSV_ShortRecordsAllowed(t *testing.T) {
	table, enc, err := DecodeCSV([]byte("a,b,c\n1,2\n\n3,4,5\n"))
	require.NoError(t, err)
	assert.Equal(t, "utf-8-sig", enc)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "", Cell(table.Rows[0], 2))
}

func TestDecodeCSV_Empty(t *testing.T) {
	table, _, err := DecodeCSV(nil)
	require.NoError(t, err)
	assert.Empty(t, table.Columns)
	assert.Empty(t, table.Rows)
}
