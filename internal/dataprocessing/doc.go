// Package dataprocessing reads EGX exports into typed domain values.
// It handles the three source kinds produced by the market data terminal:
// the intraday snapshot workbook, the session transaction log and the
// per-symbol historical bar ("CASE") files.
//
// # Architecture
//
//  1. Reader: loads raw cells (excelize for .xlsx, encoding fallback for .csv)
//  2. Normalizer: renames exporter columns to the canonical schema
//  3. Coercion: converts cells to domain.Num and day-first dates
//
// # Data Flow
//
//	file → Table → Normalize → Table (canonical) → domain types
//
// # Column names
//
// Rename tables are static. When two source columns map to the same
// canonical name, the first one wins and the others are dropped.
// Unknown columns pass through unchanged.
//
// # Encodings
//
// Delimited exports are tried as utf-8-sig, utf-16 (with BOM), cp1256 and
// cp1252, in that order. If none both decodes and parses, the data is read
// as latin1 with lenient parsing so a load never fails on bad bytes.
//
// # Missing values
//
// Unparsable numbers become missing (NaN) and unparsable dates become the
// zero time. Neither aborts the row or the table.
package dataprocessing
