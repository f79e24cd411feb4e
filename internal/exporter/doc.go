// Package exporter renders signal analytics as CSV.
//
// Each analytic has a Table function producing headers and records.
// WriteTable streams a table to any io.Writer, which the HTTP layer uses
// for ?format=csv downloads, and CSVWriter writes tables as report files
// that replace any previous version atomically:
//
//	w := exporter.NewCSVWriter(paths.ReportsDir)
//	path, err := w.WriteCSV(exporter.SignalsFile, exporter.WriteOptions{
//		Table:     exporter.SignalsTable(rows),
//		BOMPrefix: true,
//	})
//
// Missing numbers are written as empty cells.
package exporter
