// Package files locates the session exports on disk and writes report files.
//
// Discovery finds the newest file matching a glob pattern, skipping the lock
// files spreadsheet editors create next to open workbooks:
//
//	d := files.NewDiscovery("/srv/egx")
//	latest, ok, err := d.LatestFile("intraday", "*.xlsx")
//
// Manager writes reports atomically under a base directory.
package files
