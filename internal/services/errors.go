package services

import "errors"

// Signal service errors. They are wrapped in typed application errors so
// the HTTP layer can map them; match them with errors.Is.
var (
	// ErrNoData means no intraday file was found.
	ErrNoData = errors.New("no intraday data available")
	// ErrNoSignals means the transaction file needed for signals is missing.
	ErrNoSignals = errors.New("signals need both an intraday and a transaction file")
	// ErrSymbolNotFound means the symbol is absent from the session snapshot.
	ErrSymbolNotFound = errors.New("symbol not found")
	// ErrNoHistory means the symbol has no historical file.
	ErrNoHistory = errors.New("no historical data for symbol")
)
