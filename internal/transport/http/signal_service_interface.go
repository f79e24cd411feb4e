package http

import (
	"context"

	"egxcli/internal/services"
	"egxcli/internal/signals"
	"egxcli/pkg/contracts/domain"
)

// SignalServiceInterface defines the analytics the signal routes serve
type SignalServiceInterface interface {
	Snapshot(ctx context.Context) (*services.Snapshot, error)
	Overview(ctx context.Context, n int) (signals.Overview, error)
	Signals(ctx context.Context) ([]domain.SignalRow, error)
	Breakouts(ctx context.Context) (signals.Breakouts, error)
	Candidates(ctx context.Context, n int) ([]signals.Candidate, error)
	CorrelationParams() signals.CorrelationParams
	Relationships(ctx context.Context, params signals.CorrelationParams) ([]domain.CorrelationPair, error)
	GroupPicks(ctx context.Context, text string) ([]signals.GroupPick, error)
	Search(ctx context.Context, query string) ([]string, error)
	Technicals(ctx context.Context, symbol string) (signals.Technicals, error)
	StockAnalysis(ctx context.Context, symbol string) (signals.StockAnalysis, error)
}

var _ SignalServiceInterface = (*services.SignalService)(nil)
