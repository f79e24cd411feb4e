// Package signals derives the per-symbol session signal table and the
// analytics built on it.
//
// # Pipeline
//
//	intraday snapshot ──► AddPivotLevels ──┐
//	                                       ├─► BuildSignals ─► ApplyAIScore
//	transaction log ──► AggregateTransactions ┘
//
// The scored table feeds FindBreakouts, RankCandidates, FilterGroupPicks and
// the CorrelationEngine. ComputeTechnicals and AnalyzeStock build the single
// symbol technical view from historical bars.
//
// # Missing values
//
// Every numeric field is a domain.Num where NaN means missing. Each function
// documents how it treats missing inputs; none of them fail because of one.
//
// # AI_Prob
//
// AI_Prob is a fixed linear heuristic clamped to [0.05, 0.95], not a
// trained model and not a calibrated probability.
//
// All functions here are pure except the CorrelationEngine, which reads
// history through a HistoryLoader on every call.
package signals
