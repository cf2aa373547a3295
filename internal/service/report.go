package service

import (
	"context"
	"fmt"

	"matka-bot/internal/game/matka"
	"matka-bot/internal/model"
	"matka-bot/internal/report"
)

// ReportService loads bids and rate tables and hands them to the report package.
type ReportService struct {
	store Store
}

// NewReportService creates a new ReportService instance.
func NewReportService(store Store) *ReportService {
	return &ReportService{store: store}
}

// Cutting builds the cutting-group report over the bids matching filter.
func (s *ReportService) Cutting(ctx context.Context, session matka.ReportSession, filter model.BidFilter) (report.CuttingReport, error) {
	bids, err := s.bids(ctx, filter)
	if err != nil {
		return report.CuttingReport{}, err
	}
	rates, err := s.rates(ctx, bids)
	if err != nil {
		return report.CuttingReport{}, err
	}
	return report.Cutting(session, bids, rates), nil
}

// Sales builds the per-game-type sales report.
func (s *ReportService) Sales(ctx context.Context, filter model.BidFilter) (report.SalesReport, error) {
	bids, err := s.bids(ctx, filter)
	if err != nil {
		return report.SalesReport{}, err
	}
	return report.Sales(bids), nil
}

// ProfitLoss builds the per-game profit/loss report.
func (s *ReportService) ProfitLoss(ctx context.Context, filter model.BidFilter) (report.ProfitLossReport, error) {
	bids, err := s.bids(ctx, filter)
	if err != nil {
		return report.ProfitLossReport{}, err
	}
	games, err := s.store.Games().List(ctx)
	if err != nil {
		return report.ProfitLossReport{}, fmt.Errorf("failed to list games: %w", err)
	}
	names := make(map[int64]string, len(games))
	for _, g := range games {
		names[g.ID] = g.Name
	}
	return report.ProfitLoss(bids, names), nil
}

func (s *ReportService) bids(ctx context.Context, filter model.BidFilter) ([]model.Bid, error) {
	filter.Limit = 0
	bids, err := s.store.Bids().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	return bids, nil
}

func (s *ReportService) rates(ctx context.Context, bids []model.Bid) (report.Rates, error) {
	rates := make(report.Rates)
	for _, b := range bids {
		if _, ok := rates[b.GameID]; ok {
			continue
		}
		rows, err := s.store.Rates().ListByGame(ctx, b.GameID)
		if err != nil {
			return nil, fmt.Errorf("failed to load rates of game %d: %w", b.GameID, err)
		}
		rates[b.GameID] = matka.NewRateTable(rows)
	}
	return rates, nil
}
