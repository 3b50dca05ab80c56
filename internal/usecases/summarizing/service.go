package summarizing

import (
	"context"
	"fmt"
	"time"

	"github.com/northpalm/sales-ledger-api/infrastructure/repository"
	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/northpalm/sales-ledger-api/pkg/apiErrors"
	"github.com/northpalm/sales-ledger-api/pkg/log"
)

// trendDays cobre o dia final e os sete anteriores
const trendDays = 8

type Summarizer interface {
	Daily(ctx context.Context, start, end *time.Time, storeID *int) (*domain.SummaryReport, error)
	Monthly(ctx context.Context, year, month *int, storeID *int) (*domain.SummaryReport, error)
	Yearly(ctx context.Context, year *int, storeID *int) (*domain.SummaryReport, error)
	Dashboard(ctx context.Context, start, end *time.Time) (*domain.Dashboard, error)
}

type Service struct {
	saleRepo    repository.SaleRepository
	storeRepo   repository.StoreRepository
	defaultDays int
	now         func() time.Time
}

func NewService(saleRepo repository.SaleRepository, storeRepo repository.StoreRepository, defaultDays int) *Service {
	if defaultDays <= 0 {
		defaultDays = 30
	}

	return &Service{
		saleRepo:    saleRepo,
		storeRepo:   storeRepo,
		defaultDays: defaultDays,
		now:         time.Now,
	}
}

// Daily agrega por dia e loja no intervalo inclusivo. Sem datas, usa a mesma janela do dashboard.
func (s *Service) Daily(ctx context.Context, start, end *time.Time, storeID *int) (*domain.SummaryReport, error) {
	rangeStart, rangeEnd, err := s.window(start, end)
	if err != nil {
		return nil, err
	}

	return s.report(ctx, &rangeStart, &rangeEnd, storeID, domain.GranularityDay, nil)
}

// Monthly agrega por mês. Sem ano, cobre todo o histórico; mês sem ano filtra o mês em todos os anos.
func (s *Service) Monthly(ctx context.Context, year, month *int, storeID *int) (*domain.SummaryReport, error) {
	if month != nil && (*month < 1 || *month > 12) {
		return nil, NewSummaryError(ErrInvalidPeriod, apiErrors.ErrOutOfRange, fmt.Sprintf("mês %d", *month))
	}

	if year == nil {
		var match func(*domain.Sale) bool
		if month != nil {
			wanted := time.Month(*month)
			match = func(sale *domain.Sale) bool { return sale.SaleDate.Month() == wanted }
		}
		return s.report(ctx, nil, nil, storeID, domain.GranularityMonth, match)
	}

	if *year < 1 || *year > 9999 {
		return nil, NewSummaryError(ErrInvalidPeriod, apiErrors.ErrOutOfRange, fmt.Sprintf("ano %d", *year))
	}

	start := time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, -1)

	if month != nil {
		start = time.Date(*year, time.Month(*month), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, -1)
	}

	return s.report(ctx, &start, &end, storeID, domain.GranularityMonth, nil)
}

// Yearly agrega por ano. Sem ano informado, cobre todo o histórico.
func (s *Service) Yearly(ctx context.Context, year *int, storeID *int) (*domain.SummaryReport, error) {
	if year == nil {
		return s.report(ctx, nil, nil, storeID, domain.GranularityYear, nil)
	}

	if *year < 1 || *year > 9999 {
		return nil, NewSummaryError(ErrInvalidPeriod, apiErrors.ErrOutOfRange, fmt.Sprintf("ano %d", *year))
	}

	start := time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, -1)

	return s.report(ctx, &start, &end, storeID, domain.GranularityYear, nil)
}

func (s *Service) report(ctx context.Context, start, end *time.Time, storeID *int, granularity domain.Granularity, match func(*domain.Sale) bool) (*domain.SummaryReport, error) {
	sales, err := s.saleRepo.List(ctx, domain.SaleFilter{StartDate: start, EndDate: end, StoreID: storeID})
	if err != nil {
		return nil, NewSummaryError(err, apiErrors.ErrDatabaseOperation, "Erro ao buscar lançamentos")
	}

	if match != nil {
		filtered := sales[:0]
		for _, sale := range sales {
			if match(sale) {
				filtered = append(filtered, sale)
			}
		}
		sales = filtered
	}

	stores, err := s.storeRepo.ListActive(ctx)
	if err != nil {
		return nil, NewSummaryError(err, apiErrors.ErrDatabaseOperation, "Erro ao listar pontos de venda")
	}

	groups, totals := Aggregate(sales, stores, granularity)

	report := &domain.SummaryReport{
		Granularity: granularity,
		Groups:      groups,
		Totals:      totals,
	}
	if start != nil {
		report.StartDate = start.Format(time.DateOnly)
	}
	if end != nil {
		report.EndDate = end.Format(time.DateOnly)
	}

	log.ForContext(ctx).Debugf("Relatório %s: %d grupos, %d lançamentos", granularity, len(groups), totals.SalesCount)

	return report, nil
}

// window resolve o intervalo padrão: de hoje menos defaultDays até hoje, ambos inclusivos
func (s *Service) window(start, end *time.Time) (time.Time, time.Time, error) {
	now := s.now().UTC()
	rangeEnd := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if end != nil {
		rangeEnd = *end
	}

	rangeStart := rangeEnd.AddDate(0, 0, -s.defaultDays)
	if start != nil {
		rangeStart = *start
	}

	if rangeStart.After(rangeEnd) {
		return time.Time{}, time.Time{}, NewSummaryError(ErrInvalidRange, apiErrors.ErrInvalidRequest, "startDate deve ser anterior ou igual a endDate")
	}

	return rangeStart, rangeEnd, nil
}

// Dashboard resume o intervalo (padrão: últimos N dias até hoje) com totais por loja e tendência diária
func (s *Service) Dashboard(ctx context.Context, start, end *time.Time) (*domain.Dashboard, error) {
	rangeStart, rangeEnd, err := s.window(start, end)
	if err != nil {
		return nil, err
	}

	sales, err := s.saleRepo.List(ctx, domain.SaleFilter{StartDate: &rangeStart, EndDate: &rangeEnd})
	if err != nil {
		return nil, NewSummaryError(err, apiErrors.ErrDatabaseOperation, "Erro ao buscar lançamentos")
	}

	stores, err := s.storeRepo.ListActive(ctx)
	if err != nil {
		return nil, NewSummaryError(err, apiErrors.ErrDatabaseOperation, "Erro ao listar pontos de venda")
	}

	storeTotals, grandTotal := StoreTotals(sales, stores)

	trendStart := rangeEnd.AddDate(0, 0, -(trendDays - 1))
	if trendStart.Before(rangeStart) {
		trendStart = rangeStart
	}

	return &domain.Dashboard{
		DateRange: domain.DateRange{
			Start: rangeStart.Format(time.DateOnly),
			End:   rangeEnd.Format(time.DateOnly),
		},
		StoreTotal: storeTotals,
		GrandTotal: grandTotal,
		DailyTrend: DailyTrend(sales, trendStart, rangeEnd),
	}, nil
}
