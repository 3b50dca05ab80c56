package summarizing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/northpalm/sales-ledger-api/infrastructure/repository/mocks"
	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/northpalm/sales-ledger-api/pkg/apiErrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*Service, *mocks.MockSaleRepository, *mocks.MockStoreRepository) {
	ctrl := gomock.NewController(t)
	saleRepo := mocks.NewMockSaleRepository(ctrl)
	storeRepo := mocks.NewMockStoreRepository(ctrl)

	service := NewService(saleRepo, storeRepo, 30)
	service.now = func() time.Time { return time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC) }

	return service, saleRepo, storeRepo
}

func TestService_Monthly(t *testing.T) {
	ctx := context.Background()

	t.Run("mês específico usa intervalo inclusivo", func(t *testing.T) {
		service, saleRepo, storeRepo := newTestService(t)
		year, month := 2024, 2

		saleRepo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, filter domain.SaleFilter) ([]*domain.Sale, error) {
			assert.Equal(t, "2024-02-01", filter.StartDate.Format(time.DateOnly))
			assert.Equal(t, "2024-02-29", filter.EndDate.Format(time.DateOnly))
			return []*domain.Sale{sale("2024-02-29", 1, 1_100_000)}, nil
		})
		storeRepo.EXPECT().ListActive(ctx).Return(testStores, nil)

		report, err := service.Monthly(ctx, &year, &month, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.GranularityMonth, report.Granularity)
		assert.Equal(t, "2024-02-01", report.StartDate)
		assert.Equal(t, "2024-02-29", report.EndDate)
		require.Len(t, report.Groups, 1)
		assert.Equal(t, int64(1_000_000), report.Totals.Net)
		assert.Equal(t, int64(100_000), report.Totals.Tax)
	})

	t.Run("intervalo vazio devolve totais zerados", func(t *testing.T) {
		service, saleRepo, storeRepo := newTestService(t)

		saleRepo.EXPECT().List(ctx, gomock.Any()).Return([]*domain.Sale{}, nil)
		storeRepo.EXPECT().ListActive(ctx).Return(testStores, nil)

		year := 2023

		report, err := service.Monthly(ctx, &year, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, report.Groups)
		assert.Equal(t, domain.SummaryTotals{}, report.Totals)
		assert.Equal(t, "2023-12-31", report.EndDate)
	})

	t.Run("mês inválido", func(t *testing.T) {
		service, _, _ := newTestService(t)
		year, month := 2024, 13

		_, err := service.Monthly(ctx, &year, &month, nil)
		var summaryErr *SummaryError
		require.True(t, errors.As(err, &summaryErr))
		assert.Equal(t, apiErrors.ErrOutOfRange, summaryErr.Code)
	})

	t.Run("sem ano cobre todo o histórico", func(t *testing.T) {
		service, saleRepo, storeRepo := newTestService(t)

		saleRepo.EXPECT().List(ctx, domain.SaleFilter{}).Return([]*domain.Sale{
			sale("2023-03-10", 1, 10),
			sale("2024-06-01", 1, 20),
		}, nil)
		storeRepo.EXPECT().ListActive(ctx).Return(testStores, nil)

		report, err := service.Monthly(ctx, nil, nil, nil)
		require.NoError(t, err)
		require.Len(t, report.Groups, 2)
		assert.Equal(t, int64(30), report.Totals.Total)
		assert.Empty(t, report.StartDate)
		assert.Empty(t, report.EndDate)
	})

	t.Run("mês sem ano filtra o mês em todos os anos", func(t *testing.T) {
		service, saleRepo, storeRepo := newTestService(t)
		month := 6

		saleRepo.EXPECT().List(ctx, domain.SaleFilter{}).Return([]*domain.Sale{
			sale("2023-06-10", 1, 10),
			sale("2023-07-01", 1, 99),
			sale("2024-06-01", 2, 20),
		}, nil)
		storeRepo.EXPECT().ListActive(ctx).Return(testStores, nil)

		report, err := service.Monthly(ctx, nil, &month, nil)
		require.NoError(t, err)
		require.Len(t, report.Groups, 2)
		assert.Equal(t, "2023-06", report.Groups[0].Period)
		assert.Equal(t, "2024-06", report.Groups[1].Period)
		assert.Equal(t, int64(30), report.Totals.Total)
	})
}

func TestService_Daily(t *testing.T) {
	ctx := context.Background()

	t.Run("intervalo inclusivo nas duas pontas", func(t *testing.T) {
		service, saleRepo, storeRepo := newTestService(t)
		start, _ := time.Parse(time.DateOnly, "2024-06-10")
		end, _ := time.Parse(time.DateOnly, "2024-06-12")
		storeID := 1

		saleRepo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, filter domain.SaleFilter) ([]*domain.Sale, error) {
			assert.Equal(t, "2024-06-10", filter.StartDate.Format(time.DateOnly))
			assert.Equal(t, "2024-06-12", filter.EndDate.Format(time.DateOnly))
			assert.Equal(t, &storeID, filter.StoreID)
			return []*domain.Sale{sale("2024-06-10", 1, 100), sale("2024-06-12", 1, 300)}, nil
		})
		storeRepo.EXPECT().ListActive(ctx).Return(testStores, nil)

		report, err := service.Daily(ctx, &start, &end, &storeID)
		require.NoError(t, err)
		assert.Equal(t, domain.GranularityDay, report.Granularity)
		require.Len(t, report.Groups, 2)
		assert.Equal(t, "2024-06-10", report.Groups[0].Period)
		assert.Equal(t, "2024-06-12", report.Groups[1].Period)
		assert.Equal(t, int64(400), report.Totals.Total)
	})

	t.Run("sem datas usa a janela padrão", func(t *testing.T) {
		service, saleRepo, storeRepo := newTestService(t)

		saleRepo.EXPECT().List(ctx, gomock.Any()).Return(nil, nil)
		storeRepo.EXPECT().ListActive(ctx).Return(testStores, nil)

		report, err := service.Daily(ctx, nil, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "2024-05-31", report.StartDate)
		assert.Equal(t, "2024-06-30", report.EndDate)
		assert.Empty(t, report.Groups)
	})

	t.Run("início depois do fim", func(t *testing.T) {
		service, _, _ := newTestService(t)
		start, _ := time.Parse(time.DateOnly, "2024-06-12")
		end, _ := time.Parse(time.DateOnly, "2024-06-10")

		_, err := service.Daily(ctx, &start, &end, nil)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestService_YearlyWithoutYear(t *testing.T) {
	service, saleRepo, storeRepo := newTestService(t)
	ctx := context.Background()
	storeID := 1

	saleRepo.EXPECT().List(ctx, domain.SaleFilter{StoreID: &storeID}).Return([]*domain.Sale{
		sale("2023-05-01", 1, 10),
		sale("2024-05-01", 1, 20),
	}, nil)
	storeRepo.EXPECT().ListActive(ctx).Return(testStores, nil)

	report, err := service.Yearly(ctx, nil, &storeID)
	require.NoError(t, err)
	require.Len(t, report.Groups, 2)
	assert.Equal(t, "2023", report.Groups[0].Period)
	assert.Equal(t, "2024", report.Groups[1].Period)
	assert.Empty(t, report.StartDate)
}

func TestService_Dashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("padrão de hoje menos 30 dias até hoje", func(t *testing.T) {
		service, saleRepo, storeRepo := newTestService(t)

		saleRepo.EXPECT().List(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, filter domain.SaleFilter) ([]*domain.Sale, error) {
			assert.Equal(t, "2024-05-31", filter.StartDate.Format(time.DateOnly))
			assert.Equal(t, "2024-06-30", filter.EndDate.Format(time.DateOnly))
			return []*domain.Sale{sale("2024-06-29", 2, 400), sale("2024-06-01", 1, 100)}, nil
		})
		storeRepo.EXPECT().ListActive(ctx).Return(testStores, nil)

		dashboard, err := service.Dashboard(ctx, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.DateRange{Start: "2024-05-31", End: "2024-06-30"}, dashboard.DateRange)
		require.Len(t, dashboard.StoreTotal, 3)
		assert.Equal(t, int64(500), dashboard.GrandTotal.Total)
		require.Len(t, dashboard.DailyTrend, 8)
		assert.Equal(t, "2024-06-23", dashboard.DailyTrend[0].Date)
		assert.Equal(t, int64(400), dashboard.DailyTrend[6].Total)
		assert.Zero(t, dashboard.DailyTrend[7].Total)
	})

	t.Run("intervalo curto limita a tendência", func(t *testing.T) {
		service, saleRepo, storeRepo := newTestService(t)
		start, _ := time.Parse(time.DateOnly, "2024-06-10")
		end, _ := time.Parse(time.DateOnly, "2024-06-12")

		saleRepo.EXPECT().List(ctx, gomock.Any()).Return(nil, nil)
		storeRepo.EXPECT().ListActive(ctx).Return(testStores, nil)

		dashboard, err := service.Dashboard(ctx, &start, &end)
		require.NoError(t, err)
		assert.Len(t, dashboard.DailyTrend, 3)
		assert.Equal(t, domain.SummaryTotals{}, dashboard.GrandTotal)
	})

	t.Run("início depois do fim", func(t *testing.T) {
		service, _, _ := newTestService(t)
		start, _ := time.Parse(time.DateOnly, "2024-06-12")
		end, _ := time.Parse(time.DateOnly, "2024-06-10")

		_, err := service.Dashboard(ctx, &start, &end)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}
