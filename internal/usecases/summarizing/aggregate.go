package summarizing

import (
	"sort"
	"time"

	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/northpalm/sales-ledger-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// taxDivisor é o divisor de valores com imposto incluso (10%)
var taxDivisor = decimal.RequireFromString("1.1")

// TaxSplit separa o valor bruto em líquido e imposto. O líquido é arredondado para a unidade.
func TaxSplit(gross int64) (net int64, tax int64) {
	net = decimal.NewFromInt(gross).Div(taxDivisor).Round(0).IntPart()
	return net, gross - net
}

// PeriodKey devolve a chave do período de uma data na granularidade pedida
func PeriodKey(date time.Time, granularity domain.Granularity) string {
	switch granularity {
	case domain.GranularityYear:
		return date.Format("2006")
	case domain.GranularityMonth:
		return date.Format("2006-01")
	default:
		return date.Format(time.DateOnly)
	}
}

type groupKey struct {
	period  string
	storeID int
}

// Aggregate agrupa os lançamentos por período e ponto de venda.
// A ordem segue o período e depois a ordem de exibição das lojas informadas.
func Aggregate(sales []*domain.Sale, stores []*domain.Store, granularity domain.Granularity) ([]domain.SaleGroupSummary, domain.SummaryTotals) {
	order := storeOrder(stores)
	groups := make(map[groupKey]*domain.SaleGroupSummary)

	var totals domain.SummaryTotals

	for _, sale := range sales {
		key := groupKey{period: PeriodKey(sale.SaleDate, granularity), storeID: sale.StoreID}

		group, ok := groups[key]
		if !ok {
			group = &domain.SaleGroupSummary{
				Period:    key.period,
				StoreID:   sale.StoreID,
				StoreCode: sale.StoreCode,
				StoreName: sale.StoreName,
				Min:       sale.Amount,
				Max:       sale.Amount,
			}
			groups[key] = group
		}

		accumulate(group, sale.Amount)
		totals.SalesCount++
		totals.Total += sale.Amount
	}

	result := make([]domain.SaleGroupSummary, 0, len(groups))
	for _, group := range groups {
		finish(group)
		result = append(result, *group)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Period != result[j].Period {
			return result[i].Period < result[j].Period
		}
		return order.less(result[i].StoreID, result[j].StoreID)
	})

	finishTotals(&totals)

	return result, totals
}

// StoreTotals soma os lançamentos por ponto de venda. Lojas sem lançamento aparecem zeradas.
func StoreTotals(sales []*domain.Sale, stores []*domain.Store) ([]domain.SaleGroupSummary, domain.SummaryTotals) {
	summaries, totals := Aggregate(sales, stores, "")

	byStore := make(map[int]domain.SaleGroupSummary)
	for _, s := range summaries {
		merged, ok := byStore[s.StoreID]
		if !ok {
			merged = domain.SaleGroupSummary{StoreID: s.StoreID, StoreCode: s.StoreCode, StoreName: s.StoreName, Min: s.Min, Max: s.Max}
		}
		merged.SalesCount += s.SalesCount
		merged.Total += s.Total
		merged.Min = min(merged.Min, s.Min)
		merged.Max = max(merged.Max, s.Max)
		byStore[s.StoreID] = merged
	}

	result := make([]domain.SaleGroupSummary, 0, len(stores))
	for _, store := range stores {
		summary, ok := byStore[store.ID]
		if !ok {
			summary = domain.SaleGroupSummary{StoreID: store.ID, StoreCode: store.Code, StoreName: store.Name}
		}
		delete(byStore, store.ID)
		finish(&summary)
		result = append(result, summary)
	}

	// lançamentos de lojas desativadas continuam no total
	rest := make([]domain.SaleGroupSummary, 0, len(byStore))
	for _, summary := range byStore {
		finish(&summary)
		rest = append(rest, summary)
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].StoreID < rest[j].StoreID })

	return append(result, rest...), totals
}

// DailyTrend devolve o total diário de cada dia entre start e end, com zero nos dias sem venda
func DailyTrend(sales []*domain.Sale, start, end time.Time) []domain.DailyTrendPoint {
	byDay := make(map[string]int64)
	for _, sale := range sales {
		byDay[sale.SaleDateString()] += sale.Amount
	}

	points := make([]domain.DailyTrendPoint, 0)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		points = append(points, domain.DailyTrendPoint{Date: key, Total: byDay[key]})
	}

	return points
}

func accumulate(group *domain.SaleGroupSummary, amount int64) {
	group.SalesCount++
	group.Total += amount
	if amount < group.Min {
		group.Min = amount
	}
	if amount > group.Max {
		group.Max = amount
	}
}

func finish(group *domain.SaleGroupSummary) {
	if group.SalesCount > 0 {
		group.Average = utils.RoundWithTwoDecimalPlace(float64(group.Total) / float64(group.SalesCount))
	}
	group.Net, group.Tax = TaxSplit(group.Total)
}

func finishTotals(totals *domain.SummaryTotals) {
	if totals.SalesCount > 0 {
		totals.Average = utils.RoundWithTwoDecimalPlace(float64(totals.Total) / float64(totals.SalesCount))
	}
	totals.Net, totals.Tax = TaxSplit(totals.Total)
}

type displayOrder map[int]int

func storeOrder(stores []*domain.Store) displayOrder {
	order := make(displayOrder, len(stores))
	for i, store := range stores {
		order[store.ID] = i
	}
	return order
}

func (o displayOrder) less(a, b int) bool {
	ia, okA := o[a]
	ib, okB := o[b]
	switch {
	case okA && okB:
		return ia < ib
	case okA != okB:
		return okA
	default:
		return a < b
	}
}
