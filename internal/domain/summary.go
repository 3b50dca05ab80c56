package domain

// Granularity define o período de agrupamento dos relatórios
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityMonth Granularity = "month"
	GranularityYear  Granularity = "year"
)

// SaleGroupSummary é o agregado de um ponto de venda em um período
type SaleGroupSummary struct {
	Period     string  `json:"period"`
	StoreID    int     `json:"store_id"`
	StoreCode  string  `json:"store_code"`
	StoreName  string  `json:"store_name"`
	SalesCount int     `json:"sales_count"`
	Total      int64   `json:"total_amount"`
	Average    float64 `json:"avg_amount"`
	Min        int64   `json:"min_amount"`
	Max        int64   `json:"max_amount"`
	Net        int64   `json:"net_amount"`
	Tax        int64   `json:"tax_amount"`
}

type SummaryTotals struct {
	SalesCount int     `json:"sales_count"`
	Total      int64   `json:"total_amount"`
	Average    float64 `json:"avg_amount"`
	Net        int64   `json:"net_amount"`
	Tax        int64   `json:"tax_amount"`
}

type SummaryReport struct {
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
	Granularity Granularity        `json:"granularity"`
	Groups      []SaleGroupSummary `json:"groups"`
	Totals      SummaryTotals      `json:"totals"`
}

type DailyTrendPoint struct {
	Date  string `json:"sale_date"`
	Total int64  `json:"daily_total"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Dashboard struct {
	DateRange  DateRange          `json:"date_range"`
	StoreTotal []SaleGroupSummary `json:"store_total"`
	GrandTotal SummaryTotals      `json:"grand_total"`
	DailyTrend []DailyTrendPoint  `json:"daily_trend"`
}
