package domain

import (
	"encoding/json"
	"time"
)

const (
	// MaxSaleAmount é o limite superior exclusivo de um lançamento diário
	MaxSaleAmount int64 = 100_000_000
	MaxMemoLength       = 500
)

type Weather string

const (
	WeatherClear            Weather = "clear"
	WeatherOvercast         Weather = "overcast"
	WeatherRain             Weather = "rain"
	WeatherSnow             Weather = "snow"
	WeatherClosedForWeather Weather = "closed_for_weather"
)

func (w Weather) Valid() bool {
	switch w {
	case WeatherClear, WeatherOvercast, WeatherRain, WeatherSnow, WeatherClosedForWeather:
		return true
	}
	return false
}

// Sale é o lançamento de venda de um ponto de venda em um dia
type Sale struct {
	ID        int64      `json:"id"`
	SaleDate  time.Time  `json:"-"`
	StoreID   int        `json:"store_id"`
	Amount    int64      `json:"amount"`
	Memo      string     `json:"memo"`
	Weather   *Weather   `json:"weather"`
	IsClosed  bool       `json:"is_closed"`
	ClosedAt  *time.Time `json:"closed_at"`
	ClosedBy  *int       `json:"closed_by"`
	CreatedBy int        `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	StoreCode     string  `json:"store_code,omitempty"`
	StoreName     string  `json:"store_name,omitempty"`
	CreatedByName string  `json:"created_by_name,omitempty"`
	ClosedByName  *string `json:"closed_by_name,omitempty"`
}

// SaleDateString devolve a data no formato YYYY-MM-DD usado na API e no banco
func (s Sale) SaleDateString() string {
	return s.SaleDate.Format(time.DateOnly)
}

func (s Sale) MarshalJSON() ([]byte, error) {
	type alias Sale
	return json.Marshal(struct {
		alias
		SaleDate string `json:"sale_date"`
	}{
		alias:    alias(s),
		SaleDate: s.SaleDateString(),
	})
}

// SaleFilter define os filtros da listagem. Datas são inclusivas.
type SaleFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	StoreID   *int
	IsClosed  *bool
}

type CreateSaleRequest struct {
	SaleDate string   `json:"saleDate"`
	StoreID  int      `json:"storeId"`
	Amount   *int64   `json:"amount"`
	Memo     string   `json:"memo"`
	Weather  *Weather `json:"weather"`
}

type UpdateSaleRequest struct {
	Amount  *int64   `json:"amount"`
	Memo    *string  `json:"memo"`
	Weather *Weather `json:"weather"`
}

type ReopenSaleRequest struct {
	Reason string `json:"reason"`
}
