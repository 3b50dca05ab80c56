package domain

// Store é um ponto de venda do clube. Dado de referência, não é alterado pela API.
type Store struct {
	ID           int    `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
	IsActive     bool   `json:"is_active"`
}

// DefaultStores são os pontos de venda carregados pelo comando de seed
var DefaultStores = []Store{
	{Code: "CLUBHOUSE", Name: "클럽하우스", DisplayOrder: 1, IsActive: true},
	{Code: "STARTHOUSE", Name: "스타트하우스", DisplayOrder: 2, IsActive: true},
	{Code: "EAST_SHADE", Name: "동그늘집", DisplayOrder: 3, IsActive: true},
	{Code: "WEST_SHADE", Name: "서그늘집", DisplayOrder: 4, IsActive: true},
}
