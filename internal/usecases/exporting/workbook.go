package exporting

import (
	"fmt"
	"time"

	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Lançamentos"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{"Data", "Código", "Ponto de venda", "Valor", "Clima", "Memo", "Situação", "Lançado por", "Fechado por"}

var columnWidths = map[string]float64{
	"A": 12, "B": 14, "C": 18, "D": 14, "E": 18, "F": 40, "G": 10, "H": 16, "I": 16,
}

// SalesWorkbook monta a planilha com uma linha por lançamento e o total ao final
func SalesWorkbook(sales []*domain.Sale) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("erro ao criar planilha: %w", err)
	}

	for i, header := range headers {
		if err := setCell(f, i+1, 1, header); err != nil {
			return nil, err
		}
	}

	var total int64
	for idx, sale := range sales {
		row := idx + 2
		total += sale.Amount

		weather := ""
		if sale.Weather != nil {
			weather = string(*sale.Weather)
		}
		status := "aberto"
		if sale.IsClosed {
			status = "fechado"
		}
		closedBy := ""
		if sale.ClosedByName != nil {
			closedBy = *sale.ClosedByName
		}

		values := []any{
			sale.SaleDateString(),
			sale.StoreCode,
			sale.StoreName,
			sale.Amount,
			weather,
			sale.Memo,
			status,
			sale.CreatedByName,
			closedBy,
		}
		for col, value := range values {
			if err := setCell(f, col+1, row, value); err != nil {
				return nil, err
			}
		}
	}

	totalRow := len(sales) + 2
	if err := setCell(f, 1, totalRow, "Total"); err != nil {
		return nil, err
	}
	if err := setCell(f, 4, totalRow, total); err != nil {
		return nil, err
	}

	for col, width := range columnWidths {
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// FileName devolve o nome do arquivo de exportação para o dia informado
func FileName(at time.Time) string {
	return fmt.Sprintf("lancamentos_%s.xlsx", at.Format("20060102"))
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(SheetName, cell, value)
}
