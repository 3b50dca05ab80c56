package recording

import (
	"errors"
	"fmt"
)

// Erros específicos para o contexto de lançamentos
var (
	// Erros de validação
	ErrMissingRequiredData = errors.New("dados obrigatórios ausentes")
	ErrInvalidDate         = errors.New("data inválida, use o formato YYYY-MM-DD")
	ErrInvalidAmount       = errors.New("valor fora do intervalo permitido")
	ErrInvalidMemo         = errors.New("memo excede o tamanho máximo")
	ErrInvalidWeather      = errors.New("clima inválido")
	ErrNothingToUpdate     = errors.New("nenhum campo para atualizar")

	// Erros de estado
	ErrSaleNotFound  = errors.New("lançamento não encontrado")
	ErrStoreNotFound = errors.New("ponto de venda não encontrado ou inativo")
	ErrDuplicateSale = errors.New("já existe lançamento para esta data e ponto de venda")

	// Erros de banco de dados
	ErrDatabaseOperation = errors.New("erro ao realizar operação no banco de dados")
)

// SalesError é um erro com contexto adicional para lançamentos
type SalesError struct {
	Err     error  // Erro base
	Code    string // Código de erro para API
	SaleID  int64  // ID do lançamento envolvido (quando aplicável)
	Details string // Detalhes adicionais
}

func (e *SalesError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *SalesError) Unwrap() error {
	return e.Err
}

func NewSalesError(baseErr error, code string, details string) *SalesError {
	return &SalesError{
		Err:     baseErr,
		Code:    code,
		Details: details,
	}
}

func NewSaleError(baseErr error, code string, saleID int64, details string) *SalesError {
	return &SalesError{
		Err:     baseErr,
		Code:    code,
		SaleID:  saleID,
		Details: details,
	}
}
