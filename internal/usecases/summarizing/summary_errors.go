package summarizing

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRange      = errors.New("intervalo de datas inválido")
	ErrInvalidPeriod     = errors.New("ano ou mês inválido")
	ErrDatabaseOperation = errors.New("erro ao realizar operação no banco de dados")
)

// SummaryError é um erro com contexto adicional para relatórios
type SummaryError struct {
	Err     error
	Code    string
	Details string
}

func (e *SummaryError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *SummaryError) Unwrap() error {
	return e.Err
}

func NewSummaryError(baseErr error, code string, details string) *SummaryError {
	return &SummaryError{
		Err:     baseErr,
		Code:    code,
		Details: details,
	}
}
