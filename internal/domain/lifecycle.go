package domain

import (
	"errors"
	"strings"
	"time"
)

// SaleState é o estado de fechamento de um lançamento. Reabrir volta para SaleOpen.
type SaleState string

const (
	SaleOpen   SaleState = "open"
	SaleClosed SaleState = "closed"
)

type ClosingAction string

const (
	ActionClose  ClosingAction = "close"
	ActionReopen ClosingAction = "reopen"
)

var (
	ErrSaleClosed        = errors.New("lançamento fechado não pode ser alterado")
	ErrSaleAlreadyClosed = errors.New("lançamento já está fechado")
	ErrSaleNotClosed     = errors.New("lançamento não está fechado")
	ErrReasonRequired    = errors.New("motivo da reabertura é obrigatório")
	ErrUnknownAction     = errors.New("ação de fechamento desconhecida")
)

// ClosingHistoryEntry é uma linha imutável do histórico de fechamento
type ClosingHistoryEntry struct {
	ID              int64         `json:"id"`
	SaleID          int64         `json:"sale_id"`
	Action          ClosingAction `json:"action"`
	PerformedBy     int           `json:"performed_by"`
	PerformedByName string        `json:"performed_by_name,omitempty"`
	PerformedAt     time.Time     `json:"performed_at"`
	Reason          *string       `json:"reason"`
}

func (s Sale) State() SaleState {
	if s.IsClosed {
		return SaleClosed
	}
	return SaleOpen
}

// EnsureMutable falha se o lançamento não aceita edição nem exclusão
func (s Sale) EnsureMutable() error {
	if s.State() == SaleClosed {
		return ErrSaleClosed
	}
	return nil
}

// Transition devolve o próximo estado para a ação ou o erro de conflito correspondente
func Transition(current SaleState, action ClosingAction) (SaleState, error) {
	switch action {
	case ActionClose:
		if current == SaleClosed {
			return current, ErrSaleAlreadyClosed
		}
		return SaleClosed, nil
	case ActionReopen:
		if current != SaleClosed {
			return current, ErrSaleNotClosed
		}
		return SaleOpen, nil
	default:
		return current, ErrUnknownAction
	}
}

// NewCloseEntry monta a entrada de histórico de um fechamento
func NewCloseEntry(saleID int64, actor Actor, at time.Time) ClosingHistoryEntry {
	return ClosingHistoryEntry{
		SaleID:          saleID,
		Action:          ActionClose,
		PerformedBy:     actor.UserID,
		PerformedByName: actor.Name,
		PerformedAt:     at,
	}
}

// NewReopenEntry monta a entrada de histórico de uma reabertura. O motivo é obrigatório.
func NewReopenEntry(saleID int64, actor Actor, at time.Time, reason string) (ClosingHistoryEntry, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ClosingHistoryEntry{}, ErrReasonRequired
	}

	return ClosingHistoryEntry{
		SaleID:          saleID,
		Action:          ActionReopen,
		PerformedBy:     actor.UserID,
		PerformedByName: actor.Name,
		PerformedAt:     at,
		Reason:          &reason,
	}, nil
}

// Apply aplica a entrada ao lançamento mantendo closed_at/closed_by coerentes com is_closed
func (s *Sale) Apply(entry ClosingHistoryEntry) error {
	next, err := Transition(s.State(), entry.Action)
	if err != nil {
		return err
	}

	switch next {
	case SaleClosed:
		at := entry.PerformedAt
		by := entry.PerformedBy
		s.IsClosed = true
		s.ClosedAt = &at
		s.ClosedBy = &by
		if entry.PerformedByName != "" {
			name := entry.PerformedByName
			s.ClosedByName = &name
		}
	case SaleOpen:
		s.IsClosed = false
		s.ClosedAt = nil
		s.ClosedBy = nil
		s.ClosedByName = nil
	}

	return nil
}
