package recording

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/northpalm/sales-ledger-api/infrastructure/repository"
	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/northpalm/sales-ledger-api/pkg/apiErrors"
	"github.com/northpalm/sales-ledger-api/pkg/log"
)

type Recorder interface {
	ListStores(ctx context.Context) ([]*domain.Store, error)
	ListSales(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, error)
	GetSale(ctx context.Context, id int64) (*domain.Sale, error)
	CreateSale(ctx context.Context, actor domain.Actor, req domain.CreateSaleRequest) (*domain.Sale, error)
	UpdateSale(ctx context.Context, actor domain.Actor, id int64, req domain.UpdateSaleRequest) (*domain.Sale, error)
	DeleteSale(ctx context.Context, actor domain.Actor, id int64) error
	CloseSale(ctx context.Context, actor domain.Actor, id int64) (*domain.Sale, error)
	ReopenSale(ctx context.Context, actor domain.Actor, id int64, reason string) (*domain.Sale, error)
	ListHistory(ctx context.Context, id int64) ([]*domain.ClosingHistoryEntry, error)
}

type Service struct {
	saleRepo  repository.SaleRepository
	storeRepo repository.StoreRepository
	now       func() time.Time
}

func NewService(saleRepo repository.SaleRepository, storeRepo repository.StoreRepository) *Service {
	return &Service{
		saleRepo:  saleRepo,
		storeRepo: storeRepo,
		now:       time.Now,
	}
}

func (s *Service) ListStores(ctx context.Context) ([]*domain.Store, error) {
	stores, err := s.storeRepo.ListActive(ctx)
	if err != nil {
		return nil, NewSalesError(err, apiErrors.ErrDatabaseOperation, "Erro ao listar pontos de venda")
	}
	return stores, nil
}

func (s *Service) ListSales(ctx context.Context, filter domain.SaleFilter) ([]*domain.Sale, error) {
	sales, err := s.saleRepo.List(ctx, filter)
	if err != nil {
		return nil, NewSalesError(err, apiErrors.ErrDatabaseOperation, "Erro ao listar lançamentos")
	}
	return sales, nil
}

func (s *Service) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, NewSaleError(err, apiErrors.ErrDatabaseOperation, id, "Erro ao buscar lançamento")
	}
	if sale == nil {
		return nil, NewSaleError(ErrSaleNotFound, apiErrors.ErrSaleNotFound, id, "")
	}
	return sale, nil
}

// CreateSale valida a entrada e aplica o guard de duplicidade antes do insert.
// A constraint UNIQUE(sale_date, store_id) cobre a corrida entre duas criações simultâneas.
func (s *Service) CreateSale(ctx context.Context, actor domain.Actor, req domain.CreateSaleRequest) (*domain.Sale, error) {
	if strings.TrimSpace(req.SaleDate) == "" || req.StoreID == 0 || req.Amount == nil {
		return nil, NewSalesError(ErrMissingRequiredData, apiErrors.ErrMissingRequiredData, "Data, ponto de venda e valor são obrigatórios")
	}

	saleDate, err := time.Parse(time.DateOnly, strings.TrimSpace(req.SaleDate))
	if err != nil {
		return nil, NewSalesError(ErrInvalidDate, apiErrors.ErrInvalidFormat, req.SaleDate)
	}

	if err := validateFields(req.Amount, &req.Memo, req.Weather); err != nil {
		return nil, err
	}

	store, err := s.storeRepo.GetByID(ctx, req.StoreID)
	if err != nil {
		return nil, NewSalesError(err, apiErrors.ErrDatabaseOperation, "Erro ao buscar ponto de venda")
	}
	if store == nil || !store.IsActive {
		return nil, NewSalesError(ErrStoreNotFound, apiErrors.ErrStoreNotFound, "")
	}

	existing, err := s.saleRepo.FindByDateAndStore(ctx, saleDate, req.StoreID)
	if err != nil {
		return nil, NewSalesError(err, apiErrors.ErrDatabaseOperation, "Erro ao verificar duplicidade")
	}
	if existing != nil {
		return nil, NewSaleError(ErrDuplicateSale, apiErrors.ErrSaleDuplicate, existing.ID, "Edite ou exclua o lançamento existente")
	}

	sale, err := s.saleRepo.Create(ctx, &domain.Sale{
		SaleDate:  saleDate,
		StoreID:   req.StoreID,
		Amount:    *req.Amount,
		Memo:      req.Memo,
		Weather:   req.Weather,
		CreatedBy: actor.UserID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSale) {
			return nil, NewSalesError(ErrDuplicateSale, apiErrors.ErrSaleDuplicate, "Edite ou exclua o lançamento existente")
		}
		return nil, NewSalesError(err, apiErrors.ErrDatabaseOperation, "Erro ao criar lançamento")
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"user_id": actor.UserID,
		"sale_id": sale.ID,
	}).Infof("Lançamento criado: %s loja %d valor %d", sale.SaleDateString(), sale.StoreID, sale.Amount)

	return sale, nil
}

// UpdateSale altera valor, memo e clima de um lançamento aberto
func (s *Service) UpdateSale(ctx context.Context, actor domain.Actor, id int64, req domain.UpdateSaleRequest) (*domain.Sale, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}

	// lançamento fechado é rejeitado antes de qualquer validação do payload
	if err := sale.EnsureMutable(); err != nil {
		return nil, NewSaleError(err, apiErrors.ErrSaleClosed, id, "Reabra o lançamento antes de editar")
	}

	if req.Amount == nil && req.Memo == nil && req.Weather == nil {
		return nil, NewSaleError(ErrNothingToUpdate, apiErrors.ErrMissingRequiredData, id, "")
	}

	if err := validateFields(req.Amount, req.Memo, req.Weather); err != nil {
		return nil, err
	}

	updated, err := s.saleRepo.UpdateOpen(ctx, id, req)
	if err != nil {
		return nil, NewSaleError(err, apiErrors.ErrDatabaseOperation, id, "Erro ao atualizar lançamento")
	}
	if !updated {
		return nil, s.mutationRejected(ctx, id)
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"user_id": actor.UserID,
		"sale_id": id,
	}).Info("Lançamento atualizado")

	return s.GetSale(ctx, id)
}

func (s *Service) DeleteSale(ctx context.Context, actor domain.Actor, id int64) error {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return err
	}

	if err := sale.EnsureMutable(); err != nil {
		return NewSaleError(err, apiErrors.ErrSaleClosed, id, "Reabra o lançamento antes de excluir")
	}

	deleted, err := s.saleRepo.DeleteOpen(ctx, id)
	if err != nil {
		return NewSaleError(err, apiErrors.ErrDatabaseOperation, id, "Erro ao excluir lançamento")
	}
	if !deleted {
		return s.mutationRejected(ctx, id)
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"user_id": actor.UserID,
		"sale_id": id,
	}).Info("Lançamento excluído")

	return nil
}

// CloseSale fecha um lançamento aberto. Qualquer usuário autenticado pode fechar.
func (s *Service) CloseSale(ctx context.Context, actor domain.Actor, id int64) (*domain.Sale, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}

	entry := domain.NewCloseEntry(id, actor, s.now())
	if err := sale.Apply(entry); err != nil {
		return nil, NewSaleError(err, apiErrors.ErrSaleAlreadyClosed, id, "")
	}

	closed, err := s.saleRepo.Close(ctx, entry)
	if err != nil {
		return nil, NewSaleError(err, apiErrors.ErrDatabaseOperation, id, "Erro ao fechar lançamento")
	}
	if !closed {
		return nil, s.transitionRejected(ctx, id, domain.ActionClose)
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"user_id": actor.UserID,
		"sale_id": id,
	}).Info("Lançamento fechado")

	return s.GetSale(ctx, id)
}

// ReopenSale reabre um lançamento fechado. Exige papel admin e motivo não vazio.
func (s *Service) ReopenSale(ctx context.Context, actor domain.Actor, id int64, reason string) (*domain.Sale, error) {
	if err := domain.RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, NewSaleError(err, apiErrors.ErrInsufficientPrivilege, id, "Apenas administradores podem reabrir lançamentos")
	}

	entry, err := domain.NewReopenEntry(id, actor, s.now(), reason)
	if err != nil {
		return nil, NewSaleError(err, apiErrors.ErrReasonRequired, id, "")
	}

	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := sale.Apply(entry); err != nil {
		return nil, NewSaleError(err, apiErrors.ErrSaleNotClosed, id, "")
	}

	reopened, err := s.saleRepo.Reopen(ctx, entry)
	if err != nil {
		return nil, NewSaleError(err, apiErrors.ErrDatabaseOperation, id, "Erro ao reabrir lançamento")
	}
	if !reopened {
		return nil, s.transitionRejected(ctx, id, domain.ActionReopen)
	}

	log.ForContext(ctx).WithFields(log.Fields{
		"user_id": actor.UserID,
		"sale_id": id,
	}).Infof("Lançamento reaberto: %s", *entry.Reason)

	return s.GetSale(ctx, id)
}

func (s *Service) ListHistory(ctx context.Context, id int64) ([]*domain.ClosingHistoryEntry, error) {
	if _, err := s.GetSale(ctx, id); err != nil {
		return nil, err
	}

	entries, err := s.saleRepo.ListHistory(ctx, id)
	if err != nil {
		return nil, NewSaleError(err, apiErrors.ErrDatabaseOperation, id, "Erro ao buscar histórico")
	}
	return entries, nil
}

// mutationRejected explica por que um update/delete condicional não alterou nenhuma linha
func (s *Service) mutationRejected(ctx context.Context, id int64) error {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return err
	}
	if err := sale.EnsureMutable(); err != nil {
		return NewSaleError(err, apiErrors.ErrSaleClosed, id, "Lançamento fechado durante a operação")
	}
	return NewSaleError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, id, "Nenhuma linha alterada")
}

func (s *Service) transitionRejected(ctx context.Context, id int64, action domain.ClosingAction) error {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return err
	}
	if _, err := domain.Transition(sale.State(), action); err != nil {
		code := apiErrors.ErrSaleAlreadyClosed
		if action == domain.ActionReopen {
			code = apiErrors.ErrSaleNotClosed
		}
		return NewSaleError(err, code, id, "")
	}
	return NewSaleError(ErrDatabaseOperation, apiErrors.ErrDatabaseOperation, id, "Nenhuma linha alterada")
}

func validateFields(amount *int64, memo *string, weather *domain.Weather) error {
	if amount != nil && (*amount < 0 || *amount >= domain.MaxSaleAmount) {
		return NewSalesError(ErrInvalidAmount, apiErrors.ErrOutOfRange, "O valor deve estar entre 0 e 99.999.999")
	}

	if memo != nil && utf8.RuneCountInString(*memo) > domain.MaxMemoLength {
		return NewSalesError(ErrInvalidMemo, apiErrors.ErrOutOfRange, "Máximo de 500 caracteres")
	}

	if weather != nil && !weather.Valid() {
		return NewSalesError(ErrInvalidWeather, apiErrors.ErrInvalidFormat, string(*weather))
	}

	return nil
}
