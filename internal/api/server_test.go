package api_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/northpalm/sales-ledger-api/infrastructure/database"
	"github.com/northpalm/sales-ledger-api/infrastructure/migration"
	"github.com/northpalm/sales-ledger-api/infrastructure/repository"
	"github.com/northpalm/sales-ledger-api/internal/api"
	"github.com/northpalm/sales-ledger-api/internal/api/handler"
	"github.com/northpalm/sales-ledger-api/internal/config"
	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/northpalm/sales-ledger-api/internal/usecases/authenticating"
	"github.com/northpalm/sales-ledger-api/internal/usecases/exporting"
	"github.com/northpalm/sales-ledger-api/internal/usecases/recording"
	"github.com/northpalm/sales-ledger-api/internal/usecases/summarizing"
	"github.com/northpalm/sales-ledger-api/pkg/apiErrors"
	"github.com/northpalm/sales-ledger-api/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type envelope struct {
	Success bool                `json:"success"`
	Data    jsoniter.RawMessage `json:"data"`
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details any                 `json:"details"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log.SetupTestLogger()
	ctx := context.Background()

	conn, err := database.NewConnection(ctx, config.Database{
		Driver: config.DriverSQLite,
		DSN:    "file::memory:?_foreign_keys=on",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.Migrate(ctx))

	cfg := &config.Config{SecretKey: "test-secret"}
	cfg.Auth.CookieName = "auth_token"
	cfg.Cors.AllowedOrigins = []string{"http://localhost:3000"}

	saleRepo := repository.NewSaleRepository(conn)
	storeRepo := repository.NewStoreRepository(conn)
	authenticator := authenticating.NewService(repository.NewUserRepository(conn), repository.NewSessionRepository(conn), cfg)

	_, err = migration.Seed(ctx, storeRepo, authenticator, migration.DefaultUsers("admin123", "staff123"))
	require.NoError(t, err)

	server, err := api.New(
		cfg,
		conn,
		recording.NewService(saleRepo, storeRepo),
		summarizing.NewService(saleRepo, storeRepo, 30),
		authenticator,
		handler.CronJobServices{},
	)
	require.NoError(t, err)

	return &testServer{t: t, handler: server.Handler()}
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (s *testServer) login(username, password string) (string, *http.Cookie) {
	s.t.Helper()

	rec, env := s.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var result domain.LoginResult
	require.NoError(s.t, json.Unmarshal(env.Data, &result))

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			cookie = c
		}
	}
	require.NotNil(s.t, cookie)

	return result.Token, cookie
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func TestLedgerFlow(t *testing.T) {
	srv := newTestServer(t)

	staffToken, staffCookie := srv.login("staff1", "staff123")
	adminToken, _ := srv.login("admin", "admin123")

	assert.True(t, staffCookie.HttpOnly)
	assert.Equal(t, staffToken, staffCookie.Value)

	_, env := srv.do(http.MethodGet, "/v1/stores", staffToken, nil)
	stores := decode[[]domain.Store](t, env)
	require.Len(t, stores, 4)
	storeID := stores[0].ID

	amount := int64(1_250_000)
	rec, env := srv.do(http.MethodPost, "/v1/sales", staffToken, map[string]any{
		"saleDate": "2024-06-01",
		"storeId":  storeID,
		"amount":   amount,
		"memo":     "torneio",
		"weather":  "clear",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, env)
	saleID := int64(created["id"].(float64))
	assert.Equal(t, "2024-06-01", created["sale_date"])
	assert.Equal(t, "CLUBHOUSE", created["store_code"])

	t.Run("Duplicado devolve 409 com o id existente", func(t *testing.T) {
		rec, env := srv.do(http.MethodPost, "/v1/sales", adminToken, map[string]any{
			"saleDate": "2024-06-01",
			"storeId":  storeID,
			"amount":   10,
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, apiErrors.ErrSaleDuplicate, env.Code)
		details := env.Details.(map[string]any)
		assert.Equal(t, float64(saleID), details["existing_id"])
	})

	t.Run("Validações de entrada", func(t *testing.T) {
		rec, env := srv.do(http.MethodPost, "/v1/sales", staffToken, map[string]any{"saleDate": "2024-13-01", "storeId": storeID, "amount": 1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrInvalidFormat, env.Code)

		rec, env = srv.do(http.MethodPost, "/v1/sales", staffToken, map[string]any{"saleDate": "2024-06-02", "storeId": storeID, "amount": domain.MaxSaleAmount})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrOutOfRange, env.Code)

		rec, env = srv.do(http.MethodPost, "/v1/sales", staffToken, map[string]any{"saleDate": "2024-06-02", "storeId": 999, "amount": 1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrStoreNotFound, env.Code)

		rec, env = srv.do(http.MethodGet, "/v1/sales/abc", staffToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrInvalidFormat, env.Code)

		rec, env = srv.do(http.MethodGet, "/v1/sales/9999", staffToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apiErrors.ErrSaleNotFound, env.Code)
	})

	salePath := "/v1/sales/" + strconv.FormatInt(saleID, 10)

	rec, env = srv.do(http.MethodPut, salePath, staffToken, map[string]any{"amount": 1_300_000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1_300_000), decode[map[string]any](t, env)["amount"])

	rec, env = srv.do(http.MethodPost, salePath+"/close", staffToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	closed := decode[map[string]any](t, env)
	assert.Equal(t, true, closed["is_closed"])
	assert.Equal(t, "직원1", closed["closed_by_name"])

	t.Run("Fechado não aceita edição nem exclusão", func(t *testing.T) {
		rec, env := srv.do(http.MethodPut, salePath, adminToken, map[string]any{"amount": 1})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, apiErrors.ErrSaleClosed, env.Code)

		for _, body := range []map[string]any{{"amount": -5}, {}, {"weather": "hail"}} {
			rec, env := srv.do(http.MethodPut, salePath, staffToken, body)
			assert.Equal(t, http.StatusForbidden, rec.Code, "payload %v", body)
			assert.Equal(t, apiErrors.ErrSaleClosed, env.Code, "payload %v", body)
		}

		rec, env = srv.do(http.MethodDelete, salePath, adminToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, apiErrors.ErrSaleClosed, env.Code)

		rec, env = srv.do(http.MethodPost, salePath+"/close", adminToken, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, apiErrors.ErrSaleAlreadyClosed, env.Code)
	})

	t.Run("Reabertura exige admin e motivo", func(t *testing.T) {
		rec, env := srv.do(http.MethodPost, salePath+"/reopen", staffToken, map[string]string{"reason": "erro de digitação"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, apiErrors.ErrInsufficientPrivilege, env.Code)

		rec, env = srv.do(http.MethodPost, salePath+"/reopen", adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrReasonRequired, env.Code)

		rec, env = srv.do(http.MethodPost, salePath+"/reopen", adminToken, map[string]string{"reason": "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrReasonRequired, env.Code)
	})

	rec, env = srv.do(http.MethodPost, salePath+"/reopen", adminToken, map[string]string{"reason": "erro de digitação"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reopened := decode[map[string]any](t, env)
	assert.Equal(t, false, reopened["is_closed"])
	assert.Nil(t, reopened["closed_at"])

	rec, env = srv.do(http.MethodPost, salePath+"/reopen", adminToken, map[string]string{"reason": "de novo"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apiErrors.ErrSaleNotClosed, env.Code)

	rec, _ = srv.do(http.MethodPost, salePath+"/close", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, env = srv.do(http.MethodGet, salePath+"/history", staffToken, nil)
	history := decode[[]domain.ClosingHistoryEntry](t, env)
	require.Len(t, history, 3)
	assert.Equal(t, domain.ActionClose, history[0].Action)
	assert.Equal(t, domain.ActionReopen, history[1].Action)
	require.NotNil(t, history[1].Reason)
	assert.Equal(t, "erro de digitação", *history[1].Reason)
	assert.Equal(t, domain.ActionClose, history[2].Action)

	t.Run("Listagem com filtros", func(t *testing.T) {
		rec, env := srv.do(http.MethodGet, "/v1/sales?startDate=2024-06-01&endDate=2024-06-30&isClosed=true", staffToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]map[string]any](t, env), 1)

		_, env = srv.do(http.MethodGet, "/v1/sales?isClosed=false", staffToken, nil)
		assert.Empty(t, decode[[]map[string]any](t, env))

		rec, env = srv.do(http.MethodGet, "/v1/sales?startDate=ontem", staffToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrInvalidFormat, env.Code)
	})

	t.Run("Resumo mensal com separação de imposto", func(t *testing.T) {
		rec, env := srv.do(http.MethodGet, "/v1/summary/monthly?year=2024&month=6", staffToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		report := decode[domain.SummaryReport](t, env)
		require.Len(t, report.Groups, 1)
		assert.Equal(t, "2024-06", report.Groups[0].Period)
		assert.Equal(t, int64(1_300_000), report.Totals.Total)
		assert.Equal(t, int64(1_181_818), report.Totals.Net)
		assert.Equal(t, int64(118_182), report.Totals.Tax)

		rec, env = srv.do(http.MethodGet, "/v1/summary/monthly?year=2024&month=13", staffToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrOutOfRange, env.Code)
	})

	t.Run("Resumo diário com intervalo inclusivo", func(t *testing.T) {
		rec, _ := srv.do(http.MethodPost, "/v1/sales", staffToken, map[string]any{
			"saleDate": "2024-06-03",
			"storeId":  stores[1].ID,
			"amount":   220_000,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec, env := srv.do(http.MethodGet, "/v1/summary/daily?startDate=2024-06-01&endDate=2024-06-03", staffToken, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		report := decode[domain.SummaryReport](t, env)
		assert.Equal(t, domain.GranularityDay, report.Granularity)
		require.Len(t, report.Groups, 2)
		assert.Equal(t, "2024-06-01", report.Groups[0].Period)
		assert.Equal(t, "2024-06-03", report.Groups[1].Period)
		assert.Equal(t, int64(1_520_000), report.Totals.Total)

		_, env = srv.do(http.MethodGet, "/v1/summary/daily?startDate=2024-06-02&endDate=2024-06-03&storeId="+strconv.Itoa(stores[1].ID), staffToken, nil)
		report = decode[domain.SummaryReport](t, env)
		require.Len(t, report.Groups, 1)
		assert.Equal(t, int64(220_000), report.Totals.Total)

		rec, env = srv.do(http.MethodGet, "/v1/summary/daily?startDate=2024-06-04&endDate=2024-06-03", staffToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apiErrors.ErrInvalidRequest, env.Code)
	})

	t.Run("Exportação xlsx", func(t *testing.T) {
		rec, _ := srv.do(http.MethodGet, "/v1/export/sales?startDate=2024-06-01", staffToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, exporting.ContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "lancamentos_")
		assert.NotZero(t, rec.Body.Len())
	})

	t.Run("Cookie autentica e logout revoga a sessão", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
		req.AddCookie(staffCookie)
		rec := httptest.NewRecorder()
		srv.handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec, _ = srv.do(http.MethodPost, "/v1/auth/logout", staffToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec, env := srv.do(http.MethodGet, "/v1/auth/me", staffToken, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, apiErrors.ErrExpiredToken, env.Code)
	})
}

func TestAccessControl(t *testing.T) {
	srv := newTestServer(t)

	rec, env := srv.do(http.MethodGet, "/v1/sales", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apiErrors.ErrInvalidToken, env.Code)

	rec, env = srv.do(http.MethodGet, "/v1/sales", "forjado", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apiErrors.ErrInvalidToken, env.Code)

	rec, env = srv.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"username": "admin", "password": "errada"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apiErrors.ErrInvalidCredentials, env.Code)

	staffToken, _ := srv.login("staff1", "staff123")

	rec, env = srv.do(http.MethodPost, "/v1/users", staffToken, map[string]string{"username": "x", "name": "x", "password": "xxxx"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apiErrors.ErrInsufficientPrivilege, env.Code)

	rec, _ = srv.do(http.MethodGet, "/v1/cron/status", staffToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = srv.do(http.MethodGet, "/v1/nada", staffToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, apiErrors.ErrRouteNotFound, env.Code)

	rec, env = srv.do(http.MethodPost, "/v1/auth/change-password", staffToken, map[string]string{"currentPassword": "staff123", "newPassword": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apiErrors.ErrWeakPassword, env.Code)

	rec, _ = srv.do(http.MethodPost, "/v1/auth/change-password", staffToken, map[string]string{"currentPassword": "staff123", "newPassword": "staff456"})
	assert.Equal(t, http.StatusOK, rec.Code)

	srv.login("staff1", "staff456")

	adminToken, _ := srv.login("admin", "admin123")
	rec, env = srv.do(http.MethodPost, "/v1/users", adminToken, map[string]string{"username": "staff2", "name": "직원2", "password": "staff222"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "staff", decode[map[string]any](t, env)["role"])

	rec, env = srv.do(http.MethodPost, "/v1/users", adminToken, map[string]string{"username": "staff2", "name": "직원2", "password": "staff222"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apiErrors.ErrUserAlreadyExists, env.Code)

	rec, _ = srv.do(http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_RequiresSecretKey(t *testing.T) {
	cfg := &config.Config{Auth: config.Auth{CookieName: "auth_token"}}

	server, err := api.New(cfg, nil, nil, nil, nil, handler.CronJobServices{})
	assert.Error(t, err)
	assert.Nil(t, server)
}
