package apiErrors

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// Erros de autenticação
	ErrInvalidCredentials    = "AUTH_001" // Credenciais inválidas
	ErrUserNotFound          = "AUTH_003" // Usuário não encontrado
	ErrUserAlreadyExists     = "AUTH_004" // Nome de usuário já cadastrado
	ErrInvalidToken          = "AUTH_006" // Token inválido ou ausente
	ErrExpiredToken          = "AUTH_007" // Token expirado ou sessão encerrada
	ErrInsufficientPrivilege = "AUTH_008" // Privilégios insuficientes
	ErrWrongPassword         = "AUTH_011" // Senha atual incorreta
	ErrWeakPassword          = "AUTH_012" // Nova senha não atende ao tamanho mínimo

	// Erros de validação
	ErrInvalidRequest      = "VAL_001" // Requisição inválida
	ErrMissingRequiredData = "VAL_002" // Dados obrigatórios ausentes
	ErrInvalidFormat       = "VAL_003" // Formato de dados inválido
	ErrOutOfRange          = "VAL_004" // Valor fora do intervalo permitido

	// Erros de lançamentos
	ErrSaleNotFound      = "SALE_001" // Lançamento não encontrado
	ErrSaleDuplicate     = "SALE_002" // Já existe lançamento para data e ponto de venda
	ErrSaleClosed        = "SALE_003" // Lançamento fechado não pode ser alterado
	ErrSaleAlreadyClosed = "SALE_004" // Lançamento já fechado
	ErrReasonRequired    = "SALE_005" // Motivo da reabertura ausente
	ErrSaleNotClosed     = "SALE_006" // Lançamento não está fechado
	ErrStoreNotFound     = "STORE_001" // Ponto de venda inexistente ou inativo

	// Erros de roteamento
	ErrRouteNotFound    = "ROUTE_001" // Rota inexistente
	ErrMethodNotAllowed = "ROUTE_002" // Método não suportado pela rota

	// Erros do servidor
	ErrInternalServer    = "SRV_001" // Erro interno do servidor
	ErrDatabaseOperation = "SRV_002" // Erro de operação de banco de dados
)

// Mapeamento de códigos de erro para status HTTP
var httpStatusMap = map[string]int{
	ErrInvalidCredentials:    http.StatusUnauthorized,
	ErrUserNotFound:          http.StatusNotFound,
	ErrUserAlreadyExists:     http.StatusConflict,
	ErrInvalidToken:          http.StatusUnauthorized,
	ErrExpiredToken:          http.StatusUnauthorized,
	ErrInsufficientPrivilege: http.StatusForbidden,
	ErrWrongPassword:         http.StatusBadRequest,
	ErrWeakPassword:          http.StatusBadRequest,
	ErrInvalidRequest:        http.StatusBadRequest,
	ErrMissingRequiredData:   http.StatusBadRequest,
	ErrInvalidFormat:         http.StatusBadRequest,
	ErrOutOfRange:            http.StatusBadRequest,
	ErrSaleNotFound:          http.StatusNotFound,
	ErrSaleDuplicate:         http.StatusConflict,
	ErrSaleClosed:            http.StatusForbidden,
	ErrSaleAlreadyClosed:     http.StatusConflict,
	ErrReasonRequired:        http.StatusBadRequest,
	ErrSaleNotClosed:         http.StatusConflict,
	ErrStoreNotFound:         http.StatusBadRequest,
	ErrRouteNotFound:         http.StatusNotFound,
	ErrMethodNotAllowed:      http.StatusMethodNotAllowed,
	ErrInternalServer:        http.StatusInternalServerError,
	ErrDatabaseOperation:     http.StatusInternalServerError,
}

// APIError é o envelope de falha: {success: false, error, code, details?}
type APIError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// StatusFor devolve o status HTTP de um código, 500 quando desconhecido
func StatusFor(code string) int {
	status, exists := httpStatusMap[code]
	if !exists {
		return http.StatusInternalServerError
	}
	return status
}

// WriteError escreve o erro padronizado para a resposta HTTP
func WriteError(w http.ResponseWriter, code string, message string, details any) {
	apiErr := APIError{
		Success: false,
		Error:   message,
		Code:    code,
		Details: details,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusFor(code))
	_ = json.NewEncoder(w).Encode(apiErr)
}
