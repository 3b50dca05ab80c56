package handler

import (
	"net/http"

	"github.com/northpalm/sales-ledger-api/internal/domain"
	"github.com/northpalm/sales-ledger-api/internal/usecases/authenticating"
	"github.com/northpalm/sales-ledger-api/pkg/apiErrors"
	"github.com/northpalm/sales-ledger-api/pkg/log"
	"github.com/northpalm/sales-ledger-api/pkg/utils"
)

type CreateUserRequest struct {
	Username string      `json:"username"`
	Name     string      `json:"name"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// CreateUser cadastra um novo usuário. Sem papel informado, cria como staff.
func CreateUser(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateUserRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Erro ao decodificar requisição", nil)
			return
		}

		if req.Role == "" {
			req.Role = domain.RoleStaff
		}

		user, err := service.CreateUser(r.Context(), req.Username, req.Name, req.Password, req.Role)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		log.ForContext(r.Context()).WithField("user_id", user.ID).Infof("Usuário %s criado", user.Username)

		utils.WriteSuccess(w, http.StatusCreated, user, "Usuário criado com sucesso")
	}
}
