package handler

import (
	"net/http"
	"time"

	"github.com/northpalm/sales-ledger-api/internal/config"
	"github.com/northpalm/sales-ledger-api/internal/usecases/authenticating"
	"github.com/northpalm/sales-ledger-api/pkg/apiErrors"
	"github.com/northpalm/sales-ledger-api/pkg/middleware"
	"github.com/northpalm/sales-ledger-api/pkg/utils"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Login autentica o usuário e grava o token também no cookie HttpOnly
func Login(service authenticating.Authenticator, authConfig config.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		result, err := service.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     authConfig.CookieName,
			Value:    result.Token,
			Path:     "/",
			Expires:  result.ExpiresAt,
			HttpOnly: true,
			Secure:   authConfig.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})

		utils.WriteSuccess(w, http.StatusOK, result, "Login realizado com sucesso")
	}
}

// Logout encerra a sessão do token atual e limpa o cookie
func Logout(service authenticating.Authenticator, authConfig config.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
			return
		}

		if err := service.Logout(r.Context(), claims.ID); err != nil {
			writeServiceError(w, r, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     authConfig.CookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   authConfig.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})

		utils.WriteSuccess(w, http.StatusOK, nil, "Logout realizado com sucesso")
	}
}

// GetMe retorna as informações do usuário logado
func GetMe(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromRequest(w, r)
		if !ok {
			return
		}

		user, err := service.GetUserProfile(r.Context(), actor.UserID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, user, "")
	}
}

func ChangePassword(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFromRequest(w, r)
		if !ok {
			return
		}

		var req ChangePasswordRequest
		if err := utils.DecodeJSON(r, &req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
			return
		}

		if err := service.ChangePassword(r.Context(), actor.UserID, req.CurrentPassword, req.NewPassword); err != nil {
			writeServiceError(w, r, err)
			return
		}

		utils.WriteSuccess(w, http.StatusOK, nil, "Senha alterada com sucesso")
	}
}
