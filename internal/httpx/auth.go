package httpx

import (
	"net/http"

	"procurement-be/internal/access"
	"procurement-be/internal/auth"
	"procurement-be/internal/user"
	"procurement-be/internal/utils"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Type     string `json:"type"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string        `json:"token"`
	User  user.UserView `json:"user"`
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, u, err := h.Users.Register(r.Context(), user.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Role:     access.Role(req.Type),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setTokenCookie(w, r, token)
	utils.WriteJSON(w, http.StatusCreated, authResponse{Token: token, User: user.MapUser(u)})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if _, err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, u, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.setTokenCookie(w, r, token)
	utils.WriteJSON(w, http.StatusOK, authResponse{Token: token, User: user.MapUser(u)})
}
