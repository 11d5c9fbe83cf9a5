package auth

import (
	"net/http"
	"time"

	"github.com/commercive/dashboard-api/internal/utils"
)

const RefreshCookie = "rt"

type Handler struct {
	Svc          *Service
	CookieSecure bool
}

func NewHandler(svc *Service, cookieSecure bool) *Handler {
	return &Handler{Svc: svc, CookieSecure: cookieSecure}
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, raw string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    raw,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    "",
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (h *Handler) writeSession(w http.ResponseWriter, s *Session) {
	h.setRefreshCookie(w, s.RefreshToken, s.RefreshExpires)
	utils.JSON(w, http.StatusOK, TokenResponse{
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.Svc.Issuer.TTL().Seconds()),
		UserID:      s.UserID,
		Role:        s.Role,
	})
}

// POST /auth/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in SignupDTO
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	u, err := h.Svc.Signup(r.Context(), in)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, u)
}

// POST /auth/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var in TokenDTO
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Svc.Confirm(r.Context(), in.Token); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginDTO
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	s, err := h.Svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	h.writeSession(w, s)
}

// POST /auth/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var raw string
	if c, err := r.Cookie(RefreshCookie); err == nil {
		raw = c.Value
	}
	s, err := h.Svc.Refresh(r.Context(), raw)
	if err != nil {
		h.clearRefreshCookie(w)
		utils.WriteError(w, r, err)
		return
	}
	h.writeSession(w, s)
}

// POST /auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(RefreshCookie); err == nil {
		if err := h.Svc.Logout(r.Context(), c.Value); err != nil {
			utils.WriteError(w, r, err)
			return
		}
	}
	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// POST /auth/password/forgot
func (h *Handler) Forgot(w http.ResponseWriter, r *http.Request) {
	var in ForgotDTO
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Svc.Forgot(r.Context(), in.Email); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// POST /auth/password/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var in ResetDTO
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := h.Svc.Reset(r.Context(), in.Token, in.Password); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /auth/signup-request
func (h *Handler) RequestSignup(w http.ResponseWriter, r *http.Request) {
	var in SignupRequestDTO
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	req, err := h.Svc.RequestSignup(r.Context(), in)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusCreated, req)
}
