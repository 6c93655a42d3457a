package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/transport"
	"github.com/adisurya/campushub/pkg/logger"
)

const SessionCookieName = "session_id"

type Handler struct {
	*transport.BaseHandler
	Service       *Service
	CookieTTL     time.Duration
	SecureCookies bool
}

func NewHandler(service *Service, cookieTTL time.Duration, secureCookies bool) *Handler {
	return &Handler{
		BaseHandler:   transport.NewBaseHandler(logger.L()),
		Service:       service,
		CookieTTL:     cookieTTL,
		SecureCookies: secureCookies,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		MaxAge:   int(h.CookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "login successful"})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err == nil {
		if err := h.Service.Logout(r.Context(), cookie.Value); err != nil {
			h.Logger.Error("logout failed", "error", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Middleware resolves the session cookie into a request-scoped username.
// Everything behind it can rely on internal.UsernameFromContext.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			h.HandleServiceError(w, internal.ErrUnauthenticated)
			return
		}

		username, err := h.Service.Resolve(r.Context(), cookie.Value)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		ctx := internal.ContextWithUsername(r.Context(), username)
		ctx = logger.With(ctx, "username", username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
