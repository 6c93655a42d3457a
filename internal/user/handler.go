package user

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/transport"
	"github.com/adisurya/campushub/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Signup(dto SignupDTO) error
	ConfirmEmail(dto ConfirmEmailDTO) (*User, error)
	GetUser(requester, username string) (*Profile, error)
	UpdateBio(username string, dto UpdateBioDTO) error
	ModifyUser(requester string, dto ModifyUserDTO) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var dto SignupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Signup: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Signup(dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "confirmation email sent",
	})
}

// ConfirmEmail accepts the token either as JSON or as a ?token= query so
// the emailed link works directly.
func (h *Handler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	dto := ConfirmEmailDTO{Token: r.URL.Query().Get("token")}
	if dto.Token == "" {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "token is required")
			return
		}
	}

	u, err := h.Service.ConfirmEmail(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "account confirmed",
		"username": u.Username,
	})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	requester, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	username := chi.URLParam(r, "username")
	if username == "" {
		username = requester
	}

	profile, err := h.Service.GetUser(requester, username)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) UpdateBio(w http.ResponseWriter, r *http.Request) {
	username, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdateBioDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.UpdateBio(username, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "profile updated"})
}

func (h *Handler) ModifyUser(w http.ResponseWriter, r *http.Request) {
	requester, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ModifyUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ModifyUser: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.Username = chi.URLParam(r, "username")

	if err := h.Service.ModifyUser(requester, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "user updated"})
}
