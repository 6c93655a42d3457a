package group

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/transport"
	"github.com/adisurya/campushub/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListGroupsFor(requester, username string) ([]Ref, error)
	ListPublicGroups() ([]Ref, error)
	CreateGroup(requester string, dto CreateGroupDTO) (*Group, error)
	ModifyGroup(requester string, dto ModifyGroupDTO) error
	JoinPublicGroup(username string, groupID int64) (bool, error)
	LeaveGroup(username string, groupID int64) error
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

// ListGroups returns the caller's groups, or another user's when the
// ?username= query is set and the caller is privileged.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	requester, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	refs, err := h.Service.ListGroupsFor(requester, r.URL.Query().Get("username"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"groups": refs})
}

func (h *Handler) ListPublicGroups(w http.ResponseWriter, r *http.Request) {
	refs, err := h.Service.ListPublicGroups()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"groups": refs})
}

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	requester, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateGroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateGroup: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.Service.CreateGroup(requester, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateGroup: group created", "group_id", g.ID, "requester", requester)
	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{"id": g.ID, "name": g.Name})
}

func (h *Handler) ModifyGroup(w http.ResponseWriter, r *http.Request) {
	requester, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	var dto ModifyGroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ModifyGroup: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.GroupID = groupID

	if err := h.Service.ModifyGroup(requester, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "group updated"})
}

func (h *Handler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	username, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	alreadyMember, err := h.Service.JoinPublicGroup(username, groupID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if alreadyMember {
		h.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "already a member"})
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "joined group"})
}

func (h *Handler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	username, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	groupID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid group id")
		return
	}

	if err := h.Service.LeaveGroup(username, groupID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "left group"})
}
