package room

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
	CreateRoom(requester string, dto CreateRoomDTO) (*Room, error)
	ModifyRoom(requester string, dto ModifyRoomDTO) (*Room, error)
	RetireRoom(requester string, roomID int64) error
	GetRooms(requester string) (interface{}, error)
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

func (h *Handler) GetRooms(w http.ResponseWriter, r *http.Request) {
	requester, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rooms, err := h.Service.GetRooms(requester)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"rooms": rooms})
}

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	requester, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateRoomDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRoom: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rm, err := h.Service.CreateRoom(requester, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateRoom: room created", "room_id", rm.ID, "requester", requester)
	h.WriteJSON(w, http.StatusCreated, rm)
}

func (h *Handler) ModifyRoom(w http.ResponseWriter, r *http.Request) {
	requester, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	roomID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	var dto ModifyRoomDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ModifyRoom: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.RoomID = roomID

	rm, err := h.Service.ModifyRoom(requester, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rm)
}

func (h *Handler) RetireRoom(w http.ResponseWriter, r *http.Request) {
	requester, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	roomID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	if err := h.Service.RetireRoom(requester, roomID); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "room retired"})
}
