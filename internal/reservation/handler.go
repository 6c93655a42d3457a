package reservation

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/adisurya/campushub/internal"
	"github.com/adisurya/campushub/internal/room"
	"github.com/adisurya/campushub/internal/transport"
	"github.com/adisurya/campushub/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Reserve(ctx context.Context, username string, dto ReserveDTO) (*Reservation, error)
	Cancel(username string, reservationID int64) error
	Decide(ctx context.Context, requester string, dto DecideDTO) error
	GetMine(username string) ([]*Reservation, error)
	ListForRoom(requester string, roomID int64) ([]*Reservation, error)
	ListPending(requester string) ([]*Reservation, error)
	AvailableTimesByRoom(dto AvailabilityDTO) ([]Interval, error)
	AvailableRoomsByTime(dto AvailabilityDTO) ([]room.Ref, error)
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

func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	username, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ReserveDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Reserve: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.Service.Reserve(r.Context(), username, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Reserve: reservation created", "reservation_id", res.ID, "username", username)
	h.WriteJSON(w, http.StatusCreated, res)
}

// ListReservations serves three views: the caller's own by default,
// ?room_id= for one room (admin only) and ?status=pending for the approval
// queue (admin only).
func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	username, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var (
		out []*Reservation
		err error
	)
	switch {
	case r.URL.Query().Get("room_id") != "":
		var roomID int64
		roomID, err = strconv.ParseInt(r.URL.Query().Get("room_id"), 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid room id")
			return
		}
		out, err = h.Service.ListForRoom(username, roomID)
	case r.URL.Query().Get("status") == StatusPending:
		out, err = h.Service.ListPending(username)
	default:
		out, err = h.Service.GetMine(username)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"reservations": out})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	username, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	if err := h.Service.Cancel(username, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "reservation cancelled"})
}

func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	requester, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	var dto DecideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("Decide: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.ReservationID = id

	if err := h.Service.Decide(r.Context(), requester, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "reservation decided"})
}

func (h *Handler) AvailableTimes(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	dto := AvailabilityDTO{
		RoomID:    roomID,
		StartTime: r.URL.Query().Get("start"),
		EndTime:   r.URL.Query().Get("end"),
	}

	intervals, err := h.Service.AvailableTimesByRoom(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"available": intervals})
}

func (h *Handler) AvailableRooms(w http.ResponseWriter, r *http.Request) {
	dto := AvailabilityDTO{
		StartTime: r.URL.Query().Get("start"),
		EndTime:   r.URL.Query().Get("end"),
	}

	refs, err := h.Service.AvailableRoomsByTime(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"rooms": refs})
}
