package post

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
	CreatePost(username string, dto CreatePostDTO) (*Post, error)
	GetPosts(username string, dto ListPostsDTO) ([]*Post, error)
	GetPostDetails(username string, postID int64) (*PostDetails, error)
	Vote(username string, dto VoteDTO) (*Pull, error)
	ModifyPost(username string, dto ModifyPostDTO) error
	FollowPost(username string, postID int64) error
	UnfollowPost(username string, postID int64) error
	GetTimeline(username string, offset int) ([]*Post, error)
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

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	username, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreatePostDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreatePost: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.Service.CreatePost(username, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreatePost: post created", "post_id", p.ID, "username", username)
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	username, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	dto := ListPostsDTO{
		View:    q.Get("view"),
		Type:    q.Get("type"),
		TargetU: q.Get("username"),
	}
	if dto.View == "" {
		dto.View = ViewPublic
	}
	if raw := q.Get("group_id"); raw != "" {
		gid, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid group id")
			return
		}
		dto.TargetG = gid
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			h.WriteError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		dto.Offset = offset
	}

	posts, err := h.Service.GetPosts(username, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	username, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	details, err := h.Service.GetPostDetails(username, postID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, details)
}

func (h *Handler) Vote(w http.ResponseWriter, r *http.Request) {
	username, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var dto VoteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.PostID = postID

	pull, err := h.Service.Vote(username, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, pull)
}

func (h *Handler) ModifyPost(w http.ResponseWriter, r *http.Request) {
	username, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var dto ModifyPostDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ModifyPost: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.PostID = postID

	if err := h.Service.ModifyPost(username, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "post updated"})
}

func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	h.follow(w, r, true)
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.follow(w, r, false)
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request, follow bool) {
	username, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if follow {
		err = h.Service.FollowPost(username, postID)
	} else {
		err = h.Service.UnfollowPost(username, postID)
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "ok"})
}

func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	username, ok := internal.UsernameFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.WriteError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		offset = parsed
	}

	posts, err := h.Service.GetTimeline(username, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}
