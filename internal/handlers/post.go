package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mingle-social/apiserver/internal/events"
	"github.com/mingle-social/apiserver/internal/services"
	"github.com/mingle-social/apiserver/types"
)

const maxPostTextLen = 10000

// PostHandler provides HTTP handlers for posts and reactions.
type PostHandler struct {
	postService    *services.PostService
	reactionEngine *services.ReactionEngine
	publisher      *events.Publisher
}

// NewPostHandler constructs a handler with the provided dependencies.
func NewPostHandler(postService *services.PostService, reactionEngine *services.ReactionEngine, publisher *events.Publisher) *PostHandler {
	return &PostHandler{
		postService:    postService,
		reactionEngine: reactionEngine,
		publisher:      publisher,
	}
}

// PostRouter registers post and reaction routes on the given router.
func PostRouter(r chi.Router, handler *PostHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Get("/", handler.ListPosts)
	r.Get("/{id}", handler.GetPost)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/me", handler.ListMyPosts)
		r.Post("/", handler.CreatePost)
		r.Put("/{id}", handler.UpdatePost)
		r.Delete("/{id}", handler.DeletePost)
		r.Get("/{id}/reaction", handler.GetReaction)
		r.Put("/{id}/reaction", handler.SetReaction)
		r.Delete("/{id}/reaction", handler.ClearReaction)
	})
}

// ListPosts returns a page of posts, newest first.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	posts, total, err := h.postService.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"posts": posts,
		"total": total,
	})
}

// ListMyPosts returns the authenticated user's posts.
func (h *PostHandler) ListMyPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	posts, err := h.postService.ListByOwner(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

// GetPost returns a single post by id.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	post, err := h.postService.Get(r.Context(), postID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

type postRequest struct {
	Text string `json:"text"`
}

// CreatePost creates a post owned by the authenticated user.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(req.Text) > maxPostTextLen {
		writeError(w, http.StatusBadRequest, "text too long")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, req.Text, "")
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.publisher.PostCreated(r.Context(), userID, post.ID)

	writeJSON(w, http.StatusCreated, post)
}

// UpdatePost rewrites the body of a post the authenticated user owns.
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(req.Text) > maxPostTextLen {
		writeError(w, http.StatusBadRequest, "text too long")
		return
	}

	post, err := h.postService.Update(r.Context(), userID, postID, &req.Text, nil)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// DeletePost removes a post the authenticated user owns.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	if err := h.postService.Delete(r.Context(), userID, postID); err != nil {
		writeServiceError(w, err)
		return
	}

	h.publisher.PostDeleted(r.Context(), userID, postID)

	w.WriteHeader(http.StatusNoContent)
}

type reactionRequest struct {
	Kind types.ReactionKind `json:"kind"`
}

// SetReaction puts the authenticated user's like or dislike on a post
// and returns the updated counters.
func (h *PostHandler) SetReaction(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if !req.Kind.Valid() {
		writeError(w, http.StatusBadRequest, "kind must be like or dislike")
		return
	}

	counts, err := h.reactionEngine.SetReaction(r.Context(), userID, postID, req.Kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, counts)
}

// ClearReaction retracts the authenticated user's reaction on a post,
// if any, and returns the updated counters.
func (h *PostHandler) ClearReaction(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	counts, err := h.reactionEngine.ClearReaction(r.Context(), userID, postID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, counts)
}

// GetReaction returns the authenticated user's reaction on a post.
func (h *PostHandler) GetReaction(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	reaction, found, err := h.reactionEngine.GetReaction(r.Context(), userID, postID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "no reaction")
		return
	}

	writeJSON(w, http.StatusOK, reaction)
}

func postIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	postID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || postID < 1 {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return 0, false
	}
	return postID, true
}
