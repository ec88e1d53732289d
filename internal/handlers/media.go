package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mingle-social/apiserver/internal/services"
	"github.com/mingle-social/apiserver/internal/storage"
)

const (
	maxUploadBytes   = 10 << 20
	formFieldPicture = "picture"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// MediaHandler stores and serves avatar and post images through the
// configured object-storage backend.
type MediaHandler struct {
	storage     *storage.Storage
	userService *services.UserService
	postService *services.PostService
}

func NewMediaHandler(st *storage.Storage, userService *services.UserService, postService *services.PostService) *MediaHandler {
	return &MediaHandler{
		storage:     st,
		userService: userService,
		postService: postService,
	}
}

// MediaRouter registers the public media serving route. The upload
// routes live under /users and /posts and are registered there.
func MediaRouter(r chi.Router, handler *MediaHandler) {
	r.Get("/media/{key}", handler.Serve)
}

// UploadAvatar stores a new avatar image and attaches it to the
// authenticated account.
func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	key, ok := h.storeUpload(w, r, "avatar")
	if !ok {
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, services.ProfileUpdate{Avatar: &key})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UploadPostImage stores an image and attaches it to a post the
// authenticated user owns.
func (h *MediaHandler) UploadPostImage(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	postID, ok := postIDParam(w, r)
	if !ok {
		return
	}

	key, ok := h.storeUpload(w, r, "picture")
	if !ok {
		return
	}

	post, err := h.postService.Update(r.Context(), userID, postID, nil, &key)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// Serve streams a stored image back to the client.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "media storage disabled")
		return
	}

	key := chi.URLParam(r, "key")
	if key == "" || strings.Contains(key, "/") || strings.Contains(key, "..") {
		writeError(w, http.StatusBadRequest, "invalid media key")
		return
	}

	object, err := h.storage.Get(r.Context(), key)
	if err != nil {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}
	defer object.Close()

	_, _ = io.Copy(w, object)
}

// storeUpload reads the multipart picture field, validates its type and
// writes it to object storage under a random key.
func (h *MediaHandler) storeUpload(w http.ResponseWriter, r *http.Request, prefix string) (string, bool) {
	if h.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "media storage disabled")
		return "", false
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return "", false
	}

	file, header, err := r.FormFile(formFieldPicture)
	if err != nil {
		writeError(w, http.StatusBadRequest, "picture file is required")
		return "", false
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		writeError(w, http.StatusBadRequest, "picture too large")
		return "", false
	}

	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		// Fall back to the filename extension when the part carries no
		// usable content type.
		ext = strings.ToLower(path.Ext(header.Filename))
		contentType = ""
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".gif" && ext != ".webp" {
			writeError(w, http.StatusBadRequest, "unsupported image type")
			return "", false
		}
	}

	key := fmt.Sprintf("%s-%s%s", prefix, randomKey(), ext)
	if err := h.storage.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store picture")
		return "", false
	}
	return key, true
}

func randomKey() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "unkeyed"
	}
	return hex.EncodeToString(buf[:])
}
