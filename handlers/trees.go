package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/umakantv/go-utils/cache"
	"go.uber.org/zap"

	"github.com/lagat24/greentrace/models"
	"github.com/lagat24/greentrace/store"
	"github.com/lagat24/greentrace/verify"
)

// TreeStore is the slice of the persistence layer the tree handlers call.
type TreeStore interface {
	Insert(ctx context.Context, tree models.Tree) error
	Mine(ctx context.Context, userID int) ([]models.Tree, error)
	DeleteOwned(ctx context.Context, id, userID int) error
}

// TreeHandler handles tree CRUD operations.
type TreeHandler struct {
	trees  TreeStore
	engine *verify.Engine
	cache  cache.Cache
}

// NewTreeHandler creates a tree handler.
func NewTreeHandler(trees TreeStore, engine *verify.Engine, cache cache.Cache) *TreeHandler {
	return &TreeHandler{trees: trees, engine: engine, cache: cache}
}

// Create handles POST /trees. A request carrying an inline photo payload is
// run through the verification engine first; only a verified photo produces
// a row. A photo_url-only request stores the record pending verification.
func (h *TreeHandler) Create(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated", "")
		return
	}

	var req models.CreateTreeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logRequest(ctx, "error", "Invalid tree body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Invalid JSON", "")
		return
	}

	if req.Species == "" || req.Latitude == 0 || req.Longitude == 0 {
		writeError(w, http.StatusBadRequest, "Missing fields", "")
		return
	}

	tree := models.Tree{
		UserID:    userID,
		Species:   req.Species,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if req.PhotoURL != "" {
		tree.PhotoURL = &req.PhotoURL
	}

	if req.Photo != "" {
		result, err := h.verifyPhoto(ctx, req.Photo)
		if err != nil {
			logRequest(ctx, "error", "Photo verification failed", zap.Error(err))
			writeError(w, http.StatusBadRequest, "Verification failed", "")
			return
		}
		if !result.Verified {
			logRequest(ctx, "info", "Photo rejected", zap.Float64("confidence", result.Confidence))
			writeError(w, http.StatusBadRequest, result.Message, "")
			return
		}
		tree.Verified = true
		tree.Confidence = result.Confidence
	}

	if err := h.trees.Insert(ctx, tree); err != nil {
		if errors.Is(err, store.ErrForeignKey) {
			writeError(w, http.StatusBadRequest, "Referenced record does not exist", "")
			return
		}
		logRequest(ctx, "error", "Failed to create tree", zap.Error(err), zap.Int("user_id", userID))
		writeError(w, http.StatusInternalServerError, "Server error", "")
		return
	}

	h.cache.Delete(leaderboardCacheKey)

	logRequest(ctx, "info", "Tree created", zap.Int("user_id", userID), zap.Bool("verified", tree.Verified))
	writeJSON(w, http.StatusOK, models.OKResponse{OK: true})
}

// verifyPhoto decodes the base64 payload (with or without a data-URL prefix)
// and runs it through the engine.
func (h *TreeHandler) verifyPhoto(ctx context.Context, payload string) (verify.Result, error) {
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return verify.Result{}, err
	}
	return h.engine.Verify(ctx, bytes.NewReader(raw))
}

// Mine handles GET /trees/mine, newest planting first.
func (h *TreeHandler) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated", "")
		return
	}

	trees, err := h.trees.Mine(ctx, userID)
	if err != nil {
		logRequest(ctx, "error", "Failed to query trees", zap.Error(err), zap.Int("user_id", userID))
		writeError(w, http.StatusInternalServerError, "Server error", "")
		return
	}

	logRequest(ctx, "info", "Trees retrieved", zap.Int("user_id", userID), zap.Int("count", len(trees)))
	writeJSON(w, http.StatusOK, models.TreesResponse{Trees: trees})
}

// Delete handles DELETE /trees/{id}. Only the owner may delete; a non-owner
// gets 403 without learning whether the tree exists.
func (h *TreeHandler) Delete(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated", "")
		return
	}

	idStr := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idStr)
	if err != nil {
		logRequest(ctx, "error", "Invalid tree ID", zap.String("id", idStr))
		writeError(w, http.StatusBadRequest, "Invalid tree ID", "")
		return
	}

	if err := h.trees.DeleteOwned(ctx, id, userID); err != nil {
		if errors.Is(err, store.ErrNotOwner) {
			logRequest(ctx, "info", "Delete refused", zap.Int("tree_id", id), zap.Int("user_id", userID))
			writeError(w, http.StatusForbidden, "Not allowed", "")
			return
		}
		logRequest(ctx, "error", "Failed to delete tree", zap.Error(err), zap.Int("tree_id", id))
		writeError(w, http.StatusInternalServerError, "Server error", "")
		return
	}

	h.cache.Delete(leaderboardCacheKey)

	logRequest(ctx, "info", "Tree deleted", zap.Int("tree_id", id), zap.Int("user_id", userID))
	writeJSON(w, http.StatusOK, models.OKResponse{OK: true})
}
