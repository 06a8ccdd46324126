package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/larsfv/kokebok/internal/auth"
	"github.com/larsfv/kokebok/internal/model"
	"github.com/larsfv/kokebok/internal/storage"
	"github.com/larsfv/kokebok/internal/store"
	ws "github.com/larsfv/kokebok/internal/websocket"
)

const maxImageUploadBytes = 10 << 20

type RecipeHandler struct {
	recipes *store.RecipeStore
	images  *storage.ImageStore
	hub     *ws.Hub
	logger  *slog.Logger
}

func NewRecipeHandler(rs *store.RecipeStore, images *storage.ImageStore, hub *ws.Hub, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: rs, images: images, hub: hub, logger: logger}
}

type recipeRequest struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Ingredients  []model.Ingredient `json:"ingredients"`
	Instructions []string           `json:"instructions"`
	Tips         string             `json:"tips"`
	Notes        []model.Note       `json:"notes"`
	PrepTime     int                `json:"prep_time"`
	CookTime     int                `json:"cook_time"`
	Servings     int                `json:"servings"`
	Category     string             `json:"category"`
	ImageURL     string             `json:"image_url"`
}

func (req *recipeRequest) validate() string {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return "title is required"
	}
	if req.Servings < 1 {
		return "servings must be a positive number"
	}
	return ""
}

func (req *recipeRequest) toModel() model.Recipe {
	// Fresh notes arrive without identity; stamp them here.
	now := time.Now().UTC()
	var nextID int64
	for _, n := range req.Notes {
		if n.ID > nextID {
			nextID = n.ID
		}
	}
	for i := range req.Notes {
		if req.Notes[i].ID == 0 {
			nextID++
			req.Notes[i].ID = nextID
		}
		if req.Notes[i].CreatedAt.IsZero() {
			req.Notes[i].CreatedAt = now
		}
	}

	return model.Recipe{
		Title:        req.Title,
		Description:  req.Description,
		Ingredients:  req.Ingredients,
		Instructions: req.Instructions,
		Tips:         req.Tips,
		Notes:        req.Notes,
		PrepTime:     req.PrepTime,
		CookTime:     req.CookTime,
		Servings:     req.Servings,
		Category:     req.Category,
		ImageURL:     req.ImageURL,
	}
}

func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	recipe, err := h.recipes.Create(auth.UserID(r.Context()), req.toModel())
	if err != nil {
		h.logger.Error("create recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}

	h.hub.Broadcast(ws.NewMessage("recipe", "created", recipe.ID, nil))
	writeJSON(w, http.StatusCreated, recipe)
}

// List returns the user's recipes, newest first. With ?q= it searches
// title, description, and category instead.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var recipes []model.Recipe
	var err error
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		recipes, err = h.recipes.Search(userID, q)
	} else {
		recipes, err = h.recipes.List(userID)
	}
	if err != nil {
		h.logger.Error("list recipes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list recipes")
		return
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	recipe, err := h.recipes.GetByID(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("get recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID := auth.UserID(r.Context())

	existing, err := h.recipes.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	recipe, err := h.recipes.Update(userID, id, req.toModel())
	if err != nil {
		h.logger.Error("update recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update recipe")
		return
	}

	h.hub.Broadcast(ws.NewMessage("recipe", "updated", recipe.ID, nil))
	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID := auth.UserID(r.Context())

	recipe, err := h.recipes.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	if err := h.recipes.Delete(userID, id); err != nil {
		h.logger.Error("delete recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}

	// Best effort: the recipe row is already gone, a stray object in the
	// bucket is not worth failing the request over.
	if recipe.ImageURL != "" && h.images.Enabled() {
		if err := h.images.Delete(r.Context(), recipe.ImageURL); err != nil {
			h.logger.Warn("delete recipe image", "recipe_id", id, "error", err)
		}
	}

	h.hub.Broadcast(ws.NewMessage("recipe", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UploadImage stores a new image for the recipe and replaces any previous
// one.
func (h *RecipeHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID := auth.UserID(r.Context())

	if !h.images.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "image storage not configured")
		return
	}

	recipe, err := h.recipes.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	url, err := h.images.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.logger.Error("upload image", "recipe_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upload image")
		return
	}

	if recipe.ImageURL != "" {
		if err := h.images.Delete(r.Context(), recipe.ImageURL); err != nil {
			h.logger.Warn("delete replaced image", "recipe_id", id, "error", err)
		}
	}

	if err := h.recipes.SetImageURL(userID, id, url); err != nil {
		h.logger.Error("set image url", "recipe_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save image url")
		return
	}

	h.hub.Broadcast(ws.NewMessage("recipe", "updated", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"image_url": url})
}
