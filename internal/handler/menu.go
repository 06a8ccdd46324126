package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/larsfv/kokebok/internal/auth"
	"github.com/larsfv/kokebok/internal/menu"
	"github.com/larsfv/kokebok/internal/model"
	"github.com/larsfv/kokebok/internal/store"
	ws "github.com/larsfv/kokebok/internal/websocket"
)

type MenuHandler struct {
	menus   *store.MenuStore
	builder *menu.Builder
	hub     *ws.Hub
	logger  *slog.Logger
}

func NewMenuHandler(ms *store.MenuStore, builder *menu.Builder, hub *ws.Hub, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{menus: ms, builder: builder, hub: hub, logger: logger}
}

type menuRequest struct {
	Name     string `json:"name"`
	Servings int    `json:"servings"`
}

func (req *menuRequest) validate() string {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return "name is required"
	}
	if req.Servings < 1 {
		return "servings must be a positive number"
	}
	return ""
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req menuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	m, err := h.menus.Create(auth.UserID(r.Context()), req.Name, req.Servings)
	if err != nil {
		h.logger.Error("create menu", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create menu")
		return
	}

	h.hub.Broadcast(ws.NewMessage("menu", "created", m.ID, nil))
	writeJSON(w, http.StatusCreated, m)
}

func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	menus, err := h.menus.List(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list menus", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list menus")
		return
	}
	if menus == nil {
		menus = []model.Menu{}
	}
	writeJSON(w, http.StatusOK, menus)
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	m, err := h.menus.GetByID(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("get menu", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get menu")
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "menu not found")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID := auth.UserID(r.Context())

	existing, err := h.menus.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get menu", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get menu")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "menu not found")
		return
	}

	var req menuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	m, err := h.menus.Update(userID, id, req.Name, req.Servings)
	if err != nil {
		h.logger.Error("update menu", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update menu")
		return
	}

	h.hub.Broadcast(ws.NewMessage("menu", "updated", m.ID, nil))
	writeJSON(w, http.StatusOK, m)
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID := auth.UserID(r.Context())

	existing, err := h.menus.GetByID(userID, id)
	if err != nil {
		h.logger.Error("get menu", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get menu")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "menu not found")
		return
	}

	if err := h.menus.Delete(userID, id); err != nil {
		h.logger.Error("delete menu", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete menu")
		return
	}

	h.hub.Broadcast(ws.NewMessage("menu", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type addRecipeRequest struct {
	RecipeID   int64            `json:"recipe_id"`
	CourseType model.CourseType `json:"course_type"`
}

func (h *MenuHandler) AddRecipe(w http.ResponseWriter, r *http.Request) {
	menuID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req addRecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.RecipeID == 0 {
		writeError(w, http.StatusBadRequest, "recipe_id is required")
		return
	}
	if !model.ValidCourseType(req.CourseType) {
		writeError(w, http.StatusBadRequest, "course_type must be starter, main, or dessert")
		return
	}

	mr, err := h.menus.AddRecipe(auth.UserID(r.Context()), menuID, req.RecipeID, req.CourseType)
	if err != nil {
		h.logger.Error("add menu recipe", "menu_id", menuID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add recipe")
		return
	}
	if mr == nil {
		writeError(w, http.StatusNotFound, "menu not found")
		return
	}

	h.hub.Broadcast(ws.NewMessage("menu", "updated", menuID, nil))
	writeJSON(w, http.StatusCreated, mr)
}

func (h *MenuHandler) RemoveRecipe(w http.ResponseWriter, r *http.Request) {
	menuID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	menuRecipeID, err := parsePathID(r, "recipeID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipe id")
		return
	}

	removed, err := h.menus.RemoveRecipe(auth.UserID(r.Context()), menuID, menuRecipeID)
	if err != nil {
		h.logger.Error("remove menu recipe", "menu_id", menuID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove recipe")
		return
	}
	if !removed {
		writeError(w, http.StatusNotFound, "menu recipe not found")
		return
	}

	h.hub.Broadcast(ws.NewMessage("menu", "updated", menuID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

type reorderRequest struct {
	OrderedIDs []int64 `json:"ordered_ids"`
}

func (h *MenuHandler) ReorderCourse(w http.ResponseWriter, r *http.Request) {
	menuID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	course := model.CourseType(r.PathValue("course"))
	if !model.ValidCourseType(course) {
		writeError(w, http.StatusBadRequest, "course must be starter, main, or dessert")
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	userID := auth.UserID(r.Context())
	if err := h.menus.ReorderCourse(userID, menuID, course, req.OrderedIDs); err != nil {
		h.logger.Error("reorder course", "menu_id", menuID, "error", err)
		writeError(w, http.StatusBadRequest, "invalid reorder request")
		return
	}

	m, err := h.menus.GetByID(userID, menuID)
	if err != nil {
		h.logger.Error("get menu", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get menu")
		return
	}

	h.hub.Broadcast(ws.NewMessage("menu", "updated", menuID, nil))
	writeJSON(w, http.StatusOK, m)
}

type generateListRequest struct {
	Name string `json:"name"`
}

type generateListResponse struct {
	List  *model.GroceryList  `json:"list"`
	Items []model.GroceryItem `json:"items"`
}

// GenerateShoppingList builds a grocery list from the menu's aggregated
// ingredients.
func (h *MenuHandler) GenerateShoppingList(w http.ResponseWriter, r *http.Request) {
	menuID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req generateListRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	list, items, err := h.builder.Generate(auth.UserID(r.Context()), menuID, strings.TrimSpace(req.Name))
	switch {
	case errors.Is(err, menu.ErrMenuNotFound):
		writeError(w, http.StatusNotFound, "menu not found")
		return
	case errors.Is(err, menu.ErrNoRecipes):
		writeError(w, http.StatusBadRequest, "menu has no recipes")
		return
	case err != nil:
		h.logger.Error("generate shopping list", "menu_id", menuID, "error", err)
		// A partial list may exist; clients see it via the grocery endpoints.
		writeError(w, http.StatusInternalServerError, "failed to generate shopping list")
		return
	}

	h.hub.Broadcast(ws.NewMessage("grocery_list", "generated", list.ID, map[string]any{"menu_id": menuID}))
	writeJSON(w, http.StatusCreated, generateListResponse{List: list, Items: items})
}
