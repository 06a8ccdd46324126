package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/larsfv/kokebok/internal/auth"
	"github.com/larsfv/kokebok/internal/grocery"
	"github.com/larsfv/kokebok/internal/model"
	"github.com/larsfv/kokebok/internal/store"
	ws "github.com/larsfv/kokebok/internal/websocket"
)

type GroceryHandler struct {
	lists  *store.GroceryStore
	memory *store.ItemMemoryStore
	hub    *ws.Hub
	logger *slog.Logger
}

func NewGroceryHandler(gs *store.GroceryStore, ms *store.ItemMemoryStore, hub *ws.Hub, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{lists: gs, memory: ms, hub: hub, logger: logger}
}

type listRequest struct {
	Name string `json:"name"`
}

func (h *GroceryHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	list, err := h.lists.CreateList(auth.UserID(r.Context()), req.Name)
	if err != nil {
		h.logger.Error("create list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create list")
		return
	}

	h.hub.Broadcast(ws.NewMessage("grocery_list", "created", list.ID, nil))
	writeJSON(w, http.StatusCreated, list)
}

func (h *GroceryHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.lists.ListLists(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("list lists", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list grocery lists")
		return
	}
	if lists == nil {
		lists = []model.GroceryList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *GroceryHandler) GetList(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	list, err := h.lists.GetListByID(auth.UserID(r.Context()), id)
	if err != nil {
		h.logger.Error("get list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get list")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *GroceryHandler) RenameList(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID := auth.UserID(r.Context())

	existing, err := h.lists.GetListByID(userID, id)
	if err != nil {
		h.logger.Error("get list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get list")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}

	var req listRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	list, err := h.lists.RenameList(userID, id, req.Name)
	if err != nil {
		h.logger.Error("rename list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to rename list")
		return
	}

	h.hub.Broadcast(ws.NewMessage("grocery_list", "updated", id, nil))
	writeJSON(w, http.StatusOK, list)
}

func (h *GroceryHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID := auth.UserID(r.Context())

	existing, err := h.lists.GetListByID(userID, id)
	if err != nil {
		h.logger.Error("get list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get list")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}

	if err := h.lists.DeleteList(userID, id); err != nil {
		h.logger.Error("delete list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete list")
		return
	}

	h.hub.Broadcast(ws.NewMessage("grocery_list", "deleted", id, nil))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type itemRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	Checked  bool   `json:"checked"`
}

// AddItem creates a single item on the list. This is the path where the
// category memory learns: an explicit category is remembered for the item
// name, otherwise the remembered or default category is applied.
func (h *GroceryHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	userID := auth.UserID(r.Context())

	list, err := h.lists.GetListByID(userID, listID)
	if err != nil {
		h.logger.Error("get list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get list")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "list not found")
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	memory, err := h.memory.GetAll(userID)
	if err != nil {
		h.logger.Error("load item memory", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	category := grocery.Resolve(req.Name, req.Category, memory)

	item, err := h.lists.CreateItem(listID, req.Name, category, req.Quantity)
	if err != nil {
		h.logger.Error("create item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	if req.Category != "" && req.Category != grocery.DefaultCategory {
		if err := h.memory.Save(userID, req.Name, req.Category); err != nil {
			h.logger.Warn("save item memory", "item", req.Name, "error", err)
		}
	}

	h.hub.Broadcast(ws.NewMessage("grocery_item", "created", item.ID, map[string]any{"list_id": listID}))
	writeJSON(w, http.StatusCreated, item)
}

func (h *GroceryHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	itemID, err := parsePathID(r, "itemID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	userID := auth.UserID(r.Context())

	if !h.requireList(w, userID, listID) {
		return
	}

	existing, err := h.lists.GetItemByID(listID, itemID)
	if err != nil {
		h.logger.Error("get item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Category == "" {
		req.Category = existing.Category
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	item, err := h.lists.UpdateItem(listID, itemID, req.Name, req.Category, req.Quantity, req.Checked)
	if err != nil {
		h.logger.Error("update item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	h.hub.Broadcast(ws.NewMessage("grocery_item", "updated", itemID, map[string]any{"list_id": listID}))
	writeJSON(w, http.StatusOK, item)
}

func (h *GroceryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	itemID, err := parsePathID(r, "itemID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	userID := auth.UserID(r.Context())

	if !h.requireList(w, userID, listID) {
		return
	}

	existing, err := h.lists.GetItemByID(listID, itemID)
	if err != nil {
		h.logger.Error("get item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := h.lists.DeleteItem(listID, itemID); err != nil {
		h.logger.Error("delete item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.hub.Broadcast(ws.NewMessage("grocery_item", "deleted", itemID, map[string]any{"list_id": listID}))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *GroceryHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	listID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	itemID, err := parsePathID(r, "itemID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	userID := auth.UserID(r.Context())

	if !h.requireList(w, userID, listID) {
		return
	}

	item, err := h.lists.ToggleChecked(listID, itemID)
	if err != nil {
		h.logger.Error("toggle item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to toggle item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.hub.Broadcast(ws.NewMessage("grocery_item", "updated", itemID, map[string]any{"list_id": listID}))
	writeJSON(w, http.StatusOK, item)
}

// requireList verifies list ownership before item operations, writing the
// error response itself when the check fails.
func (h *GroceryHandler) requireList(w http.ResponseWriter, userID, listID int64) bool {
	list, err := h.lists.GetListByID(userID, listID)
	if err != nil {
		h.logger.Error("get list", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get list")
		return false
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "list not found")
		return false
	}
	return true
}
