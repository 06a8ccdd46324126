package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/larsfv/kokebok/internal/handler"
	"github.com/larsfv/kokebok/internal/menu"
	"github.com/larsfv/kokebok/internal/middleware"
	"github.com/larsfv/kokebok/internal/storage"
	"github.com/larsfv/kokebok/internal/store"
	ws "github.com/larsfv/kokebok/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	recipeH      *handler.RecipeHandler
	menuH        *handler.MenuHandler
	groceryH     *handler.GroceryHandler
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, images *storage.ImageStore, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	recipeStore := store.NewRecipeStore(db)
	menuStore := store.NewMenuStore(db)
	groceryStore := store.NewGroceryStore(db)
	memoryStore := store.NewItemMemoryStore(db)

	builder := menu.NewBuilder(menuStore, groceryStore, memoryStore, logger.With("component", "shopping_list"))

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		recipeH:      handler.NewRecipeHandler(recipeStore, images, hub, logger.With("component", "recipe")),
		menuH:        handler.NewMenuHandler(menuStore, builder, hub, logger.With("component", "menu")),
		groceryH:     handler.NewGroceryHandler(groceryStore, memoryStore, hub, logger.With("component", "grocery")),
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /logout", s.authH.Logout)

	// Recipe API routes
	mux.HandleFunc("POST /api/recipes", s.recipeH.Create)
	mux.HandleFunc("GET /api/recipes", s.recipeH.List)
	mux.HandleFunc("GET /api/recipes/{id}", s.recipeH.Get)
	mux.HandleFunc("PUT /api/recipes/{id}", s.recipeH.Update)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.recipeH.Delete)
	mux.HandleFunc("POST /api/recipes/{id}/image", s.recipeH.UploadImage)

	// Menu API routes
	mux.HandleFunc("POST /api/menus", s.menuH.Create)
	mux.HandleFunc("GET /api/menus", s.menuH.List)
	mux.HandleFunc("GET /api/menus/{id}", s.menuH.Get)
	mux.HandleFunc("PUT /api/menus/{id}", s.menuH.Update)
	mux.HandleFunc("DELETE /api/menus/{id}", s.menuH.Delete)
	mux.HandleFunc("POST /api/menus/{id}/recipes", s.menuH.AddRecipe)
	mux.HandleFunc("DELETE /api/menus/{id}/recipes/{recipeID}", s.menuH.RemoveRecipe)
	mux.HandleFunc("PUT /api/menus/{id}/courses/{course}/order", s.menuH.ReorderCourse)
	mux.HandleFunc("POST /api/menus/{id}/shopping-list", s.menuH.GenerateShoppingList)

	// Grocery API routes
	mux.HandleFunc("POST /api/grocery-lists", s.groceryH.CreateList)
	mux.HandleFunc("GET /api/grocery-lists", s.groceryH.ListLists)
	mux.HandleFunc("GET /api/grocery-lists/{id}", s.groceryH.GetList)
	mux.HandleFunc("PUT /api/grocery-lists/{id}", s.groceryH.RenameList)
	mux.HandleFunc("DELETE /api/grocery-lists/{id}", s.groceryH.DeleteList)
	mux.HandleFunc("POST /api/grocery-lists/{id}/items", s.groceryH.AddItem)
	mux.HandleFunc("PUT /api/grocery-lists/{id}/items/{itemID}", s.groceryH.UpdateItem)
	mux.HandleFunc("DELETE /api/grocery-lists/{id}/items/{itemID}", s.groceryH.DeleteItem)
	mux.HandleFunc("POST /api/grocery-lists/{id}/items/{itemID}/check", s.groceryH.ToggleItem)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
