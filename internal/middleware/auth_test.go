package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/larsfv/kokebok/internal/auth"
	"github.com/larsfv/kokebok/internal/database"
	"github.com/larsfv/kokebok/internal/store"
)

func setupAuthTest(t *testing.T) (*store.SessionStore, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	u, err := store.NewUserStore(db).Create("alice@example.com", "Alice", "h")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return store.NewSessionStore(db), u.ID
}

func TestRequireAuthNoCookie(t *testing.T) {
	ss, _ := setupAuthTest(t)

	handler := RequireAuth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run without a session")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/recipes", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	ss, _ := setupAuthTest(t)

	handler := RequireAuth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run with a bogus token")
	}))

	req := httptest.NewRequest("GET", "/api/recipes", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "bogus"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthValidSession(t *testing.T) {
	ss, userID := setupAuthTest(t)

	sess, err := ss.Create(userID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	var gotUserID int64
	handler := RequireAuth(ss)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/recipes", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sess.Token})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != userID {
		t.Errorf("user id = %d, want %d", gotUserID, userID)
	}
}
