package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AntonioSTO/water-tracking-app/internal/auth"
	dom "github.com/AntonioSTO/water-tracking-app/internal/domain"
	"github.com/AntonioSTO/water-tracking-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore backs the in-memory repos. A user and its ledger are
// created together, like the real transactional insert.
type memStore struct {
	users   map[string]dom.User
	byID    map[int64]dom.User
	ledgers map[int64]dom.Ledger
	nextID  int64
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]dom.User{},
		byID:    map[int64]dom.User{},
		ledgers: map[int64]dom.Ledger{},
	}
}

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	u, ok := r.s.users[email]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	u, ok := r.s.byID[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *memUserRepo) Create(ctx context.Context, email, passwordHash string) (dom.User, error) {
	if _, ok := r.s.users[email]; ok {
		return dom.User{}, &pgconn.PgError{Code: "23505"}
	}
	r.s.nextID++
	u := dom.User{ID: r.s.nextID, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now()}
	r.s.users[email] = u
	r.s.byID[u.ID] = u
	r.s.ledgers[u.ID] = dom.Ledger{UserID: u.ID, Goal: 2000}
	return u, nil
}

type memWaterRepo struct{ s *memStore }

func (r *memWaterRepo) GetByUser(ctx context.Context, userID int64) (dom.Ledger, error) {
	l, ok := r.s.ledgers[userID]
	if !ok {
		return dom.Ledger{}, pgx.ErrNoRows
	}
	return l, nil
}

func (r *memWaterRepo) Update(ctx context.Context, led dom.Ledger) (dom.Ledger, error) {
	if _, ok := r.s.ledgers[led.UserID]; !ok {
		return dom.Ledger{}, pgx.ErrNoRows
	}
	r.s.ledgers[led.UserID] = led
	return led, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	userRepo := &memUserRepo{s: store}
	userSvc := service.NewUserService(userRepo)
	waterSvc := service.NewWaterService(userRepo, &memWaterRepo{s: store}, nil)

	r := gin.New()
	authHandler := NewAuthHandler(tokens, userSvc)
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	waterHandler := NewWaterHandler(waterSvc)
	protected := r.Group("/api", auth.RequireToken(tokens))
	protected.GET("/data", waterHandler.GetData)
	protected.POST("/data", waterHandler.UpdateData)
	protected.GET("/statistics", waterHandler.Statistics)

	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad JSON body %q: %v", w.Body.String(), err)
	}
	return out
}

func TestRegisterLoginAndTrackFlow(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{"email": "a@x.com", "password": "secret"})
	if w.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/login", "", gin.H{"email": "a@x.com", "password": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	token, _ := decode(t, w)["access_token"].(string)
	if token == "" {
		t.Fatalf("login: missing access_token in %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/data", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get data: expected 200, got %d", w.Code)
	}
	data := decode(t, w)
	if data["consumed"].(float64) != 0 || data["goal"].(float64) != 2000 ||
		data["streak"].(float64) != 0 || data["best_streak"].(float64) != 0 {
		t.Fatalf("unexpected fresh ledger: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodPost, "/api/data", token, gin.H{"consumed": 2000})
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	updated := decode(t, w)
	if updated["streak"].(float64) != 1 || updated["best_streak"].(float64) != 1 {
		t.Fatalf("expected streak 1/1 after reaching goal, got %s", w.Body.String())
	}

	// Same day, still over the goal: streak must not move again.
	w = doJSON(t, r, http.MethodPost, "/api/data", token, gin.H{"consumed": 2500})
	if w.Code != http.StatusOK {
		t.Fatalf("second update: expected 200, got %d", w.Code)
	}
	updated = decode(t, w)
	if updated["streak"].(float64) != 1 {
		t.Fatalf("expected streak to stay 1 on same-day update, got %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/api/statistics", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("statistics: expected 200, got %d", w.Code)
	}
	stats := decode(t, w)
	if stats["days_since_registration"].(float64) != 1 {
		t.Fatalf("expected 1 day since registration, got %s", w.Body.String())
	}
	if stats["lifetime_consumed"].(float64) != 2500 {
		t.Fatalf("expected lifetime 2500, got %s", w.Body.String())
	}
	if stats["average_daily_consumption"].(float64) != 2500 {
		t.Fatalf("expected average 2500 over one day, got %s", w.Body.String())
	}
	if stats["current_goal"].(float64) != 2000 {
		t.Fatalf("expected current goal 2000, got %s", w.Body.String())
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	r, store := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{"email": "a@x.com", "password": "secret"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/register", "", gin.H{"email": "a@x.com", "password": "other"})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if len(store.users) != 1 || len(store.ledgers) != 1 {
		t.Fatalf("expected one user and one ledger, got %d/%d", len(store.users), len(store.ledgers))
	}
}

func TestLogin_UniformFailure(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{"email": "a@x.com", "password": "secret"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	wrongPass := doJSON(t, r, http.MethodPost, "/login", "", gin.H{"email": "a@x.com", "password": "nope"})
	unknown := doJSON(t, r, http.MethodPost, "/login", "", gin.H{"email": "b@x.com", "password": "secret"})

	if wrongPass.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPass.Code, unknown.Code)
	}
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", wrongPass.Body.String(), unknown.Body.String())
	}
}

func TestLogin_MissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/login", "", gin.H{"email": "a@x.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/login", "", gin.H{"password": "secret"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing email, got %d", w.Code)
	}
}

func TestProtectedRoutes_RejectMissingToken(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/data"},
		{http.MethodPost, "/api/data"},
		{http.MethodGet, "/api/statistics"},
	} {
		w := doJSON(t, r, route.method, route.path, "", gin.H{})
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, w.Code)
		}
	}
}

func TestUpdateData_GoalOnly(t *testing.T) {
	r, store := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/register", "", gin.H{"email": "a@x.com", "password": "secret"})
	w := doJSON(t, r, http.MethodPost, "/login", "", gin.H{"email": "a@x.com", "password": "secret"})
	token, _ := decode(t, w)["access_token"].(string)

	w = doJSON(t, r, http.MethodPost, "/api/data", token, gin.H{"goal": 1500})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	led := store.ledgers[1]
	if led.Goal != 1500 {
		t.Fatalf("expected goal 1500, got %d", led.Goal)
	}
	if led.Consumed != 0 || led.Streak != 0 {
		t.Fatalf("goal-only update must not touch consumed/streak, got %+v", led)
	}
}
