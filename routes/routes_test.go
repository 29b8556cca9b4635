package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bookminder/app"
	"bookminder/config"
	"bookminder/memstore"
	"bookminder/models"
	"bookminder/routes"
	"bookminder/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memRevocations struct {
	mu   sync.Mutex
	jtis map[string]time.Time
	err  error
}

func (m *memRevocations) Revoke(ctx context.Context, jti string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jtis == nil {
		m.jtis = map[string]time.Time{}
	}
	m.jtis[jti] = until
	return nil
}

func (m *memRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.jtis[jti]
	return ok, nil
}

type harness struct {
	t *testing.T
	a *app.App
}

func newHarness(t *testing.T, revocations app.RevocationList) *harness {
	t.Helper()
	st := memstore.New()
	cfg := config.Config{JWTSecret: "test-secret", TokenTTL: time.Hour, GinMode: gin.TestMode}
	a := app.NewWithStores(cfg, zap.NewNop(), st, st)
	a.Revocations = revocations
	routes.RegisterRoutes(a)
	return &harness{t: t, a: a}
}

func (h *harness) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.a.Router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (h *harness) login(email string) *http.Cookie {
	h.t.Helper()
	w := h.do(http.MethodPost, "/api/v1/jwt", gin.H{"email": email})
	require.Equal(h.t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	h.t.Fatalf("no %s cookie in response", session.CookieName)
	return nil
}

func (h *harness) addBook(name string, qty int) string {
	h.t.Helper()
	w := h.do(http.MethodPost, "/api/v1/books", gin.H{"name": name, "author": "someone", "quantity": qty})
	require.Equal(h.t, http.StatusOK, w.Code, w.Body.String())
	return decode[models.InsertResult](h.t, w).InsertedID
}

func (h *harness) quantity(id string) int {
	h.t.Helper()
	w := h.do(http.MethodGet, "/api/v1/books/"+id, nil)
	require.Equal(h.t, http.StatusOK, w.Code)
	return decode[models.Book](h.t, w).Quantity
}

func TestRoot_And_Health(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "book minder server is running", w.Body.String())

	w = h.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestCatalog_Endpoints(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(http.MethodGet, "/api/v1/books", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = h.do(http.MethodGet, "/api/v1/category", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	id := h.addBook("Dune", 2)

	w = h.do(http.MethodPost, "/api/v1/books", gin.H{"name": "Dune", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"duplicate name"}`, w.Body.String())

	w = h.do(http.MethodPost, "/api/v1/books", gin.H{"name": "Negative", "quantity": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodGet, "/api/v1/books/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Book](t, w)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "Dune", got.Name)

	w = h.do(http.MethodGet, "/api/v1/books/not-an-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodPut, "/api/v1/books/"+id, gin.H{"name": "Dune", "author": "Frank Herbert", "quantity": 4})
	require.Equal(t, http.StatusOK, w.Code)
	upd := decode[models.UpdateResult](t, w)
	assert.Equal(t, int64(1), upd.MatchedCount)
	assert.Equal(t, 4, h.quantity(id))

	fresh := "6f1b1a52-4a8e-4c55-9a55-0a9f3c1d2e11"
	w = h.do(http.MethodPut, "/api/v1/books/"+fresh, gin.H{"name": "Emma", "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	upd = decode[models.UpdateResult](t, w)
	assert.Equal(t, int64(1), upd.UpsertedCount)
	assert.Equal(t, fresh, upd.UpsertedID)

	w = h.do(http.MethodPut, "/api/v1/books/"+fresh, gin.H{"name": "Dune", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code, "rename onto another title's name")

	w = h.do(http.MethodGet, "/api/v1/books", nil)
	assert.Len(t, decode[[]models.Book](t, w), 2)
}

func TestLending_BorrowReturnRoundTrip(t *testing.T) {
	h := newHarness(t, nil)
	id := h.addBook("Dune", 1)
	borrow := gin.H{"bookName": "Dune", "email": "alice@example.com", "name": "Alice", "borrowedDate": "2024-05-01", "returnDate": "2024-05-15"}

	w := h.do(http.MethodPost, "/api/v1/borrow-book", borrow)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[models.BorrowResult](t, w)
	assert.True(t, res.InsertResult.Acknowledged)
	assert.Equal(t, int64(1), res.UpdateResult.ModifiedCount)
	assert.Equal(t, 0, h.quantity(id))

	w = h.do(http.MethodPost, "/api/v1/borrow-book", borrow)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"already borrowed by this user"}`, w.Body.String())

	w = h.do(http.MethodPost, "/api/v1/borrow-book", gin.H{"bookName": "Dune", "email": "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"message":"no books available"}`, w.Body.String())
	assert.Equal(t, 0, h.quantity(id))

	w = h.do(http.MethodGet, "/api/v1/borrow-book/"+res.InsertResult.InsertedID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rec := decode[models.BorrowRecord](t, w)
	assert.Equal(t, "2024-05-15", rec.ReturnDate)

	w = h.do(http.MethodDelete, "/api/v1/borrow-book/"+res.InsertResult.InsertedID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	ret := decode[models.ReturnResult](t, w)
	assert.Equal(t, int64(1), ret.DeleteResult.DeletedCount)
	assert.Equal(t, 1, h.quantity(id))

	w = h.do(http.MethodDelete, "/api/v1/borrow-book/"+res.InsertResult.InsertedID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "second return of the same record")
	assert.Equal(t, 1, h.quantity(id))

	w = h.do(http.MethodPost, "/api/v1/borrow-book", gin.H{"bookName": "Dune", "email": "bob@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLending_BadRequests(t *testing.T) {
	h := newHarness(t, nil)
	h.addBook("Dune", 1)

	w := h.do(http.MethodPost, "/api/v1/borrow-book", gin.H{"email": "alice@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing bookName")

	w = h.do(http.MethodPost, "/api/v1/borrow-book", gin.H{"bookName": "Dune", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/api/v1/borrow-book", gin.H{"bookName": "Missing", "email": "alice@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodDelete, "/api/v1/borrow-book/not-an-id", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodGet, "/api/v1/borrow-book/6f1b1a52-4a8e-4c55-9a55-0a9f3c1d2e11", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuth_CookieAndListBorrows(t *testing.T) {
	h := newHarness(t, nil)
	h.addBook("Dune", 2)
	h.addBook("Emma", 2)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/borrow-book", gin.H{"bookName": "Dune", "email": "alice@example.com"}).Code)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/borrow-book", gin.H{"bookName": "Emma", "email": "bob@example.com"}).Code)

	w := h.do(http.MethodGet, "/api/v1/borrow-book?email=alice@example.com", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"unauthorized access"}`, w.Body.String())

	w = h.do(http.MethodGet, "/api/v1/borrow-book", nil, &http.Cookie{Name: session.CookieName, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodPost, "/api/v1/jwt", gin.H{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	ck := w.Result().Cookies()[0]
	assert.Equal(t, session.CookieName, ck.Name)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteNoneMode, ck.SameSite)
	assert.Equal(t, int(time.Hour/time.Second), ck.MaxAge)

	w = h.do(http.MethodGet, "/api/v1/borrow-book?email=alice@example.com", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]models.BorrowRecord](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, "Dune", mine[0].BookName)

	w = h.do(http.MethodGet, "/api/v1/borrow-book?email=bob@example.com", nil, ck)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"message":"forbidden access"}`, w.Body.String())

	w = h.do(http.MethodGet, "/api/v1/borrow-book", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.BorrowRecord](t, w), 2)

	w = h.do(http.MethodPost, "/api/v1/jwt", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuth_IdentityMustBeAnEmail(t *testing.T) {
	h := newHarness(t, nil)
	h.addBook("Dune", 1)

	// the same identities borrow accepts and refuses
	for _, email := range []string{"alice", "alice@", "not an email"} {
		w := h.do(http.MethodPost, "/api/v1/jwt", gin.H{"email": email})
		assert.Equal(t, http.StatusBadRequest, w.Code, email)
		assert.Empty(t, w.Result().Cookies(), email)

		w = h.do(http.MethodPost, "/api/v1/borrow-book", gin.H{"bookName": "Dune", "email": email})
		assert.Equal(t, http.StatusBadRequest, w.Code, email)
	}

	w := h.do(http.MethodPost, "/api/v1/jwt", gin.H{"email": "alice@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = h.do(http.MethodPost, "/api/v1/borrow-book", gin.H{"bookName": "Dune", "email": "alice@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_LogoutClearsAndRevokes(t *testing.T) {
	rev := &memRevocations{}
	h := newHarness(t, rev)
	ck := h.login("alice@example.com")

	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/v1/borrow-book", nil, ck).Code)

	w := h.do(http.MethodPost, "/api/v1/logout", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	cleared := w.Result().Cookies()[0]
	assert.Equal(t, session.CookieName, cleared.Name)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	w = h.do(http.MethodGet, "/api/v1/borrow-book", nil, ck)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "replayed cookie after logout")

	// logout without a cookie still succeeds
	assert.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/v1/logout", nil).Code)
}

func TestAuth_RevocationLookupFailure(t *testing.T) {
	rev := &memRevocations{err: errors.New("redis down")}
	h := newHarness(t, rev)
	ck := h.login("alice@example.com")

	w := h.do(http.MethodGet, "/api/v1/borrow-book", nil, ck)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMetrics_CountsLendingOutcomes(t *testing.T) {
	h := newHarness(t, nil)
	h.addBook("Dune", 1)
	h.do(http.MethodPost, "/api/v1/borrow-book", gin.H{"bookName": "Dune", "email": "alice@example.com"})
	h.do(http.MethodPost, "/api/v1/borrow-book", gin.H{"bookName": "Dune", "email": "bob@example.com"})

	w := h.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `bookminder_borrows_total{outcome="ok"} 1`)
	assert.Contains(t, body, `bookminder_borrows_total{outcome="out_of_stock"} 1`)
	assert.Contains(t, body, `bookminder_http_requests_total{method="POST",route="/api/v1/borrow-book",status="200"} 1`)
}
