package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"todotracker/internal/database"
	"todotracker/internal/logging"
	"todotracker/internal/middleware"
	"todotracker/internal/store"
	"todotracker/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

const testJWTSecret = "todotracker_test_jwt_secret_key_1234567890"

// prefixHasher keeps handler tests independent of bcrypt cost.
type prefixHasher struct{}

func (prefixHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (prefixHasher) Compare(hash, password string) bool {
	return hash == "hashed:"+password
}

func setupMockHandler(t *testing.T) (*Handler, sqlmock.Sqlmock, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	db := &database.DB{DB: sqlDB, Dialect: database.Postgres}

	codec, err := utils.NewJWTCodec(testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}

	h := &Handler{
		Users:  store.NewUsers(db, prefixHasher{}, 6),
		Todos:  store.NewTodos(db),
		Tokens: codec,
		Log:    logging.Discard(),
	}

	cleanup := func() {
		_ = sqlDB.Close()
	}
	return h, mock, cleanup
}

func withTestUserID(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetUserID(c, userID)
		c.Next()
	}
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	return out
}

func mustStatus(t *testing.T, actual int, expected int) {
	t.Helper()
	if actual != expected {
		t.Fatalf("expected status %d, got %d", expected, actual)
	}
}

func expectHTTP200(t *testing.T, status int) {
	t.Helper()
	mustStatus(t, status, http.StatusOK)
}

func expectSQL(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
