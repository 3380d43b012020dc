package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"todotracker/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

const (
	selectIDByHandle = `SELECT id FROM "user" WHERE username = $1`
	insertUser       = `INSERT INTO "user" (username, password, created_at) VALUES ($1, $2, $3) RETURNING id`
	selectByHandle   = `SELECT id, username, password, created_at FROM "user" WHERE username = $1`
	selectByID       = `SELECT id, username, password, created_at FROM "user" WHERE id = $1`
)

var userColumns = []string{"id", "username", "password", "created_at"}

func TestRegisterSuccess(t *testing.T) {
	h, mock, cleanup := setupMockHandler(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectIDByHandle)).
		WithArgs("demo_user").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta(insertUser)).
		WithArgs("demo_user", "hashed:Secret123", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(101))

	router := gin.New()
	router.POST("/api/register", h.Register)

	resp := doJSON(router, http.MethodPost, "/api/register", map[string]string{
		"username": "  demo_user ",
		"password": "Secret123",
	})
	mustStatus(t, resp.Code, http.StatusCreated)

	out := decodeBody(t, resp)
	if token, _ := out["token"].(string); token == "" {
		t.Fatalf("expected non-empty token")
	}
	user, _ := out["user"].(map[string]any)
	if user["username"] != "demo_user" || user["id"] != float64(101) {
		t.Fatalf("unexpected user payload %v", user)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}

	expectSQL(t, mock)
}

func TestRegisterDuplicateHandle(t *testing.T) {
	h, mock, cleanup := setupMockHandler(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectIDByHandle)).
		WithArgs("demo_user").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	router := gin.New()
	router.POST("/api/register", h.Register)

	resp := doJSON(router, http.MethodPost, "/api/register", map[string]string{
		"username": "demo_user",
		"password": "Secret123",
	})
	mustStatus(t, resp.Code, http.StatusConflict)
	expectSQL(t, mock)
}

func TestRegisterRejectsInputWithoutQuerying(t *testing.T) {
	h, mock, cleanup := setupMockHandler(t)
	defer cleanup()

	router := gin.New()
	router.POST("/api/register", h.Register)

	cases := []map[string]string{
		{"username": "demo_user", "password": "12345"},
		{"username": "", "password": "Secret123"},
		{"username": "demo_user"},
	}
	for _, body := range cases {
		resp := doJSON(router, http.MethodPost, "/api/register", body)
		mustStatus(t, resp.Code, http.StatusBadRequest)
	}
	expectSQL(t, mock)
}

func TestLoginSuccess(t *testing.T) {
	h, mock, cleanup := setupMockHandler(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectByHandle)).
		WithArgs("demo_user").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(101, "demo_user", "hashed:Secret123", time.Now().UTC()))

	router := gin.New()
	router.POST("/api/login", h.Login)

	resp := doJSON(router, http.MethodPost, "/api/login", map[string]string{
		"username": "demo_user",
		"password": "Secret123",
	})
	expectHTTP200(t, resp.Code)

	out := decodeBody(t, resp)
	token, _ := out["token"].(string)
	if token == "" {
		t.Fatalf("expected non-empty token")
	}
	codec, err := utils.NewJWTCodec(testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTCodec: %v", err)
	}
	if userID, err := codec.Verify(token); err != nil || userID != 101 {
		t.Fatalf("issued token resolves to %d, %v", userID, err)
	}

	expectSQL(t, mock)
}

func TestLoginFailuresLookIdentical(t *testing.T) {
	h, mock, cleanup := setupMockHandler(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectByHandle)).
		WithArgs("demo_user").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(101, "demo_user", "hashed:Secret123", time.Now().UTC()))
	mock.ExpectQuery(regexp.QuoteMeta(selectByHandle)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	router := gin.New()
	router.POST("/api/login", h.Login)

	wrongPassword := doJSON(router, http.MethodPost, "/api/login", map[string]string{
		"username": "demo_user",
		"password": "WrongPass",
	})
	unknownUser := doJSON(router, http.MethodPost, "/api/login", map[string]string{
		"username": "ghost",
		"password": "Secret123",
	})

	mustStatus(t, wrongPassword.Code, http.StatusUnauthorized)
	mustStatus(t, unknownUser.Code, http.StatusUnauthorized)
	if wrongPassword.Body.String() != unknownUser.Body.String() {
		t.Fatalf("login failures differ: %q vs %q", wrongPassword.Body.String(), unknownUser.Body.String())
	}

	expectSQL(t, mock)
}

func TestLoginDatabaseFailure(t *testing.T) {
	h, mock, cleanup := setupMockHandler(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectByHandle)).
		WithArgs("demo_user").
		WillReturnError(errors.New("connection reset"))

	router := gin.New()
	router.POST("/api/login", h.Login)

	resp := doJSON(router, http.MethodPost, "/api/login", map[string]string{
		"username": "demo_user",
		"password": "Secret123",
	})
	mustStatus(t, resp.Code, http.StatusInternalServerError)
	if out := decodeBody(t, resp); out["error"] != "Internal server error" {
		t.Fatalf("unexpected error body %v", out)
	}

	expectSQL(t, mock)
}

func TestVerifyReturnsCurrentUser(t *testing.T) {
	h, mock, cleanup := setupMockHandler(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(selectByID)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(42, "demo_user", "hashed:Secret123", time.Now().UTC()))

	router := gin.New()
	router.GET("/api/verify", withTestUserID(42), h.Verify)

	resp := doJSON(router, http.MethodGet, "/api/verify", nil)
	expectHTTP200(t, resp.Code)

	user, _ := decodeBody(t, resp)["user"].(map[string]any)
	if user["username"] != "demo_user" {
		t.Fatalf("unexpected user %v", user)
	}

	expectSQL(t, mock)
}

func TestVerifyWithoutUserIsUnauthorized(t *testing.T) {
	h, mock, cleanup := setupMockHandler(t)
	defer cleanup()

	router := gin.New()
	router.GET("/api/verify", h.Verify)

	resp := doJSON(router, http.MethodGet, "/api/verify", nil)
	mustStatus(t, resp.Code, http.StatusUnauthorized)
	expectSQL(t, mock)
}
