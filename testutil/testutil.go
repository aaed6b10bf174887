// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/content-vote/auth"
	"github.com/danielhkuo/content-vote/cliparse"
	"github.com/danielhkuo/content-vote/db"
	"github.com/danielhkuo/content-vote/models"
	"github.com/danielhkuo/content-vote/store"
)

// PostgresURLEnv names the variable that enables the PostgreSQL-backed tests.
const PostgresURLEnv = "TEST_POSTGRES_URL"

// Content item every test poll is attached to unless stated otherwise.
const (
	TestContentType = models.ContentTypeMap
	TestContentKey  = "map.harbor"
)

// SetupTestDB creates a fresh SQLite database file with the full schema.
// It is closed when the test ends.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "votes.db")
	conn, err := db.Open(context.Background(), db.TypeSQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(context.Background(), conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// SetupPostgresDB connects to the database named by TEST_POSTGRES_URL and
// recreates the schema. The test is skipped when the variable is unset.
func SetupPostgresDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv(PostgresURLEnv)
	if url == "" {
		t.Skipf("%s not set", PostgresURLEnv)
	}
	conn, err := db.Open(context.Background(), db.TypePostgres, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Clean up tables before each test
	if err := db.DropSchema(context.Background(), conn); err != nil {
		t.Fatalf("Failed to clean database: %v", err)
	}
	if err := db.CreateSchema(context.Background(), conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// NewTestStore returns a SQLStore over a fresh SQLite database.
func NewTestStore(t *testing.T) *store.SQLStore {
	t.Helper()
	return store.NewSQLStore(SetupTestDB(t), nil)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                3318,
		DatabaseURL:         "votes.db",
		DatabaseType:        db.TypeSQLite,
		TokenSalt:           "test-token-salt",
		MaxVotesPerInterval: cliparse.DefaultMaxVotesPerInterval,
		VoteInterval:        cliparse.DefaultVoteInterval,
		StoreTimeout:        cliparse.DefaultStoreTimeout,
		LogLevel:            "error",
	}
}

// CreateTestUser adds a user and returns its id.
// role should be models.RolePlayer or models.RoleAdmin
func CreateTestUser(t *testing.T, s store.Seeder, role string, banned bool) string {
	t.Helper()

	id, err := s.AddUser(context.Background(), models.User{
		Username: "user-" + uuid.NewString()[:8],
		Role:     role,
		Banned:   banned,
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return id
}

// CreateTestPoll adds a poll on the test content item with one option per
// label and returns the poll id and option ids in label order.
// status should be "draft", "active", or "closed"
func CreateTestPoll(t *testing.T, s store.Seeder, status string, labels ...string) (string, []string) {
	t.Helper()
	return CreateTestPollWith(t, s, models.Poll{Status: status}, labels...)
}

// CreateTestPollWith is CreateTestPoll with control over the poll fields.
// Empty content and title fields get test defaults.
func CreateTestPollWith(t *testing.T, s store.Seeder, poll models.Poll, labels ...string) (string, []string) {
	t.Helper()

	if poll.ContentType == "" {
		poll.ContentType = TestContentType
	}
	if poll.ContentKey == "" {
		poll.ContentKey = TestContentKey
	}
	if poll.TitleKey == "" {
		poll.TitleKey = "poll.test.title"
	}
	if poll.CreatedAt.IsZero() {
		poll.CreatedAt = time.Now().UTC()
	}

	options := make([]models.Option, 0, len(labels))
	for _, label := range labels {
		options = append(options, models.Option{LabelKey: label, Active: true})
	}

	pollID, optionIDs, err := s.AddPoll(context.Background(), poll, options)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return pollID, optionIDs
}

// UserToken signs a token for userID with the test salt.
func UserToken(userID string) string {
	return auth.SignUserToken(userID, GetTestConfig().TokenSalt)
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorCode checks that the response body is {"error": code}.
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, code models.ReasonCode) {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v. Body: %s", err, w.Body.String())
	}
	if resp.Error != code.String() {
		t.Errorf("Expected error code %s, got %s", code, resp.Error)
	}
}
