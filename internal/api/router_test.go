package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolecall/mock-api/internal/api/metrics"
	"github.com/rolecall/mock-api/internal/core/domain"
	"github.com/rolecall/mock-api/internal/infrastructure/db/memory"
	"github.com/rolecall/mock-api/internal/pkg/config"
	"github.com/rolecall/mock-api/internal/pkg/random"
)

type testServer struct {
	e       *echo.Echo
	store   *memory.Store
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	cfg := config.Default()
	cfg.Speed = config.SpeedFast
	cfg.ChanceOfServerError = 0
	cfg.RequestLogging = false
	for _, m := range mutate {
		m(&cfg)
	}

	var (
		mu  sync.Mutex
		now = time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	)
	ts := &testServer{store: memory.NewStore(), metrics: metrics.New()}
	ts.e = NewRouter(Deps{
		Config:  cfg,
		Store:   ts.store,
		Metrics: ts.metrics,
		Rand:    random.New(99),
		Log:     zerolog.Nop(),
		Sleep:   func(time.Duration) {},
		Now: func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			now = now.Add(time.Second)
			return now
		},
	})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func assertMessage(t *testing.T, rec *httptest.ResponseRecorder, code int, msg string) {
	t.Helper()
	require.Equal(t, code, rec.Code, "body: %s", rec.Body.String())
	assert.JSONEq(t, `{"message":"`+msg+`"}`, rec.Body.String())
}

// ---------------------------------------------------------------------------
// Listing
// ---------------------------------------------------------------------------

func TestUsers_ListPagination(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[domain.Page[domain.User]](t, rec)
	assert.Len(t, first.Data, 10)
	require.NotNil(t, first.Next)
	assert.Equal(t, 2, *first.Next)
	assert.Nil(t, first.Prev)
	assert.Equal(t, 2, first.Pages)
	assert.Contains(t, rec.Body.String(), `"prev":null`)

	second := decode[domain.Page[domain.User]](t, ts.do(t, http.MethodGet, "/users?page=2", ""))
	assert.Len(t, second.Data, 6)
	assert.Nil(t, second.Next)
	require.NotNil(t, second.Prev)
	assert.Equal(t, 1, *second.Prev)

	garbage := decode[domain.Page[domain.User]](t, ts.do(t, http.MethodGet, "/users?page=abc", ""))
	assert.Equal(t, first.Data, garbage.Data)
}

func TestUsers_ListHugePageIsEmpty(t *testing.T) {
	ts := newTestServer(t)

	for _, page := range []string{"1844674407370955162", "9223372036854775807"} {
		rec := ts.do(t, http.MethodGet, "/users?page="+page, "")
		require.Equal(t, http.StatusOK, rec.Code, "page=%s body: %s", page, rec.Body.String())
		got := decode[domain.Page[domain.User]](t, rec)
		assert.Empty(t, got.Data)
		assert.Equal(t, 2, got.Pages)
		assert.Nil(t, got.Next)
		require.NotNil(t, got.Prev)
	}
}

func TestUsers_SearchNoMatch(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/users?search=zzzz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"next":null,"prev":null,"pages":0}`, rec.Body.String())
}

func TestRoles_SearchIgnoresCase(t *testing.T) {
	ts := newTestServer(t)

	page := decode[domain.Page[domain.Role]](t, ts.do(t, http.MethodGet, "/roles?search=EDIT", ""))
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Editor", page.Data[0].Name)
}

func TestPageSizeFromConfig(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.PageSize = 3 })

	page := decode[domain.Page[domain.User]](t, ts.do(t, http.MethodGet, "/users?page=6", ""))
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 6, page.Pages)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func TestUsers_CreateThenGet(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/users", `{"first":"Jean","last":"Sammet","roleId":"`+memory.RoleViewerID+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[domain.User](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.Photo)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got := decode[domain.User](t, ts.do(t, http.MethodGet, "/users/"+created.ID, ""))
	assert.Equal(t, created, got)
}

func TestUsers_CreateErrors(t *testing.T) {
	ts := newTestServer(t)

	assertMessage(t, ts.do(t, http.MethodPost, "/users", `{}`),
		http.StatusBadRequest, "Missing required fields: first, last, roleId")
	assertMessage(t, ts.do(t, http.MethodPost, "/users", `{"last":"L","roleId":"x"}`),
		http.StatusBadRequest, "Missing required field: first")
	assertMessage(t, ts.do(t, http.MethodPost, "/users", `{"first":"F","last":"L","roleId":"nope"}`),
		http.StatusBadRequest, "Referenced role not found")
	assertMessage(t, ts.do(t, http.MethodPost, "/users", `{"first":`),
		http.StatusBadRequest, "Invalid request body")
}

func TestUsers_PatchUnchangedKeepsUpdatedAt(t *testing.T) {
	ts := newTestServer(t)
	user := decode[domain.Page[domain.User]](t, ts.do(t, http.MethodGet, "/users?search=Hopper", "")).Data[0]

	rec := ts.do(t, http.MethodPatch, "/users/"+user.ID, `{"first":"`+user.First+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.UpdatedAt, decode[domain.User](t, rec).UpdatedAt)

	rec = ts.do(t, http.MethodPatch, "/users/"+user.ID, `{"first":"Amazing Grace"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	changed := decode[domain.User](t, rec)
	assert.Equal(t, "Amazing Grace", changed.First)
	assert.True(t, changed.UpdatedAt.After(user.UpdatedAt))
}

func TestUsers_PatchErrors(t *testing.T) {
	ts := newTestServer(t)
	user := decode[domain.Page[domain.User]](t, ts.do(t, http.MethodGet, "/users", "")).Data[0]

	assertMessage(t, ts.do(t, http.MethodPatch, "/users/missing", `{"first":"x"}`),
		http.StatusNotFound, "User not found")
	assertMessage(t, ts.do(t, http.MethodPatch, "/users/"+user.ID, `{"roleId":"nope"}`),
		http.StatusBadRequest, "Referenced role not found")
}

func TestUsers_Delete(t *testing.T) {
	ts := newTestServer(t)
	user := decode[domain.Page[domain.User]](t, ts.do(t, http.MethodGet, "/users", "")).Data[0]

	rec := ts.do(t, http.MethodDelete, "/users/"+user.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, decode[domain.User](t, rec).ID)

	assertMessage(t, ts.do(t, http.MethodGet, "/users/"+user.ID, ""), http.StatusNotFound, "User not found")
	assertMessage(t, ts.do(t, http.MethodDelete, "/users/"+user.ID, ""), http.StatusNotFound, "User not found")
}

// ---------------------------------------------------------------------------
// Roles
// ---------------------------------------------------------------------------

func TestRoles_DeleteReassignsUsers(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.PageSize = 100 })

	rec := ts.do(t, http.MethodDelete, "/roles/"+memory.RoleEditorID, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Editor", decode[domain.Role](t, rec).Name)

	roles := decode[domain.Page[domain.Role]](t, ts.do(t, http.MethodGet, "/roles", ""))
	assert.Len(t, roles.Data, 3)

	users := decode[domain.Page[domain.User]](t, ts.do(t, http.MethodGet, "/users", ""))
	onDefault := 0
	for _, u := range users.Data {
		assert.NotEqual(t, memory.RoleEditorID, u.RoleID)
		if u.RoleID == memory.RoleMemberID {
			onDefault++
		}
	}
	assert.Equal(t, 12, onDefault)

	assertMessage(t, ts.do(t, http.MethodGet, "/roles/"+memory.RoleEditorID, ""), http.StatusNotFound, "Role not found")
}

func TestRoles_UnsetDefaultRejected(t *testing.T) {
	ts := newTestServer(t)
	before := ts.do(t, http.MethodGet, "/roles/"+memory.RoleMemberID, "").Body.String()

	assertMessage(t, ts.do(t, http.MethodPatch, "/roles/"+memory.RoleMemberID, `{"isDefault":false}`),
		http.StatusBadRequest, "Cannot unset default role")

	after := ts.do(t, http.MethodGet, "/roles/"+memory.RoleMemberID, "").Body.String()
	assert.JSONEq(t, before, after)
}

func TestRoles_DeleteDefaultRejected(t *testing.T) {
	ts := newTestServer(t)

	assertMessage(t, ts.do(t, http.MethodDelete, "/roles/"+memory.RoleMemberID, ""),
		http.StatusBadRequest, "Cannot delete default role")
}

func TestRoles_NameConflicts(t *testing.T) {
	ts := newTestServer(t)

	assertMessage(t, ts.do(t, http.MethodPost, "/roles", `{"name":"Admin"}`),
		http.StatusBadRequest, "Role with given name already exists")
	assertMessage(t, ts.do(t, http.MethodPatch, "/roles/"+memory.RoleViewerID, `{"name":"Admin"}`),
		http.StatusBadRequest, "Role with given name already exists")
	assertMessage(t, ts.do(t, http.MethodPost, "/roles", `{"description":"nameless"}`),
		http.StatusBadRequest, "Missing required field: name")
}

func TestRoles_CreateDefaultMovesFlag(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/roles", `{"name":"Guest","isDefault":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[domain.Role](t, rec)
	assert.True(t, created.IsDefault)
	assert.Equal(t, "", created.Description)

	prev := decode[domain.Role](t, ts.do(t, http.MethodGet, "/roles/"+memory.RoleMemberID, ""))
	assert.False(t, prev.IsDefault)
}

// ---------------------------------------------------------------------------
// Fault injection and infrastructure routes
// ---------------------------------------------------------------------------

func TestFaults_EveryAPIRequestFails(t *testing.T) {
	ts := newTestServer(t, func(c *config.Config) { c.ChanceOfServerError = 1 })

	assertMessage(t, ts.do(t, http.MethodGet, "/users", ""), http.StatusInternalServerError, "Server Error")
	assertMessage(t, ts.do(t, http.MethodPost, "/roles", `{"name":"Ghost"}`), http.StatusInternalServerError, "Server Error")
	assertMessage(t, ts.do(t, http.MethodDelete, "/roles/"+memory.RoleEditorID, ""), http.StatusInternalServerError, "Server Error")

	// Faulted requests never reach the store.
	rec := ts.do(t, http.MethodGet, "/health/ready", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"roles":4`)
	assert.Contains(t, rec.Body.String(), `"users":16`)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/metrics", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/roles", `{"name":"Auditor"}`)

	rec := ts.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `mockapi_entity_mutations_total{entity="role",op="create"} 1`)
	assert.Contains(t, body, "mockapi_injected_latency_seconds")
}

func TestHealthReady_Degraded(t *testing.T) {
	// A seed without a default role can only come from a broken dataset.
	store := memory.NewStore(memory.WithSeed(memory.Seed{Roles: []domain.Role{{ID: "r", Name: "R"}}}))
	ts := &testServer{store: store, metrics: metrics.New()}
	ts.e = NewRouter(Deps{
		Config:  config.Default(),
		Store:   store,
		Metrics: ts.metrics,
		Rand:    random.New(1),
		Log:     zerolog.Nop(),
	})

	rec := ts.do(t, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
}

func TestPanicIsLoggedAndCounted(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	cfg.RequestLogging = true
	m := metrics.New()
	e := NewRouter(Deps{
		Config:  cfg,
		Store:   memory.NewStore(),
		Metrics: m,
		Rand:    random.New(1),
		Log:     zerolog.New(&buf),
	})
	e.GET("/boom", func(echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assertMessage(t, rec, http.StatusInternalServerError, "Internal Server Error")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/boom", "500")))
	logs := buf.String()
	assert.Contains(t, logs, `"message":"panic recovered"`)
	assert.Contains(t, logs, `"error":"boom"`)
	assert.Contains(t, logs, `"status":500`)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"message"`)
}

func TestSwaggerDocs(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/swagger/doc.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"/users/{id}"`)
}
