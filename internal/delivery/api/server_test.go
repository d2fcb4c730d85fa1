package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"quill/config"
	apimiddleware "quill/internal/delivery/api/middleware"
	"quill/internal/delivery/api/router"
	"quill/internal/delivery/api/router/handler"
	deliverycontext "quill/internal/delivery/context"
	"quill/internal/domain/entity"
	"quill/internal/infra/auth"
	"quill/internal/infra/persistence/memory"
	"quill/internal/usecase/impl"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

type authBody struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// steppingClock advances one second per reading so every post gets a distinct timestamp.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(time.Second)

	return c.now
}

type testAPI struct {
	t *testing.T
	e *echo.Echo
}

// newTestAPI serves the full route table over the in-memory store.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{}
	cfg.HTTP.MaxRequestBodySize = "100KB"
	cfg.SecretKey.Access = "test-secret"
	cfg.Auth = &config.AuthConfig{BcryptCost: bcrypt.MinCost, TokenTTL: time.Hour}
	cfg.Pagination = &config.PaginationConfig{DefaultSize: 10, MaxSize: 50}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := &steppingClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}

	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	posts := memory.NewPostRepository(store)

	tokens, err := auth.NewJWTService(cfg, clock.Now)
	require.NoError(t, err)

	authUC := impl.NewAuthService(impl.AuthServiceParams{
		UserRepo:     users,
		Hasher:       auth.NewBcryptHasher(cfg),
		TokenService: tokens,
		Clock:        clock.Now,
		Logger:       logger,
	})
	postUC := impl.NewPostService(impl.PostServiceParams{
		UserRepo: users,
		PostRepo: posts,
		Clock:    clock.Now,
		Config:   cfg,
		Logger:   logger,
	})

	r := router.NewRouter(router.RouterParams{
		AuthHandler:    handler.NewAuthHandler(handler.AuthHandlerParams{AuthUC: authUC, Logger: logger}),
		PostHandler:    handler.NewPostHandler(handler.PostHandlerParams{PostUC: postUC, Logger: logger}),
		AuthMiddleware: apimiddleware.NewAuthMiddleware(tokens, logger),
	})

	return &testAPI{t: t, e: newEcho(cfg, logger, r)}
}

func (s *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	return rec
}

func (s *testAPI) decode(rec *httptest.ResponseRecorder, out any) {
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
}

func (s *testAPI) assertError(rec *httptest.ResponseRecorder, status int, code string) errorBody {
	assert.Equal(s.t, status, rec.Code, rec.Body.String())

	var body errorBody
	s.decode(rec, &body)
	assert.Equal(s.t, code, body.Error.Code)
	assert.Equal(s.t, rec.Header().Get(deliverycontext.HeaderXRequestID), body.Meta.RequestID)

	return body
}

func (s *testAPI) signup(email, name string) authBody {
	rec := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": email, "name": name, "password": "secret123",
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var body authBody
	s.decode(rec, &body)

	return body
}

func (s *testAPI) createPost(token, title, content string) entity.PostView {
	rec := s.do(http.MethodPost, "/api/blogs", token, map[string]string{"title": title, "content": content})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var view entity.PostView
	s.decode(rec, &view)

	return view
}

func TestHealth(t *testing.T) {
	s := newTestAPI(t)

	rec := s.do(http.MethodGet, "/health", "", nil)

	assert.Equal(s.t, http.StatusOK, rec.Code)
	assert.JSONEq(s.t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(s.t, rec.Header().Get(deliverycontext.HeaderXRequestID))
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(deliverycontext.HeaderXRequestID, "trace-123")
	rec := httptest.NewRecorder()

	s.e.ServeHTTP(rec, req)

	assert.Equal(s.t, "trace-123", rec.Header().Get(deliverycontext.HeaderXRequestID))
}

func TestSignup(t *testing.T) {
	s := newTestAPI(t)

	body := s.signup("  Alice@Example.COM ", "Alice")

	assert.NotEmpty(s.t, body.Token)
	assert.Equal(s.t, "Alice", body.Name)
	assert.Equal(s.t, "alice@example.com", body.Email)

	rec := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "ALICE@example.com", "name": "Alice Again", "password": "secret123",
	})
	s.assertError(rec, http.StatusConflict, "EMAIL_ALREADY_EXISTS")
}

func TestSignupValidation(t *testing.T) {
	s := newTestAPI(t)

	rec := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "not-an-email", "name": "Al", "password": "123",
	})

	body := s.assertError(rec, http.StatusBadRequest, "VALIDATION_FAILED")
	details, ok := body.Error.Details.(map[string]any)
	require.True(s.t, ok)
	assert.Contains(s.t, details, "email")
	assert.Contains(s.t, details, "name")
	assert.Contains(s.t, details, "password")
}

func TestSignupMalformedBody(t *testing.T) {
	s := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", bytes.NewBufferString("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	s.e.ServeHTTP(rec, req)

	s.assertError(rec, http.StatusBadRequest, "INVALID_INPUT")
}

func TestSignupPasswordByteLimit(t *testing.T) {
	s := newTestAPI(t)

	rec := s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "multi@example.com", "name": "Multi", "password": strings.Repeat("é", 72),
	})

	body := s.assertError(rec, http.StatusBadRequest, "VALIDATION_FAILED")
	assert.Equal(t, map[string]any{"password": "must be at most 72 bytes"}, body.Error.Details)

	rec = s.do(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email": "multi@example.com", "name": "Multi", "password": strings.Repeat("é", 36),
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestLogin(t *testing.T) {
	s := newTestAPI(t)

	s.signup("bob@example.com", "Bobby")

	rec := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "BOB@Example.com", "password": "secret123",
	})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var body authBody
	s.decode(rec, &body)
	assert.NotEmpty(s.t, body.Token)
	assert.Equal(s.t, "bob@example.com", body.Email)
	assert.Equal(s.t, "Bobby", body.Name)

	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "bob@example.com", "password": "wrong-password",
	})
	s.assertError(rec, http.StatusUnauthorized, "INVALID_CREDENTIALS")

	rec = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "secret123",
	})
	s.assertError(rec, http.StatusNotFound, "USER_NOT_FOUND")
}

func TestMe(t *testing.T) {
	s := newTestAPI(t)

	alice := s.signup("alice@example.com", "Alice")

	rec := s.do(http.MethodGet, "/api/auth/me", alice.Token, nil)
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())

	var profile handler.ProfileResponse
	s.decode(rec, &profile)
	assert.Equal(s.t, "Alice", profile.Name)
	assert.Equal(s.t, "alice@example.com", profile.Email)

	s.assertError(s.do(http.MethodGet, "/api/auth/me", "", nil), http.StatusUnauthorized, "UNAUTHENTICATED")
}

func TestMutationsRequireToken(t *testing.T) {
	s := newTestAPI(t)

	cases := []struct {
		name   string
		method string
		path   string
		header string
	}{
		{name: "create without header", method: http.MethodPost, path: "/api/blogs"},
		{name: "update without header", method: http.MethodPatch, path: "/api/blogs/0190a6f8-0000-7000-8000-000000000000"},
		{name: "delete without header", method: http.MethodDelete, path: "/api/blogs/0190a6f8-0000-7000-8000-000000000000"},
		{name: "wrong scheme", method: http.MethodPost, path: "/api/blogs", header: "Basic dXNlcjpwYXNz"},
		{name: "garbage token", method: http.MethodPost, path: "/api/blogs", header: "Bearer not.a.jwt"},
		{name: "empty bearer", method: http.MethodPost, path: "/api/blogs", header: "Bearer "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(`{"title":"t","content":"c"}`))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()

			s.e.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "UNAUTHENTICATED", body.Error.Code)
		})
	}
}

func TestPostLifecycle(t *testing.T) {
	s := newTestAPI(t)

	alice := s.signup("alice@example.com", "Alice")

	created := s.createPost(alice.Token, "Hello", "First post")
	assert.Equal(s.t, "Hello", created.Title)
	assert.Equal(s.t, "First post", created.Content)
	assert.Equal(s.t, "Alice", created.AuthorName)
	assert.Nil(s.t, created.UpdatedAt)

	// Reads are public.
	rec := s.do(http.MethodGet, "/api/blogs/"+created.ID.String(), "", nil)
	require.Equal(s.t, http.StatusOK, rec.Code)
	var fetched entity.PostView
	s.decode(rec, &fetched)
	assert.Equal(s.t, created.ID, fetched.ID)
	assert.Equal(s.t, created.AuthorID, fetched.AuthorID)
	assert.Equal(s.t, "Alice", fetched.AuthorName)

	rec = s.do(http.MethodPatch, "/api/blogs/"+created.ID.String(), alice.Token, map[string]string{"title": "Hello again"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var patched entity.PostView
	s.decode(rec, &patched)
	assert.Equal(s.t, "Hello again", patched.Title)
	assert.Equal(s.t, "First post", patched.Content)
	assert.NotNil(s.t, patched.UpdatedAt)

	rec = s.do(http.MethodPut, "/api/blogs/"+created.ID.String(), alice.Token, map[string]string{"content": "Edited", "title": "  "})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	var put entity.PostView
	s.decode(rec, &put)
	assert.Equal(s.t, "Hello again", put.Title)
	assert.Equal(s.t, "Edited", put.Content)

	rec = s.do(http.MethodDelete, "/api/blogs/"+created.ID.String(), alice.Token, nil)
	require.Equal(s.t, http.StatusOK, rec.Code)
	assert.JSONEq(s.t, `{"message":"Blog deleted successfully"}`, rec.Body.String())

	s.assertError(s.do(http.MethodGet, "/api/blogs/"+created.ID.String(), "", nil), http.StatusNotFound, "POST_NOT_FOUND")
	s.assertError(s.do(http.MethodDelete, "/api/blogs/"+created.ID.String(), alice.Token, nil), http.StatusNotFound, "POST_NOT_FOUND")
}

func TestPostContentIsStoredVerbatim(t *testing.T) {
	s := newTestAPI(t)
	alice := s.signup("alice@example.com", "Alice")

	content := "    indented code\n\nbody\n"
	created := s.createPost(alice.Token, "  Spaced title ", content)
	assert.Equal(t, content, created.Content)
	assert.Equal(t, "  Spaced title ", created.Title)

	path := "/api/blogs/" + created.ID.String()
	rec := s.do(http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched entity.PostView
	s.decode(rec, &fetched)
	assert.Equal(t, content, fetched.Content)
	assert.Equal(t, "  Spaced title ", fetched.Title)

	rec = s.do(http.MethodPatch, path, alice.Token, map[string]string{"content": "  patched  "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var patched entity.PostView
	s.decode(rec, &patched)
	assert.Equal(t, "  patched  ", patched.Content)
}

func TestCreateValidation(t *testing.T) {
	s := newTestAPI(t)

	alice := s.signup("alice@example.com", "Alice")

	rec := s.do(http.MethodPost, "/api/blogs", alice.Token, map[string]string{"title": "   ", "content": "body"})

	s.assertError(rec, http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestOwnership(t *testing.T) {
	s := newTestAPI(t)

	alice := s.signup("alice@example.com", "Alice")
	mallory := s.signup("mallory@example.com", "Mallory")

	post := s.createPost(alice.Token, "Mine", "Hands off")
	path := "/api/blogs/" + post.ID.String()

	s.assertError(s.do(http.MethodPatch, path, mallory.Token, map[string]string{"title": "Pwned"}), http.StatusForbidden, "POST_OWNERSHIP_VIOLATION")
	s.assertError(s.do(http.MethodDelete, path, mallory.Token, nil), http.StatusForbidden, "POST_OWNERSHIP_VIOLATION")

	rec := s.do(http.MethodGet, path, mallory.Token, nil)
	require.Equal(s.t, http.StatusOK, rec.Code)
	var view entity.PostView
	s.decode(rec, &view)
	assert.Equal(s.t, "Mine", view.Title)
}

func TestUnknownPost(t *testing.T) {
	s := newTestAPI(t)

	alice := s.signup("alice@example.com", "Alice")

	s.assertError(s.do(http.MethodGet, "/api/blogs/not-a-uuid", "", nil), http.StatusNotFound, "POST_NOT_FOUND")
	s.assertError(s.do(http.MethodGet, "/api/blogs/0190a6f8-0000-7000-8000-000000000000", "", nil), http.StatusNotFound, "POST_NOT_FOUND")
	s.assertError(s.do(http.MethodPatch, "/api/blogs/0190a6f8-0000-7000-8000-000000000000", alice.Token, map[string]string{"title": "x"}), http.StatusNotFound, "POST_NOT_FOUND")
}

func TestPagination(t *testing.T) {
	s := newTestAPI(t)

	alice := s.signup("alice@example.com", "Alice")
	bob := s.signup("bob@example.com", "Bobby")

	for i := range 15 {
		token := alice.Token
		if i%3 == 0 {
			token = bob.Token
		}
		s.createPost(token, fmt.Sprintf("Post %02d", i), "body")
	}

	var first, second, beyond entity.Page[entity.PostView]

	rec := s.do(http.MethodGet, "/api/blogs?page=0&size=10", "", nil)
	require.Equal(s.t, http.StatusOK, rec.Code)
	s.decode(rec, &first)

	rec = s.do(http.MethodGet, "/api/blogs?page=1&size=10", "", nil)
	require.Equal(s.t, http.StatusOK, rec.Code)
	s.decode(rec, &second)

	rec = s.do(http.MethodGet, "/api/blogs?page=2&size=10", "", nil)
	require.Equal(s.t, http.StatusOK, rec.Code)
	s.decode(rec, &beyond)

	assert.Len(s.t, first.Content, 10)
	assert.Len(s.t, second.Content, 5)
	assert.Empty(s.t, beyond.Content)
	assert.EqualValues(s.t, 15, first.TotalElements)
	assert.Equal(s.t, 2, first.TotalPages)

	titles := make([]string, 0, 15)
	for _, view := range append(first.Content, second.Content...) {
		titles = append(titles, view.Title)
	}
	for i, title := range titles {
		assert.Equal(s.t, fmt.Sprintf("Post %02d", i), title)
	}
	assert.Equal(s.t, "Bobby", first.Content[0].AuthorName)
	assert.Equal(s.t, "Alice", first.Content[1].AuthorName)

	var mine entity.Page[entity.PostView]
	rec = s.do(http.MethodGet, "/api/me/blogs?size=3", bob.Token, nil)
	require.Equal(s.t, http.StatusOK, rec.Code)
	s.decode(rec, &mine)
	assert.EqualValues(s.t, 5, mine.TotalElements)
	assert.Len(s.t, mine.Content, 3)
	for _, view := range mine.Content {
		assert.Equal(s.t, "Bobby", view.AuthorName)
	}
}

func TestPaginationDefaultsAndBounds(t *testing.T) {
	s := newTestAPI(t)

	alice := s.signup("alice@example.com", "Alice")
	for i := range 12 {
		s.createPost(alice.Token, fmt.Sprintf("Post %02d", i), "body")
	}

	var page entity.Page[entity.PostView]
	rec := s.do(http.MethodGet, "/api/blogs", "", nil)
	require.Equal(s.t, http.StatusOK, rec.Code)
	s.decode(rec, &page)
	assert.Equal(s.t, 0, page.Page)
	assert.Equal(s.t, 10, page.Size)
	assert.Len(s.t, page.Content, 10)

	rec = s.do(http.MethodGet, "/api/blogs?size=1000", "", nil)
	require.Equal(s.t, http.StatusOK, rec.Code)
	s.decode(rec, &page)
	assert.Equal(s.t, 50, page.Size)
	assert.Len(s.t, page.Content, 12)

	s.assertError(s.do(http.MethodGet, "/api/blogs?page=-1", "", nil), http.StatusBadRequest, "VALIDATION_FAILED")
	s.assertError(s.do(http.MethodGet, "/api/blogs?size=abc", "", nil), http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestAPI(t)

	s.assertError(s.do(http.MethodGet, "/api/nothing", "", nil), http.StatusNotFound, "NOT_FOUND")
}

func TestErrorEnvelopeHidesInternalErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := echo.New()
	e.HTTPErrorHandler = apimiddleware.NewErrorMiddleware(logger).HandleHTTPError
	e.GET("/boom", func(echo.Context) error {
		return errors.New("dial tcp 10.0.0.1:5432: connection refused")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.1")

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Equal(t, "Internal server error", body.Error.Message)
}
