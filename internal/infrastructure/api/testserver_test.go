package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test-secret"

type fakeUser struct {
	ID           string
	Name         string
	Role         string
	PasswordHash string
}

// fakeBackend simulates the SnapMatch backend for client tests: credential
// login, token-guarded identity lookup, and scripted match-job sequences.
type fakeBackend struct {
	mu      sync.Mutex
	users   map[string]fakeUser              // keyed by email
	matches map[string][]matchStatusResponse // queryID → remaining poll responses
	revoked map[string]bool                  // tokens treated as expired
	// legacyErrors switches auth failures to message-text only, with no
	// structured code, exercising the heuristic fallback.
	legacyErrors bool

	lastAuthHeader string
	srv            *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	b := &fakeBackend{
		users: map[string]fakeUser{
			"ana@example.com": {ID: "u_1", Name: "Ana", Role: "GUEST", PasswordHash: string(hash)},
			"leo@example.com": {ID: "u_7", Name: "Leo", Role: "PHOTOGRAPHER", PasswordHash: string(hash)},
		},
		matches: make(map[string][]matchStatusResponse),
		revoked: make(map[string]bool),
	}

	e := echo.New()
	e.HideBanner = true
	e.POST("/auth/login", b.handleLogin)
	e.GET("/auth/me", b.handleMe)
	e.POST("/auth/logout", b.handleLogout)
	e.GET("/guest/matches/:queryId", b.handleMatchStatus)
	e.GET("/guest/events/:eventId/my-photos", b.handleMyPhotos)
	e.POST("/guest/events/:eventId/match", b.handleSubmitMatch)

	b.srv = httptest.NewServer(e)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) url() string { return b.srv.URL }

// script queues the poll responses returned for queryID, in order; the last
// one repeats once the script is exhausted.
func (b *fakeBackend) script(queryID string, responses ...matchStatusResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.matches[queryID] = responses
}

func (b *fakeBackend) revoke(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[token] = true
}

func (b *fakeBackend) mintToken(t *testing.T, email string) string {
	t.Helper()
	u := b.users[email]
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   email,
		"name":    u.Name,
		"role":    u.Role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func (b *fakeBackend) authError(c echo.Context) error {
	if b.legacyErrors {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Please sign in to continue"})
	}
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error": "authentication required",
		"code":  "AUTH_REQUIRED",
	})
}

// authenticate validates the bearer token. On failure it writes the auth
// error response itself and reports ok=false.
func (b *fakeBackend) authenticate(c echo.Context) (jwt.MapClaims, bool) {
	header := c.Request().Header.Get("Authorization")
	b.mu.Lock()
	b.lastAuthHeader = header
	b.mu.Unlock()

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		_ = b.authError(c)
		return nil, false
	}

	b.mu.Lock()
	revoked := b.revoked[parts[1]]
	b.mu.Unlock()
	if revoked {
		_ = b.authError(c)
		return nil, false
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(parts[1], claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	if err != nil || !tkn.Valid {
		_ = b.authError(c)
		return nil, false
	}
	return claims, true
}

func (b *fakeBackend) handleLogin(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	u, ok := b.users[req.Email]
	if !ok || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"token":   b.mintTokenQuiet(req.Email),
		"role":    u.Role,
		"email":   req.Email,
		"user_id": u.ID,
		"name":    u.Name,
	})
}

func (b *fakeBackend) mintTokenQuiet(email string) string {
	u := b.users[email]
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"email":   email,
		"name":    u.Name,
		"role":    u.Role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	return token
}

func (b *fakeBackend) handleMe(c echo.Context) error {
	claims, ok := b.authenticate(c)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, map[string]any{
		"user_id": claims["user_id"],
		"email":   claims["email"],
		"name":    claims["name"],
		"role":    claims["role"],
	})
}

func (b *fakeBackend) handleLogout(c echo.Context) error {
	if _, ok := b.authenticate(c); !ok {
		return nil
	}
	return c.NoContent(http.StatusNoContent)
}

func (b *fakeBackend) nextMatchResponse(queryID string) (matchStatusResponse, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	seq, ok := b.matches[queryID]
	if !ok || len(seq) == 0 {
		return matchStatusResponse{}, false
	}
	res := seq[0]
	if len(seq) > 1 {
		b.matches[queryID] = seq[1:]
	}
	return res, true
}

func (b *fakeBackend) handleMatchStatus(c echo.Context) error {
	if _, ok := b.authenticate(c); !ok {
		return nil
	}
	res, ok := b.nextMatchResponse(c.Param("queryId"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "match query not found"})
	}
	return c.JSON(http.StatusOK, res)
}

func (b *fakeBackend) handleMyPhotos(c echo.Context) error {
	if _, ok := b.authenticate(c); !ok {
		return nil
	}
	res, ok := b.nextMatchResponse("event:" + c.Param("eventId"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "event not found"})
	}
	return c.JSON(http.StatusOK, res)
}

func (b *fakeBackend) handleSubmitMatch(c echo.Context) error {
	if _, ok := b.authenticate(c); !ok {
		return nil
	}
	var req struct {
		SelfieURL string `json:"selfie_url"`
	}
	if err := c.Bind(&req); err != nil || req.SelfieURL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "selfie_url is required"})
	}
	return c.JSON(http.StatusAccepted, map[string]string{
		"query_id": "q_new",
		"status":   "queued",
	})
}
