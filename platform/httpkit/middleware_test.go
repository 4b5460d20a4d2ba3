package httpkit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/y0shih/AlertMe-Nest/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

type testJWTConfig struct{}

func (testJWTConfig) GetJWTSecret() string   { return testSecret }
func (testJWTConfig) GetJWTAudience() string { return "authenticated" }

type testResolver struct {
	userID uuid.UUID
	role   string
	err    error
}

func (r testResolver) ResolveSubject(context.Context, string, string) (uuid.UUID, string, error) {
	return r.userID, r.role, r.err
}

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "idp-user-1",
		"email": "staff@example.com",
		"aud":   "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func newAuthEngine(resolver SubjectResolver, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	group := engine.Group("/", AuthRequired(testJWTConfig{}, resolver))
	if len(roles) > 0 {
		group.Use(RequireAnyRole(roles...))
	}
	group.GET("/whoami", func(c *gin.Context) {
		id := MustGetIdentity(c)
		if id == nil {
			return
		}
		OK(c, gin.H{"userId": id.UserID(), "roles": id.Roles()})
	})
	return engine
}

func doRequest(engine *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	userID := uuid.New()
	engine := newAuthEngine(testResolver{userID: userID, role: "staff"})

	rec := doRequest(engine, signToken(t, validClaims(), jwt.SigningMethodHS256))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		UserID uuid.UUID `json:"userId"`
		Roles  []string  `json:"roles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.UserID != userID || len(body.Roles) != 1 || body.Roles[0] != "staff" {
		t.Fatalf("unexpected identity %+v", body)
	}
}

func TestAuthRequiredRejectsBadTokens(t *testing.T) {
	resolver := testResolver{userID: uuid.New(), role: "user"}

	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	wrongAudience := validClaims()
	wrongAudience["aud"] = "service_role"

	noExpiry := validClaims()
	delete(noExpiry, "exp")

	cases := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"expired", signToken(t, expired, jwt.SigningMethodHS256)},
		{"wrong audience", signToken(t, wrongAudience, jwt.SigningMethodHS256)},
		{"no expiry", signToken(t, noExpiry, jwt.SigningMethodHS256)},
		{"wrong algorithm", signToken(t, validClaims(), jwt.SigningMethodHS512)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(newAuthEngine(resolver), tc.token)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthRequiredUnknownSubjectIsUnauthorized(t *testing.T) {
	engine := newAuthEngine(testResolver{err: apperr.NotFound("identity not found")})
	rec := doRequest(engine, signToken(t, validClaims(), jwt.SigningMethodHS256))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRequiredResolverFailureIsServerError(t *testing.T) {
	engine := newAuthEngine(testResolver{err: errors.New("connection refused")})
	rec := doRequest(engine, signToken(t, validClaims(), jwt.SigningMethodHS256))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRequireAnyRole(t *testing.T) {
	token := signToken(t, validClaims(), jwt.SigningMethodHS256)

	citizen := newAuthEngine(testResolver{userID: uuid.New(), role: "user"}, "staff", "admin")
	if rec := doRequest(citizen, token); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for user role, got %d", rec.Code)
	}

	admin := newAuthEngine(testResolver{userID: uuid.New(), role: "admin"}, "staff", "admin")
	if rec := doRequest(admin, token); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin role, got %d", rec.Code)
	}
}

func TestHandleErrorMapsDomainKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{apperr.NotFoundf("report", "abc"), http.StatusNotFound},
		{apperr.Validation("lat out of range"), http.StatusBadRequest},
		{apperr.Conflict("email taken"), http.StatusConflict},
		{errors.Join(errors.New("context"), apperr.NotFound("task not found")), http.StatusNotFound},
		{errors.New("pq: connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		if !HandleError(c, tc.err) {
			t.Fatalf("expected HandleError to handle %v", tc.err)
		}
		if rec.Code != tc.status {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if HandleError(c, nil) {
		t.Fatal("expected nil error to be ignored")
	}
}
