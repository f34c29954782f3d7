package identity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/identity"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	m, err := identity.NewManager("s3cret", time.Hour)
	require.NoError(t, err)

	who := domain.Identity{UID: "hr-1", Email: "hr@acme.test", Role: domain.RoleHR, CompanyID: "acme"}
	token, err := m.Issue(who)
	require.NoError(t, err)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, who, got)

	_, err = m.Issue(domain.SystemIdentity())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVerifyRejects(t *testing.T) {
	m, err := identity.NewManager("s3cret", time.Hour)
	require.NoError(t, err)
	other, err := identity.NewManager("different", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue(domain.Identity{UID: "u1", Role: domain.RoleCandidate})
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, identity.Claims{
		UID:  "u1",
		Role: "candidate",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredRaw, err := expired.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	badRole := jwt.NewWithClaims(jwt.SigningMethodHS256, identity.Claims{UID: "u1", Role: "wizard"})
	badRoleRaw, err := badRole.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"empty":    "",
		"garbage":  "not.a.token",
		"foreign":  foreign,
		"expired":  expiredRaw,
		"bad role": badRoleRaw,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(raw)
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}

func TestVerifyFallsBackToSubject(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, identity.Claims{
		Role:             "User",
		Email:            "c@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "cand-7"},
	})
	raw, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)

	m, err := identity.NewManager("k", 0)
	require.NoError(t, err)
	who, err := m.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "cand-7", who.UID)
	assert.Equal(t, domain.RoleCandidate, who.Role)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, err := identity.NewManager("s3cret", time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.Use(identity.Middleware(m))
	r.GET("/me", func(c *gin.Context) {
		who, ok := identity.FromGin(c)
		require.True(t, ok)
		fromCtx, ok := identity.FromContext(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, who, fromCtx)
		c.String(http.StatusOK, who.UID)
	})

	token, err := m.Issue(domain.Identity{UID: "cand-1", Email: "c@example.com", Role: domain.RoleCandidate})
	require.NoError(t, err)

	t.Run("bearer", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "cand-1", w.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
		req.AddCookie(&http.Cookie{Name: identity.CookieName, Value: token})
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", http.NoBody))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"unauthenticated"`)
	})
}
