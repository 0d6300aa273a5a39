package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soybean-go/admin-core/sdk/config"
	"github.com/soybean-go/admin-core/sdk/pkg/jwtauth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubEnforcer scripts per-subject verdicts and records evaluation order.
type stubEnforcer struct {
	verdicts map[string]bool
	errOn    map[string]bool
	calls    []string
}

func (s *stubEnforcer) EnforceWithDomain(subject, domain, object, action string) (bool, error) {
	s.calls = append(s.calls, subject)
	if s.errOn[subject] {
		return false, errors.New("policy store unavailable")
	}
	return s.verdicts[subject], nil
}

func (s *stubEnforcer) Enforce(subject, object, action string) (bool, error) {
	return s.EnforceWithDomain(subject, "", object, action)
}

// serve runs one GET request through JwtAuth-free pipeline: the identity
// (if any) is injected directly, mirroring what the auth stage does.
func serve(t *testing.T, enforcer PolicyEnforcer, identity *Identity) (*httptest.ResponseRecorder, *bool) {
	t.Helper()
	handlerRan := false

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if identity != nil {
			c.Set(IdentityKey, *identity)
		}
		c.Next()
	})
	r.Use(AuthCheck(enforcer, true))
	r.GET("/user/:id", func(c *gin.Context) {
		handlerRan = true
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/user/7", nil)
	r.ServeHTTP(w, req)
	return w, &handlerRan
}

func TestAuthCheck_NoIdentity(t *testing.T) {
	e := &stubEnforcer{}
	w, handlerRan := serve(t, e, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *handlerRan)
	assert.Empty(t, e.calls, "无身份时不应调用判定引擎")
}

func TestAuthCheck_EmptySubjects(t *testing.T) {
	e := &stubEnforcer{}
	w, handlerRan := serve(t, e, &Identity{Subjects: nil, Domain: "built-in"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, *handlerRan)
	assert.Empty(t, e.calls)
}

func TestAuthCheck_AllowedStopsAtFirstMatch(t *testing.T) {
	e := &stubEnforcer{verdicts: map[string]bool{"editor": true}}
	w, handlerRan := serve(t, e, &Identity{
		Subjects: []string{"guest", "editor", "admin"},
		Domain:   "built-in",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, *handlerRan)
	// 命中后剩余主体不再检查
	assert.Equal(t, []string{"guest", "editor"}, e.calls)
}

func TestAuthCheck_Denied(t *testing.T) {
	e := &stubEnforcer{}
	w, handlerRan := serve(t, e, &Identity{
		Subjects: []string{"guest", "viewer"},
		Domain:   "built-in",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, *handlerRan)
	assert.Equal(t, []string{"guest", "viewer"}, e.calls)
	// 响应体不泄露规则细节
	assert.NotContains(t, w.Body.String(), "guest")
}

func TestAuthCheck_FailClosedOnEnforcementError(t *testing.T) {
	// 三个主体中第二个判定出错：返回 502，第三个主体不再评估
	e := &stubEnforcer{
		verdicts: map[string]bool{"admin": true},
		errOn:    map[string]bool{"editor": true},
	}
	w, handlerRan := serve(t, e, &Identity{
		Subjects: []string{"guest", "editor", "admin"},
		Domain:   "built-in",
	})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.False(t, *handlerRan, "判定出错时请求不得放行")
	assert.Equal(t, []string{"guest", "editor"}, e.calls)
	assert.NotContains(t, w.Body.String(), "unavailable", "底层原因不进响应体")
}

func TestJwtAuth_AttachesIdentity(t *testing.T) {
	cfg := &config.JWT{
		Secret:   "test-secret",
		Issuer:   "admin-core",
		Audience: "management-platform",
		Timeout:  3600,
	}
	token, err := jwtauth.Generate(cfg, "user-1", "alice", []string{"editor"}, "built-in", "")
	require.NoError(t, err)

	var got Identity
	r := gin.New()
	r.Use(JwtAuth(cfg))
	r.GET("/ping", func(c *gin.Context) {
		v, _ := c.Get(IdentityKey)
		got = v.(Identity)
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"editor"}, got.Subjects)
	assert.Equal(t, "built-in", got.Domain)
}

func TestJwtAuth_MissingOrInvalidToken(t *testing.T) {
	cfg := &config.JWT{Secret: "test-secret", Timeout: 3600}

	r := gin.New()
	r.Use(JwtAuth(cfg))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// 无 Authorization 头
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 伪造 token
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer forged.token.value")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
