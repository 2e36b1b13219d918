package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/artschool-api/internal/models"
	"github.com/noah-isme/artschool-api/internal/service"
	appErrors "github.com/noah-isme/artschool-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
	seen   string
}

func (s *stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	s.seen = token
	return s.claims, s.err
}

func serve(r *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	validator := &stubValidator{claims: &models.JWTClaims{Email: "office@artschool.test", Role: models.RoleAdmin}}
	r := gin.New()
	r.Use(JWT(validator), RequireRoles(models.RoleAdmin))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, CurrentUser(c).Email) })

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/x", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/x", "Basic abc").Code)

	w := serve(r, http.MethodGet, "/x", "Bearer good-token")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "office@artschool.test", w.Body.String())
	assert.Equal(t, "good-token", validator.seen)

	validator.err = appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/x", "Bearer bad").Code)
}

func TestRequireRolesForbidsOtherRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWT(&stubValidator{claims: &models.JWTClaims{Role: "VIEWER"}}), RequireRoles(models.RoleAdmin))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/x", "Bearer t").Code)
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OptionalJWT(&stubValidator{err: errors.New("expired")}))
	r.GET("/x", func(c *gin.Context) {
		assert.Nil(t, CurrentUser(c))
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", "Bearer t").Code)
}

func TestAuditLogsSuccessfulMutationsOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.POST("/enrollments/:id/drop", Audit(zap.New(core), "drop", "enrollment"), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/enrollments/:id/complete", Audit(zap.New(core), "complete", "enrollment"), func(c *gin.Context) { c.Status(http.StatusConflict) })

	serve(r, http.MethodPost, "/enrollments/7/drop", "")
	serve(r, http.MethodPost, "/enrollments/7/complete", "")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "drop", fields["action"])
	assert.Equal(t, "7", fields["resource_id"])
	assert.Equal(t, "anonymous", fields["actor"])
}

func TestMetricsLabelsUnmatchedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics, "/health"))
	r.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, http.MethodGet, "/students/1", "")
	serve(r, http.MethodGet, "/nope", "")
	serve(r, http.MethodGet, "/health", "")

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	paths := map[string]bool{}
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "path" {
					paths[label.GetValue()] = true
				}
			}
		}
	}
	assert.True(t, paths["/students/:id"])
	assert.True(t, paths["unmatched"])
	assert.False(t, paths["/health"])
}

func TestResponseMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(WithResponseMeta())
	var meta map[string]interface{}
	r.GET("/plain", func(c *gin.Context) {
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})
	r.GET("/cached", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	serve(r, http.MethodGet, "/plain", "")
	assert.Nil(t, meta)

	serve(r, http.MethodGet, "/cached", "")
	require.NotNil(t, meta)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
}
