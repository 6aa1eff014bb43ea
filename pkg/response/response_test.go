package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bilishelf-api/internal/models"
	appErrors "github.com/noah-isme/bilishelf-api/pkg/errors"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestJSONEnvelope(t *testing.T) {
	c, w := testContext()
	JSON(c, http.StatusOK, []int{1}, &models.Pagination{Page: 1, PageSize: 10, TotalCount: 1}, map[string]interface{}{"cache_hit": true})

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{float64(1)}, body["data"])
	assert.Equal(t, float64(1), body["pagination"].(map[string]interface{})["total_count"])
	assert.Equal(t, true, body["meta"].(map[string]interface{})["cache_hit"])
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestErrorEnvelope(t *testing.T) {
	c, w := testContext()
	Error(c, appErrors.Clone(appErrors.ErrRiskControlled, "blocked"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":{"code":"RISK_CONTROLLED","message":"blocked","status":429}}`, w.Body.String())
	assert.Len(t, c.Errors, 1)

	c, w = testContext()
	Error(c, errors.New("db down"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAttachment(t *testing.T) {
	c, w := testContext()
	Attachment(c, "bilishelf-export.csv", "text/csv;charset=utf-8", []byte("a,b"))
	assert.Equal(t, `attachment; filename="bilishelf-export.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv;charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "a,b", w.Body.String())
}
