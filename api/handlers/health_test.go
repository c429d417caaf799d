package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/OperacionalChopp/botchopp/internal/knowledge"
	"github.com/OperacionalChopp/botchopp/internal/queue"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type healthResponse struct {
	Status           string            `json:"status"`
	Service          string            `json:"service"`
	Timestamp        string            `json:"timestamp"`
	KnowledgeEntries int               `json:"knowledge_entries"`
	Checks           map[string]string `json:"checks"`
	QueueDepth       *int64            `json:"queue_depth"`
}

func checkHealth(t *testing.T, deps HealthDependencies) (int, healthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/health", NewHealthHandler(deps, testLogger()).Check)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var response healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	return rec.Code, response
}

func testBase(t *testing.T) *knowledge.Base {
	t.Helper()
	base, err := knowledge.NewBase([]knowledge.Entry{
		{ID: "1", Question: "Horário", Answer: "Das 9h às 18h.", Keywords: []string{"horário"}},
		{ID: "2", Question: "Pagamento", Answer: "Pix e cartão.", Keywords: []string{"pix"}},
	}, nil)
	require.NoError(t, err)
	return base
}

func TestHealthHandler_Check(t *testing.T) {
	q := queue.NewMemoryQueue(4)
	require.NoError(t, q.Enqueue(t.Context(), queue.NewJob(queue.KindTelegramUpdate, 1, []byte(`{}`))))

	code, response := checkHealth(t, HealthDependencies{Knowledge: testBase(t), Queue: q})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "botchopp", response.Service)
	assert.NotEmpty(t, response.Timestamp)
	assert.Equal(t, 2, response.KnowledgeEntries)
	assert.Equal(t, map[string]string{"database": "disabled", "redis": "disabled"}, response.Checks)
	require.NotNil(t, response.QueueDepth)
	assert.Equal(t, int64(1), *response.QueueDepth)
}

func TestHealthHandler_EmptyKnowledgeBase(t *testing.T) {
	code, response := checkHealth(t, HealthDependencies{})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", response.Status)
	assert.Zero(t, response.KnowledgeEntries)
	assert.Nil(t, response.QueueDepth)
}

func TestHealthHandler_RedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	code, response := checkHealth(t, HealthDependencies{Knowledge: testBase(t), Redis: client})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "error", response.Status)
	assert.Equal(t, "error", response.Checks["redis"])
}
