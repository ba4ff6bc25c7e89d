package httptransport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propflow/internal/ingest/pipeline"
	"propflow/internal/ingest/sources"
	"propflow/internal/property"
)

// fakeManager scripts manager responses per source name.
type fakeManager struct {
	summaries map[sources.SourceName]property.RunSummary
	order     []sources.SourceName
}

func (m *fakeManager) RunPipeline(_ context.Context, name sources.SourceName) (property.RunSummary, error) {
	s, ok := m.summaries[name]
	if !ok {
		return property.RunSummary{}, fmt.Errorf("%w: %s", pipeline.ErrPipelineNotFound, name)
	}
	return s, nil
}

func (m *fakeManager) RunAll(_ context.Context) []property.RunSummary {
	out := make([]property.RunSummary, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.summaries[name])
	}
	return out
}

func (m *fakeManager) Sources() []sources.SourceName { return m.order }

func newTestRouter() (http.Handler, *fakeManager) {
	mgr := &fakeManager{
		summaries: map[sources.SourceName]property.RunSummary{
			"attom": {RunID: uuid.New(), Source: "attom", Success: true, Processed: 5, Added: 5},
			"mock":  {RunID: uuid.New(), Source: "mock", Success: true, Processed: 3, Added: 3},
		},
		order: []sources.SourceName{"attom", "mock"},
	}
	return NewRouter(NewHandler(mgr, nil)), mgr
}

func TestListPipelines(t *testing.T) {
	router, _ := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/pipelines", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Sources []string `json:"sources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"attom", "mock"}, body.Sources)
}

func TestRunPipeline(t *testing.T) {
	router, mgr := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/pipelines/attom/run", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var summary property.RunSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, mgr.summaries["attom"].RunID, summary.RunID)
	assert.True(t, summary.Success)
	assert.Equal(t, 5, summary.Processed)
}

func TestRunPipelineUnknownSource(t *testing.T) {
	router, _ := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/pipelines/zillow/run", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "zillow")
}

func TestRunAllPipelines(t *testing.T) {
	router, _ := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/pipelines/run", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Runs []property.RunSummary `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Runs, 2)
	assert.Equal(t, "attom", body.Runs[0].Source)
	assert.Equal(t, "mock", body.Runs[1].Source)
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
