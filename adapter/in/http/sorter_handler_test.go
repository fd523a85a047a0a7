package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"sorter_server/adapter/out/corpus"
	sample "sorter_server/adapter/out/inbox"
	"sorter_server/adapter/out/persistence"
	"sorter_server/core/domain"
	"sorter_server/core/port/in"
	"sorter_server/core/port/out"
	"sorter_server/core/service/classification"
	"sorter_server/core/service/inbox"
	"sorter_server/core/service/sorter"
	"sorter_server/infra/middleware"
	"sorter_server/pkg/cache"
	"sorter_server/pkg/snowflake"
)

type queue struct{ jobs []*out.InboxJob }

func (q *queue) PublishInbox(_ context.Context, job *out.InboxJob) error {
	q.jobs = append(q.jobs, job)
	return nil
}

type testServer struct {
	app    *fiber.App
	sorter *sorter.Service
	repo   *persistence.MemoryFolderAdapter
}

func newTestServer(t *testing.T, publisher out.InboxPublisher) *testServer {
	t.Helper()
	p, err := classification.NewPipeline(classification.ReferenceCorpus(), classification.DefaultModelConfig())
	require.NoError(t, err)
	ids, err := snowflake.NewGenerator(1)
	require.NoError(t, err)

	sorterSvc := sorter.NewService(p, corpus.NewSource(""), cache.NewMemoryCache(64), nil, nil, sorter.Config{
		CacheTTL:     time.Minute,
		Eval:         classification.DefaultEvalConfig(),
		EvalOnReload: true,
	})
	sorterSvc.SetReportRepository(persistence.NewMemoryReportAdapter(10))
	repo := persistence.NewMemoryFolderAdapter()
	inboxSvc := inbox.NewService(sorterSvc, repo, sample.NewSampleSource(), publisher, ids)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	app.Use(middleware.RequestID())
	NewLegacyHandler(sorterSvc, inboxSvc, 256).Register(app)
	NewAPIHandler(sorterSvc, inboxSvc, 256).Register(app.Group("/api/v1"))
	NewHealthHandler(sorterSvc, nil, nil).Register(app)
	NewMetricsHandler(sorterSvc.Latency(), sorterSvc.Counters()).
		WithGauge("build", func() any { return "test" }).
		Register(app)

	return &testServer{app: app, sorter: sorterSvc, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(r, 10_000)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestSuggest(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		folder string
	}{
		{"urgent", `{"email_text":"Server outage: unexpected downtime on cluster A"}`, 200, "Urgent"},
		{"spam", `{"email_text":"Exclusive: You have been selected for a prize!"}`, 200, "Spam"},
		{"missing", `{}`, 400, ""},
		{"blank", `{"email_text":"   "}`, 400, ""},
		{"wrong type", `{"email_text":42}`, 400, ""},
		{"too long", `{"email_text":"` + strings.Repeat("a", 300) + `"}`, 413, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := srv.do(t, "POST", "/suggest", tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}

			var got struct {
				Folder      string   `json:"folder"`
				Suggestions []string `json:"suggestions"`
				Error       string   `json:"error"`
			}
			require.NoError(t, json.Unmarshal(body, &got))
			if tt.status == 200 {
				require.Equal(t, tt.folder, got.Folder)
				require.Len(t, got.Suggestions, 3)
			} else if tt.status == 400 {
				require.Equal(t, "email_text required", got.Error)
			}
		})
	}
}

func TestAutoFetch(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t, nil)

	var got struct {
		Emails map[string][]string `json:"emails"`
	}
	for i := 0; i < 2; i++ {
		resp, body := srv.do(t, "GET", "/auto_fetch", "")
		req.Equal(200, resp.StatusCode)
		req.NoError(json.Unmarshal(body, &got))
	}

	req.Equal([]string{
		"Reminder: Project report is due by end of day",
		"Server outage: unexpected downtime on cluster A",
	}, got.Emails["Urgent"])
	req.Equal([]string{"Exclusive: You have been selected for a prize!"}, got.Emails["Spam"])
	req.Len(got.Emails["Routine"], 2)
	req.Equal([]string{"Candidate submission: new resume for developer role"}, got.Emails["Custom"])
}

func TestClassify(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t, nil)

	resp, body := srv.do(t, "POST", "/api/v1/classify", `{"text":"Free loan approval now"}`)
	req.Equal(200, resp.StatusCode, string(body))

	var got domain.Classification
	req.NoError(json.Unmarshal(body, &got))
	req.Equal(domain.LabelSpam, got.Label)
	req.Len(got.Probabilities, 4)
	sum := 0.0
	for _, p := range got.Probabilities {
		sum += p
	}
	req.InDelta(1.0, sum, 1e-9)
	req.False(got.Cached)

	_, body = srv.do(t, "POST", "/api/v1/classify", `{"text":"Free loan approval now"}`)
	req.NoError(json.Unmarshal(body, &got))
	req.True(got.Cached)
}

func TestClassify_Errors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing", `{}`, 400, "MISSING_FIELD"},
		{"blank", `{"text":"  \n"}`, 400, "INVALID_INPUT"},
		{"malformed", `{"text":`, 400, "BAD_REQUEST"},
		{"too long", `{"text":"` + strings.Repeat("b", 257) + `"}`, 400, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := srv.do(t, "POST", "/api/v1/classify", tt.body)
			require.Equal(t, tt.status, resp.StatusCode)
			var e middleware.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &e))
			require.Equal(t, tt.code, e.Error.Code)
		})
	}
}

func TestInboxAndFolders(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t, nil)

	resp, body := srv.do(t, "POST", "/api/v1/inbox", `{"text":"Urgent: Server downtime alert"}`)
	req.Equal(201, resp.StatusCode, string(body))
	var res in.SubmitResult
	req.NoError(json.Unmarshal(body, &res))
	req.False(res.Queued)
	req.Equal(domain.LabelUrgent, res.Message.Folder)

	resp, body = srv.do(t, "GET", "/api/v1/folders", "")
	req.Equal(200, resp.StatusCode)
	var folders struct {
		Folders map[string][]string `json:"folders"`
	}
	req.NoError(json.Unmarshal(body, &folders))
	req.Equal([]string{"Urgent: Server downtime alert"}, folders.Folders["Urgent"])
	req.Empty(folders.Folders["Spam"])
}

func TestInbox_Queued(t *testing.T) {
	req := require.New(t)
	q := &queue{}
	srv := newTestServer(t, q)

	resp, body := srv.do(t, "POST", "/api/v1/inbox", `{"text":"Weekly newsletter"}`)

	req.Equal(202, resp.StatusCode, string(body))
	req.Len(q.jobs, 1)
	req.Equal("Weekly newsletter", q.jobs[0].Text)
}

func TestModelAndReload(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t, nil)

	resp, body := srv.do(t, "GET", "/api/v1/model", "")
	req.Equal(200, resp.StatusCode)
	var status struct {
		Model struct {
			Version        string   `json:"version"`
			Labels         []string `json:"labels"`
			VocabularySize int      `json:"vocabulary_size"`
		} `json:"model"`
		Evaluation *struct {
			TestSize int `json:"test_size"`
		} `json:"evaluation"`
	}
	req.NoError(json.Unmarshal(body, &status))
	req.Equal([]string{"Custom", "Routine", "Spam", "Urgent"}, status.Model.Labels)
	req.Equal(252, status.Model.VocabularySize)
	req.Nil(status.Evaluation)

	resp, body = srv.do(t, "POST", "/api/v1/model/reload", "")
	req.Equal(200, resp.StatusCode, string(body))
	req.NoError(json.Unmarshal(body, &status))
	req.NotNil(status.Evaluation)
	req.Equal(4, status.Evaluation.TestSize)

	resp, body = srv.do(t, "GET", "/api/v1/labels", "")
	req.Equal(200, resp.StatusCode)
	req.JSONEq(`{"labels":["Custom","Routine","Spam","Urgent"],"count":4}`, string(body))
}

func TestHealthReadyMetrics(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t, nil)

	resp, _ := srv.do(t, "GET", "/health", "")
	req.Equal(200, resp.StatusCode)

	resp, body := srv.do(t, "GET", "/ready", "")
	req.Equal(200, resp.StatusCode)
	var ready struct {
		Checks map[string]string `json:"checks"`
	}
	req.NoError(json.Unmarshal(body, &ready))
	req.Len(ready.Checks["model"], 12)
	req.Equal("not configured", ready.Checks["postgres"])

	srv.do(t, "POST", "/suggest", `{"email_text":"Server outage"}`)
	resp, body = srv.do(t, "GET", "/metrics", "")
	req.Equal(200, resp.StatusCode)
	var m struct {
		Latency  map[string]map[string]any `json:"latency"`
		Counters struct {
			Labels map[string]int64 `json:"labels"`
		} `json:"counters"`
		Build string `json:"build"`
	}
	req.NoError(json.Unmarshal(body, &m))
	req.Contains(m.Latency, sorter.OpSuggest)
	req.Equal(int64(1), m.Counters.Labels["Urgent"])
	req.Equal("test", m.Build)
}

func TestModelEvaluations(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t, nil)

	resp, body := srv.do(t, "GET", "/api/v1/model/evaluations", "")
	req.Equal(200, resp.StatusCode, string(body))
	req.JSONEq(`{"evaluations":[],"count":0}`, string(body))

	resp, body = srv.do(t, "POST", "/api/v1/model/reload", "")
	req.Equal(200, resp.StatusCode, string(body))

	resp, body = srv.do(t, "GET", "/api/v1/model/evaluations?limit=5", "")
	req.Equal(200, resp.StatusCode, string(body))
	var got struct {
		Evaluations []out.EvaluationRecord `json:"evaluations"`
		Count       int                    `json:"count"`
	}
	req.NoError(json.Unmarshal(body, &got))
	req.Equal(1, got.Count)
	req.Equal(out.TriggerReload, got.Evaluations[0].Trigger)
	req.Equal(4, got.Evaluations[0].Report.TestSize)

	resp, _ = srv.do(t, "GET", "/api/v1/model/evaluations?limit=0", "")
	req.Equal(400, resp.StatusCode)
}
