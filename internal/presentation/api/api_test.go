package api

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	accountUseCase "github.com/hilthontt/doctrack/internal/application/usecases/account"
	documentUseCase "github.com/hilthontt/doctrack/internal/application/usecases/document"
	"github.com/hilthontt/doctrack/internal/domain"
	"github.com/hilthontt/doctrack/internal/infrastructure/configs"
	"github.com/hilthontt/doctrack/internal/infrastructure/logging"
	"github.com/hilthontt/doctrack/internal/infrastructure/metrics"
	"github.com/hilthontt/doctrack/internal/infrastructure/qrcode"
	"github.com/hilthontt/doctrack/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/doctrack/internal/infrastructure/repository"
	"github.com/hilthontt/doctrack/internal/infrastructure/security"
	"github.com/hilthontt/doctrack/internal/infrastructure/ws"
	accountsHandler "github.com/hilthontt/doctrack/internal/presentation/handler/accounts"
	documentsHandler "github.com/hilthontt/doctrack/internal/presentation/handler/documents"
	feedHandler "github.com/hilthontt/doctrack/internal/presentation/handler/feed"
	healthHandler "github.com/hilthontt/doctrack/internal/presentation/handler/health"
	"github.com/hilthontt/doctrack/internal/presentation/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler   http.Handler
	documents domain.DocumentRepository
	cfg       configs.Config
}

func newTestServer(t *testing.T, limiter ratelimiter.Limiter) *testServer {
	t.Helper()
	dir := t.TempDir()

	var cfg configs.Config
	cfg.HTTP.BaseURL = "http://docs.example"
	cfg.Storage.UsersFile = filepath.Join(dir, "users.xlsx")
	cfg.Storage.DocumentsFile = filepath.Join(dir, "output.xlsx")
	cfg.Storage.LogsDir = filepath.Join(dir, "logs")
	cfg.Storage.QRCodesDir = filepath.Join(dir, "qrcodes")

	logger := logging.NewLogger(&logging.LoggerConfig{Writer: io.Discard, Level: "error"})
	m := metrics.New()

	docs := repository.NewDocumentRepository(cfg.Storage.DocumentsFile)
	users := repository.NewUserRepository(cfg.Storage.UsersFile)
	audits := repository.NewAuditRepository(cfg.Storage.LogsDir)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	documents := documentUseCase.NewDocumentUseCase(
		documentUseCase.Config{BaseURL: cfg.HTTP.BaseURL},
		docs,
		audits,
		qrcode.NewGenerator(cfg.Storage.QRCodesDir, "M", 2),
		hub,
		m,
		logger,
	)
	accounts := accountUseCase.NewAccountUseCase(users, security.NewBcryptHasher(4), m, logger)

	renderer, err := views.New()
	require.NoError(t, err)

	app := NewApplication(
		cfg,
		documentsHandler.NewHandler(documents, renderer, logger),
		accountsHandler.NewHandler(accounts, renderer, logger),
		feedHandler.NewHandler(documents, hub, logger),
		healthHandler.NewHandler(nil),
		m,
		logger,
		limiter,
	)

	return &testServer{handler: app.Mount(), documents: docs, cfg: cfg}
}

func (s *testServer) do(t *testing.T, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) submit(t *testing.T, fields url.Values) domain.Document {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/submit", fields)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	docs, err := s.documents.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, docs)
	return docs[len(docs)-1]
}

func signupForm(email, department string) url.Values {
	return url.Values{
		"name":       {"Ada"},
		"email":      {email},
		"password":   {"s3cret"},
		"department": {department},
	}
}

func TestSignup(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/signup", signupForm("ada@example.com", "forensic"))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = s.do(t, http.MethodPost, "/signup", signupForm("ada@example.com", "admin"))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/signup", signupForm("", "admin"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/signup", signupForm("bob@example.com", "marketing"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusFound, s.do(t, http.MethodPost, "/signup", signupForm("ada@example.com", "forensic")).Code)

	rec := s.do(t, http.MethodPost, "/login", url.Values{
		"email": {"ada@example.com"}, "password": {"s3cret"}, "department": {"forensic"},
	})
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/department/forensic", rec.Header().Get("Location"))

	rec = s.do(t, http.MethodPost, "/login", url.Values{
		"email": {"ada@example.com"}, "password": {"wrong"}, "department": {"forensic"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/login", url.Values{
		"email": {"ada@example.com"}, "password": {"s3cret"}, "department": {"admin"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/login", url.Values{"email": {"ada@example.com"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFormPagesRender(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/", "/signup", "/login", "/NewDocument.html"} {
		rec := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html", path)
	}
}

func TestDepartment_UnknownIsNotFoundAndTouchesNothing(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/department/marketing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Department not found.")

	_, err := os.Stat(s.cfg.Storage.DocumentsFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(s.cfg.Storage.UsersFile)
	assert.True(t, os.IsNotExist(err))
}

func TestDepartment_ListsDocumentsAtThatPlace(t *testing.T) {
	s := newTestServer(t, nil)
	doc := s.submit(t, url.Values{"title": {"Lab report"}, "place": {"forensic"}})
	s.submit(t, url.Values{"title": {"Invoice"}, "place": {"account"}})

	rec := s.do(t, http.MethodGet, "/department/forensic", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), doc.ID)
	assert.NotContains(t, rec.Body.String(), "Invoice")
}

func TestDocumentFlow(t *testing.T) {
	s := newTestServer(t, nil)
	doc := s.submit(t, url.Values{"title": {"Contract"}, "place": {"admin"}})

	assert.True(t, strings.HasPrefix(doc.ID, "DOC-"))
	assert.Equal(t, "admin", doc.RecentPlace)
	assert.FileExists(t, filepath.Join(s.cfg.Storage.QRCodesDir, doc.ID+".png"))

	editPath := "/EditDetail/" + doc.ID

	rec := s.do(t, http.MethodGet, editPath, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, editPath, url.Values{
		"action": {"forward"}, "place": {"account"}, "time": {"09:00:00"}, "date": {"2026-10-01"},
	})
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, editPath, rec.Header().Get("Location"))

	rec = s.do(t, http.MethodPost, editPath, url.Values{"action": {"receive"}, "place": {"academics"}})
	require.Equal(t, http.StatusFound, rec.Code)

	got, err := s.documents.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "academics", got.RecentPlace)

	rec = s.do(t, http.MethodGet, "/getLog/"+doc.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []map[string]string
	require.NoError(t, stdjson.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "Submit", entries[0]["Action"])
	assert.Equal(t, "Forward", entries[1]["Action"])
	assert.Equal(t, "account", entries[1]["Place"])
	assert.Equal(t, "admin", entries[1]["PreviousPlace"])
	assert.Equal(t, "Receive", entries[2]["Action"])
	assert.Equal(t, "account", entries[2]["PreviousPlace"])

	rec = s.do(t, http.MethodGet, "/view-qr/"+doc.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/qrcodes/"+doc.ID+".png")

	rec = s.do(t, http.MethodGet, "/qrcodes/"+doc.ID+".png", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestEditDetail_Errors(t *testing.T) {
	s := newTestServer(t, nil)
	doc := s.submit(t, url.Values{"title": {"Memo"}})

	rec := s.do(t, http.MethodPost, "/EditDetail/"+doc.ID, url.Values{"action": {"shred"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/EditDetail/"+doc.ID, url.Values{"action": {"forward"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/EditDetail/DOC-missing", url.Values{"action": {"receive"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/EditDetail/DOC-missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViewQR_NotFound(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodGet, "/view-qr/DOC-missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/getLog/DOC-missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestQRCodes_NoDirectoryListing(t *testing.T) {
	s := newTestServer(t, nil)
	s.submit(t, url.Values{"title": {"Memo"}})

	rec := s.do(t, http.MethodGet, "/qrcodes/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := ratelimiter.NewFixedWindowRateLimiter(2, time.Minute)
	t.Cleanup(limiter.Close)
	s := newTestServer(t, limiter)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/signup", nil).Code)
	}
	rec := s.do(t, http.MethodGet, "/signup", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// health and metrics are not limited
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/metrics", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.do(t, http.MethodGet, "/EditDetail/DOC-missing", nil)

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `path="/EditDetail/{id}"`)
	assert.NotContains(t, rec.Body.String(), "DOC-missing")
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/health", "/healthz", "/live", "/ready"} {
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, nil).Code, path)
	}
}

func TestDocumentFeed(t *testing.T) {
	s := newTestServer(t, nil)
	doc := s.submit(t, url.Values{"title": {"Memo"}, "place": {"admin"}})

	srv := httptest.NewServer(s.handler)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/documents/" + doc.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var history ws.Message
	require.NoError(t, conn.ReadJSON(&history))
	assert.Equal(t, ws.HistoryEvent, history.Type)
	assert.Equal(t, doc.ID, history.DocumentID)

	rec := s.do(t, http.MethodPost, "/EditDetail/"+doc.ID, url.Values{"action": {"receive"}, "place": {"account"}})
	require.Equal(t, http.StatusFound, rec.Code)

	var event ws.Message
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, string(domain.EventDocumentReceived), event.Type)
	assert.Equal(t, doc.ID, event.DocumentID)

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/documents/DOC-missing", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestLogger_LogsRecoveredPanics(t *testing.T) {
	var buf bytes.Buffer
	app := &Application{
		logger: logging.NewLogger(&logging.LoggerConfig{Writer: &buf, Level: "info"}),
	}

	r := chi.NewRouter()
	r.Use(app.requestLogger)
	r.Use(middleware.Recoverer)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "request handled")
	assert.Contains(t, buf.String(), "/boom")
}
