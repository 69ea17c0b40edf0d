package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/survivordraft/internal/testutil"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusTeapot)
	_, _ = w.Write([]byte("short and stout"))
}

func corsRequest(h http.Handler, method, origin string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1/rooms", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS([]string{"http://app.example"})(http.HandlerFunc(okHandler))

	rr := corsRequest(h, http.MethodOptions, "http://app.example", map[string]string{
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "Content-Type",
	})

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://app.example", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Content-Type", rr.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "600", rr.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_PreflightRejectsUnlistedMethodAndHeader(t *testing.T) {
	h := CORS([]string{"http://app.example"})(http.HandlerFunc(okHandler))

	rr := corsRequest(h, http.MethodOptions, "http://app.example", map[string]string{
		"Access-Control-Request-Method": http.MethodDelete,
	})
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = corsRequest(h, http.MethodOptions, "http://app.example", map[string]string{
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "X-Session-Token",
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCORS_WildcardNeverAllowsCredentials(t *testing.T) {
	h := CORS([]string{"*"})(http.HandlerFunc(okHandler))

	rr := corsRequest(h, http.MethodGet, "http://anything.example", nil)

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_PassesThrough(t *testing.T) {
	h := CORS([]string{"http://app.example"})(http.HandlerFunc(okHandler))

	tests := []struct {
		name   string
		origin string
	}{
		{name: "no origin"},
		{name: "unlisted origin", origin: "http://other.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := corsRequest(h, http.MethodGet, tt.origin, nil)

			assert.Equal(t, http.StatusTeapot, rr.Code)
			assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_NoOriginsLeavesHandlerAlone(t *testing.T) {
	h := CORS(nil)(http.HandlerFunc(okHandler))

	rr := corsRequest(h, http.MethodGet, "http://app.example", nil)

	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestOriginPatterns(t *testing.T) {
	assert.Equal(t, []string{"app.example", "localhost:5173"},
		OriginPatterns([]string{"https://app.example", "http://localhost:5173"}))
	assert.Equal(t, []string{"*"}, OriginPatterns([]string{"http://app.example", "*"}))
	assert.Empty(t, OriginPatterns(nil))
}

func TestRecovery_WritesFallback(t *testing.T) {
	var recovered any
	h := Recovery(testutil.NopLogger(), func(w http.ResponseWriter, _ *http.Request, err any) {
		recovered = err
		w.WriteHeader(http.StatusInternalServerError)
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "boom", recovered)
}

func TestRecovery_ReraisesAbort(t *testing.T) {
	h := Recovery(testutil.NopLogger(), func(http.ResponseWriter, *http.Request, any) {
		t.Fatal("abort must not reach the panic handler")
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestLogging_RecordsStatusAndSize(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(testutil.BufferLogger(&buf))(http.HandlerFunc(okHandler))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusTeapot, rr.Code)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"size":15`)
	assert.Contains(t, buf.String(), `"path":"/api/v1/health"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestRequestLevel(t *testing.T) {
	tests := []struct {
		path   string
		status int
		want   slog.Level
	}{
		{path: "/api/v1/rooms", status: http.StatusCreated, want: slog.LevelInfo},
		{path: "/api/v1/health", status: http.StatusOK, want: slog.LevelDebug},
		{path: "/api/v1/rooms/NOPE00", status: http.StatusNotFound, want: slog.LevelWarn},
		{path: "/api/v1/rooms", status: http.StatusInternalServerError, want: slog.LevelError},
		{path: "/ws", status: http.StatusSwitchingProtocols, want: slog.LevelInfo},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.path, nil)
		assert.Equal(t, tt.want, requestLevel(r, tt.status), "%s %d", tt.path, tt.status)
	}
}

func TestResponseWriter_HijackUnsupported(t *testing.T) {
	rw := &ResponseWriter{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	_, _, err := rw.Hijack()
	assert.Error(t, err)
	assert.Equal(t, http.StatusOK, rw.Status())
}
