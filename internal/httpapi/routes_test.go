package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/kat-overlay/internal/hub"
	"github.com/DoyleJ11/kat-overlay/pkg/types"
)

type fakeOverlay struct {
	mu   sync.Mutex
	snap types.Snapshot
}

func (f *fakeOverlay) SetText(text string) { f.set(func(s *types.Snapshot) { s.Target = text }) }
func (f *fakeOverlay) Start()              { f.set(func(s *types.Snapshot) { s.Running = true }) }
func (f *fakeOverlay) Stop()               { f.set(func(s *types.Snapshot) { s.Running = false }) }
func (f *fakeOverlay) Show()               { f.set(func(s *types.Snapshot) { s.Visible = true }) }
func (f *fakeOverlay) Hide()               { f.set(func(s *types.Snapshot) { s.Visible = false }) }

func (f *fakeOverlay) set(fn func(*types.Snapshot)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.snap)
	f.snap.Version++
}

func (f *fakeOverlay) Snapshot() types.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func newRouter(t *testing.T) (http.Handler, *fakeOverlay) {
	t.Helper()
	o := &fakeOverlay{}
	return SetupRoutes(hub.NewHub(context.Background(), nil), o, nil), o
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) types.Snapshot {
	t.Helper()
	var s types.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	return s
}

func TestHealthz(t *testing.T) {
	h, _ := newRouter(t)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz", "").Code)
}

func TestPutText(t *testing.T) {
	h, o := newRouter(t)

	rec := do(t, h, http.MethodPut, "/text", `{"text":"hello there"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "hello there", decodeSnapshot(t, rec).Target)
	assert.Equal(t, "hello there", o.Snapshot().Target)

	rec = do(t, h, http.MethodPut, "/text", `{"text":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActions(t *testing.T) {
	h, o := newRouter(t)

	tests := []struct {
		path    string
		running bool
		visible bool
	}{
		{"/start", true, false},
		{"/show", true, true},
		{"/hide", true, false},
		{"/stop", false, false},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tc.path, "")
			require.Equal(t, http.StatusOK, rec.Code)
			s := decodeSnapshot(t, rec)
			assert.Equal(t, tc.running, s.Running)
			assert.Equal(t, tc.visible, s.Visible)
		})
	}
	assert.Equal(t, 4, o.Snapshot().Version)
}

func TestGetState(t *testing.T) {
	h, o := newRouter(t)
	o.SetText("abc")

	rec := do(t, h, http.MethodGet, "/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", decodeSnapshot(t, rec).Target)

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/state", "").Code)
}

func TestMetricsExposed(t *testing.T) {
	h, _ := newRouter(t)
	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
