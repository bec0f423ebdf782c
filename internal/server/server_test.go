package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/atom/internal/config"
	apperrors "github.com/vango-dev/atom/internal/errors"
	"github.com/vango-dev/atom/internal/metrics"
	"github.com/vango-dev/atom/pkg/atom"
	"github.com/vango-dev/atom/pkg/form"
)

func newTestServer(t *testing.T, n int, opts ...Option) (*Server, *atom.Atom[form.Fields], *httptest.Server) {
	t.Helper()
	cfg := config.New()
	cfg.Form.Fields = n
	fields := form.NewStore(n, atom.WithName("fields"))

	srv := New(cfg, fields, opts...)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})
	return srv, fields, ts
}

func doRequest(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func TestHealthz(t *testing.T) {
	_, _, ts := newTestServer(t, 1)

	resp, body := doRequest(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestPageRendersForm(t *testing.T) {
	_, fields, ts := newTestServer(t, 2)
	fields.Update(form.SetField(1, form.Last, "<Hopper>"))

	resp, body := doRequest(t, http.MethodGet, ts.URL+"/", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	html := string(body)
	for _, want := range []string{"first-0", "last-1: &lt;Hopper&gt;", "new WebSocket"} {
		if !strings.Contains(html, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if fields.Len() != 0 {
		t.Errorf("static render left %d subscribers", fields.Len())
	}
}

func TestListFields(t *testing.T) {
	_, fields, ts := newTestServer(t, 3)
	fields.Update(form.SetField(0, form.First, "Ada"))

	resp, body := doRequest(t, http.MethodGet, ts.URL+"/api/fields", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var got fieldsResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Count != 3 || got.Filled != 1 || got.Fields[0].First != "Ada" {
		t.Errorf("unexpected response %+v", got)
	}
}

func TestPutField(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		status   int
		wantCode string
	}{
		{"ok", "/api/fields/1/last", `{"value":"Lovelace"}`, http.StatusOK, ""},
		{"empty value", "/api/fields/0/first", `{"value":""}`, http.StatusOK, ""},
		{"index out of range", "/api/fields/9/last", `{"value":"x"}`, http.StatusNotFound, "E301"},
		{"index not a number", "/api/fields/x/last", `{"value":"x"}`, http.StatusNotFound, "E301"},
		{"unknown side", "/api/fields/0/middle", `{"value":"x"}`, http.StatusNotFound, "E302"},
		{"bad body", "/api/fields/0/first", `{`, http.StatusBadRequest, "E303"},
		{"missing value", "/api/fields/0/first", `{}`, http.StatusBadRequest, "E303"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, fields, ts := newTestServer(t, 2)

			resp, body := doRequest(t, http.MethodPut, ts.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status=%d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			if tt.wantCode == "" {
				return
			}
			var got struct {
				Error apperrors.Error `json:"error"`
			}
			if err := json.Unmarshal(body, &got); err != nil {
				t.Fatal(err)
			}
			if got.Error.Code != tt.wantCode {
				t.Errorf("code=%q, want %q", got.Error.Code, tt.wantCode)
			}
			if form.Filled(fields.Get()) != 0 {
				t.Error("rejected edit changed state")
			}
		})
	}
}

func TestPutFieldUpdatesState(t *testing.T) {
	_, fields, ts := newTestServer(t, 2)

	resp, body := doRequest(t, http.MethodPut, ts.URL+"/api/fields/1/last", `{"value":"Lovelace"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var got pairResponse
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if got.Index != 1 || got.Last != "Lovelace" {
		t.Errorf("unexpected response %+v", got)
	}
	if fields.Get()[1].Last != "Lovelace" {
		t.Errorf("state not updated: %+v", fields.Get())
	}
}

var targetPattern = regexp.MustCompile(`name="first-0" value=""`)

func dial(t *testing.T, ts *httptest.Server) (*websocket.Conn, ServerFrame) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	init := readFrame(t, conn)
	if init.Type != FrameInit || init.Session == "" {
		t.Fatalf("expected init frame, got %+v", init)
	}
	return conn, init
}

func readFrame(t *testing.T, conn *websocket.Conn) ServerFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f ServerFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

// readPatches reads patch frames until want patches have arrived.
func readPatches(t *testing.T, conn *websocket.Conn, want int) []Patch {
	t.Helper()
	var patches []Patch
	for len(patches) < want {
		f := readFrame(t, conn)
		if f.Type != FramePatch {
			t.Fatalf("expected patch frame, got %+v", f)
		}
		patches = append(patches, f.Patches...)
	}
	return patches
}

func inputTarget(t *testing.T, html, label string) string {
	t.Helper()
	re := regexp.MustCompile(`data-target="(v[0-9]+)" name="` + label + `"`)
	m := re.FindStringSubmatch(html)
	if m == nil {
		t.Fatalf("no input %s in %s", label, html)
	}
	return m[1]
}

func TestWebSocketInputPatchesEverySession(t *testing.T) {
	srv, fields, ts := newTestServer(t, 50)

	a, initA := dial(t, ts)
	b, _ := dial(t, ts)
	if srv.Sessions() != 2 {
		t.Fatalf("sessions=%d, want 2", srv.Sessions())
	}
	if !targetPattern.MatchString(initA.HTML) {
		t.Fatal("init frame does not contain the form")
	}

	target := inputTarget(t, initA.HTML, "first-7")
	if err := a.WriteJSON(ClientFrame{Type: FrameInput, Target: target, Value: "Grace"}); err != nil {
		t.Fatal(err)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		patches := readPatches(t, conn, 2)
		if len(patches) != 2 {
			t.Errorf("expected exactly 2 patches, got %d", len(patches))
		}
		joined := patches[0].HTML + patches[1].HTML
		if !strings.Contains(joined, `first-7: Grace</div>`) || !strings.Contains(joined, `value="Grace"`) {
			t.Errorf("patches do not carry the edit: %+v", patches)
		}
	}
	if fields.Get()[7].First != "Grace" {
		t.Errorf("state not updated")
	}
}

func TestAPIEditPatchesSessions(t *testing.T) {
	_, _, ts := newTestServer(t, 3)
	conn, _ := dial(t, ts)

	resp, _ := doRequest(t, http.MethodPut, ts.URL+"/api/fields/2/last", `{"value":"Hopper"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	patches := readPatches(t, conn, 2)
	found := false
	for _, p := range patches {
		if strings.Contains(p.HTML, "last-2: Hopper") {
			found = true
		}
	}
	if !found {
		t.Errorf("display patch missing: %+v", patches)
	}
}

func TestWebSocketRejectsBadFrames(t *testing.T) {
	_, _, ts := newTestServer(t, 1)
	conn, _ := dial(t, ts)

	conn.WriteMessage(websocket.TextMessage, []byte("not json"))
	if f := readFrame(t, conn); f.Type != FrameError || f.Error.Code != "E201" {
		t.Errorf("expected E201, got %+v", f)
	}

	conn.WriteJSON(ClientFrame{Type: FrameInput, Target: "v0", Value: "x"})
	if f := readFrame(t, conn); f.Type != FrameError || f.Error.Code != "E202" {
		t.Errorf("expected E202, got %+v", f)
	}
}

func TestSessionCloseUnsubscribes(t *testing.T) {
	srv, fields, ts := newTestServer(t, 4)
	conn, _ := dial(t, ts)
	if fields.Len() == 0 {
		t.Fatal("session did not subscribe")
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for srv.Sessions() != 0 || fields.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sessions=%d subscribers=%d after disconnect", srv.Sessions(), fields.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := metrics.New(metrics.WithRegistry(reg))
	_, _, ts := newTestServer(t, 1, WithMetrics(c))

	doRequest(t, http.MethodPut, ts.URL+"/api/fields/0/first", `{"value":"x"}`)

	resp, body := doRequest(t, http.MethodGet, ts.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `atom_events_total{status="success",type="put"} 1`) {
		t.Errorf("missing event metric:\n%s", body)
	}
}

func TestLoop(t *testing.T) {
	l := NewLoop(discardLogger())
	ctx := context.Background()

	ran := false
	if err := l.Do(ctx, func() error { ran = true; return nil }); err != nil || !ran {
		t.Fatalf("Do: ran=%v err=%v", ran, err)
	}

	want := errors.New("boom")
	if err := l.Do(ctx, func() error { return want }); !errors.Is(err, want) {
		t.Errorf("expected %v, got %v", want, err)
	}

	err := l.Do(ctx, func() error { panic("bad edit") })
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Category != apperrors.CategoryRuntime {
		t.Errorf("expected runtime error from panic, got %v", err)
	}

	l.Close()
	l.Close()
	err = l.Do(ctx, func() error { return nil })
	if !errors.As(err, &appErr) || appErr.Code != "E204" {
		t.Errorf("expected E204 after close, got %v", err)
	}
}

func TestLoopContextCanceled(t *testing.T) {
	l := NewLoop(discardLogger())
	defer l.Close()

	started := make(chan struct{})
	block := make(chan struct{})
	go l.Do(context.Background(), func() error {
		close(started)
		<-block
		return nil
	})
	defer close(block)
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Do(ctx, func() error { return nil }); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

// failingWriter accepts headers but fails every body write.
type failingWriter struct {
	*httptest.ResponseRecorder
}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	srv, _, _ := newTestServer(t, 1, WithLogger(logger))

	w := failingWriter{httptest.NewRecorder()}
	srv.writeJSON(w, http.StatusOK, map[string]int{"count": 1})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	out := logs.String()
	if !strings.Contains(out, "response write failed") || !strings.Contains(out, "connection reset") {
		t.Errorf("encode failure not logged:\n%s", out)
	}
}
