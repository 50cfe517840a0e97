package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.Handler, token string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, staticToken(token), nil), srv
}

func TestBearerInjection(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalInteractions":1,"activeSessions":2,"pendingApprovals":3,"systemHealth":99.5}`))
	})

	client, _ := newTestClient(t, handler, "tok-abc")
	stats, err := client.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Errorf("Authorization header = %q, want %q", gotAuth, "Bearer tok-abc")
	}
	if stats.PendingApprovals != 3 {
		t.Errorf("pendingApprovals = %d, want 3", stats.PendingApprovals)
	}
}

func TestNoTokenMeansUnauthenticated(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	})

	client, _ := newTestClient(t, handler, "")
	if _, err := client.DashboardStats(context.Background()); err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind Kind
		wantMsg  string
	}{
		{"unauthorized", 401, `{"message":"Invalid credentials"}`, KindAuthRejected, "Invalid credentials"},
		{"conflict", 409, `{"message":"approval has already been decided"}`, KindConflict, "approval has already been decided"},
		{"validation", 400, `{"message":["text must not be empty","from is required"]}`, KindValidation, "text must not be empty; from is required"},
		{"not found", 404, `{"error":"approval not found"}`, KindValidation, "approval not found"},
		{"server", 500, `boom`, KindServer, "request failed with status 500 (Internal Server Error)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			client, _ := newTestClient(t, handler, "tok")

			_, err := client.DashboardStats(context.Background())
			if err == nil {
				t.Fatal("expected an error")
			}
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T: %v", err, err)
			}
			if apiErr.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", apiErr.Kind, tt.wantKind)
			}
			if apiErr.Status != tt.status {
				t.Errorf("status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	// Server is closed before the request goes out.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url, 2*time.Second, staticToken(""), nil)
	_, err := client.DashboardStats(context.Background())
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		t.Errorf("transport error should carry no HTTP status, got %d", apiErr.Status)
	}
}

func TestClientSideValidation(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	client, _ := newTestClient(t, handler, "")

	_, err := client.Login(context.Background(), LoginRequest{Email: "not-an-email", Password: "x"})
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if called {
		t.Error("invalid input should never reach the backend")
	}

	if _, err := client.UpdateApproval(context.Background(), "id", ApprovalStatus("MAYBE")); !IsValidation(err) {
		t.Errorf("expected validation error for bad status, got %v", err)
	}
	if called {
		t.Error("invalid status should never reach the backend")
	}
}

func TestExportLogs(t *testing.T) {
	payload := "id,content\n1,hello\n"
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/dashboard/export" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(payload))
	})
	client, _ := newTestClient(t, handler, "tok")

	var buf bytes.Buffer
	n, err := client.ExportLogs(context.Background(), &buf)
	if err != nil {
		t.Fatalf("ExportLogs: %v", err)
	}
	if n != int64(len(payload)) {
		t.Errorf("bytes written = %d, want %d", n, len(payload))
	}
	if buf.String() != payload {
		t.Errorf("payload = %q, want %q", buf.String(), payload)
	}
}

func TestSimulateRendersWithoutApproval(t *testing.T) {
	// A needsApproval=false response must decode cleanly with a
	// non-empty intent.
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"analysis":{"intent":"greeting","confidence":0.97},"needsApproval":false}`))
	})
	client, _ := newTestClient(t, handler, "tok")

	result, err := client.SimulateMessage(context.Background(), SimulateRequest{From: "923001234567", Text: "hello"})
	if err != nil {
		t.Fatalf("SimulateMessage: %v", err)
	}
	if result.Analysis.Intent == "" {
		t.Error("intent must be non-empty")
	}
	if result.NeedsApproval {
		t.Error("needsApproval should be false")
	}
}
