package stubserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/osaleh/aidesk/internal/api"
)

func seededServer(t *testing.T) *Server {
	t.Helper()
	s := New(nil)
	if err := s.Seed(); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func loginDemo(t *testing.T, s *Server) string {
	t.Helper()
	w := doJSON(t, s, "POST", "/auth/login", "", map[string]string{
		"email":    DemoEmail,
		"password": DemoPassword,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	var resp api.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected a token")
	}
	return resp.AccessToken
}

func TestLoginWrongPassword(t *testing.T) {
	s := seededServer(t)
	w := doJSON(t, s, "POST", "/auth/login", "", map[string]string{
		"email":    DemoEmail,
		"password": "nope",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["message"] == "" {
		t.Error("401 must carry a message for the login form")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := seededServer(t)
	paths := []string{
		"/approvals/pending",
		"/dashboard/stats",
		"/dashboard/engagement",
		"/dashboard/export",
		"/businesses/profile",
	}
	for _, path := range paths {
		if w := doJSON(t, s, "GET", path, "", nil); w.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: status = %d, want 401", path, w.Code)
		}
		if w := doJSON(t, s, "GET", path, "garbage", nil); w.Code != http.StatusUnauthorized {
			t.Errorf("%s with bad token: status = %d, want 401", path, w.Code)
		}
	}
}

func TestSignupConflict(t *testing.T) {
	s := seededServer(t)
	body := map[string]string{
		"name":         "Other",
		"businessName": "Other Co",
		"email":        DemoEmail,
		"password":     "whatever1",
	}
	if w := doJSON(t, s, "POST", "/auth/signup", "", body); w.Code != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want 409", w.Code)
	}
}

func TestApprovalDoubleDecisionConflicts(t *testing.T) {
	s := seededServer(t)
	token := loginDemo(t, s)

	w := doJSON(t, s, "GET", "/approvals/pending", token, nil)
	var items []api.ApprovalItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected seeded approvals")
	}
	id := items[0].ID

	first := doJSON(t, s, "PATCH", "/approvals/"+id+"/status", token, map[string]string{"status": "APPROVED"})
	if first.Code != http.StatusOK {
		t.Fatalf("first decision status = %d", first.Code)
	}

	second := doJSON(t, s, "PATCH", "/approvals/"+id+"/status", token, map[string]string{"status": "REJECTED"})
	if second.Code != http.StatusConflict {
		t.Errorf("second decision status = %d, want 409", second.Code)
	}

	if w := doJSON(t, s, "PATCH", "/approvals/"+id+"/status", token, map[string]string{"status": "MAYBE"}); w.Code != http.StatusBadRequest {
		t.Errorf("invalid status = %d, want 400", w.Code)
	}
}

func TestEngagementNewestFirst(t *testing.T) {
	s := seededServer(t)
	token := loginDemo(t, s)

	w := doJSON(t, s, "GET", "/dashboard/engagement", token, nil)
	var events []api.EngagementEvent
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for i := 1; i < len(events); i++ {
		if events[i].CreatedAt.After(events[i-1].CreatedAt) {
			t.Fatalf("events not newest-first at index %d", i)
		}
	}
}

func TestSimulateProperties(t *testing.T) {
	s := seededServer(t)
	token := loginDemo(t, s)

	// A plain greeting needs no approval but still yields an intent.
	w := doJSON(t, s, "POST", "/whatsapp/simulate", token, map[string]string{
		"from": "923001234567",
		"text": "hello",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("simulate status = %d", w.Code)
	}
	var result api.SimulationResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Analysis.Intent == "" {
		t.Error("analysis.intent must be a non-empty string")
	}
	if result.NeedsApproval {
		t.Error("a greeting should not need approval")
	}

	// A complaint is routed into the approval queue.
	before := len(pendingIDs(t, s, token))
	w = doJSON(t, s, "POST", "/whatsapp/simulate", token, map[string]string{
		"from": "923001234567",
		"text": "this is terrible, I want a refund",
	})
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !result.NeedsApproval {
		t.Error("a complaint should need approval")
	}
	if after := len(pendingIDs(t, s, token)); after != before+1 {
		t.Errorf("pending approvals = %d, want %d", after, before+1)
	}

	// Empty text is a validation error.
	if w := doJSON(t, s, "POST", "/whatsapp/simulate", token, map[string]string{"from": "1", "text": "  "}); w.Code != http.StatusBadRequest {
		t.Errorf("empty text status = %d, want 400", w.Code)
	}
}

func pendingIDs(t *testing.T, s *Server, token string) []string {
	t.Helper()
	w := doJSON(t, s, "GET", "/approvals/pending", token, nil)
	var items []api.ApprovalItem
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestProfilePartialUpdate(t *testing.T) {
	s := seededServer(t)
	token := loginDemo(t, s)

	empty := ""
	w := doJSON(t, s, "PATCH", "/businesses/profile", token, api.ProfileUpdate{KnowledgeBase: &empty})
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d", w.Code)
	}

	w = doJSON(t, s, "GET", "/businesses/profile", token, nil)
	var profile api.BusinessProfile
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if profile.KnowledgeBase != "" {
		t.Errorf("knowledgeBase = %q, want empty", profile.KnowledgeBase)
	}
	if profile.AIInstructions == "" {
		t.Error("untouched aiInstructions should keep its seeded value")
	}
}

func TestExportCSV(t *testing.T) {
	s := seededServer(t)
	token := loginDemo(t, s)

	w := doJSON(t, s, "GET", "/dashboard/export", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected header plus rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,content,intent,status,createdAt") {
		t.Errorf("header = %q", lines[0])
	}
}

func TestSearch(t *testing.T) {
	s := seededServer(t)
	token := loginDemo(t, s)

	w := doJSON(t, s, "GET", "/dashboard/search?q=compressor", token, nil)
	var events []api.EngagementEvent
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("matches = %d, want 1", len(events))
	}
	if !strings.Contains(events[0].Content, "compressor") {
		t.Errorf("unexpected match %q", events[0].Content)
	}
}
