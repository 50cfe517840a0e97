package credentials

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/osaleh/aidesk/internal/api"
)

func testUser() api.User {
	return api.User{
		ID:           "u-1",
		Name:         "Ada",
		BusinessName: "Ada's Bakery",
		Email:        "ada@example.com",
	}
}

func TestEmptyStore(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "credentials.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, _, ok := store.Session(); ok {
		t.Error("expected no session in a fresh store")
	}
	if store.Token() != "" {
		t.Errorf("expected empty token, got %q", store.Token())
	}
}

func TestSetSessionRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := store.SetSession("tok-123", testUser()); err != nil {
		t.Fatalf("SetSession: %v", err)
	}

	token, user, ok := store.Session()
	if !ok {
		t.Fatal("expected a session after SetSession")
	}
	if token != "tok-123" {
		t.Errorf("token: got %q, want %q", token, "tok-123")
	}
	if user.Email != "ada@example.com" {
		t.Errorf("user email: got %q", user.Email)
	}

	// A new store over the same file sees the same session (process
	// restart).
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	token2, user2, ok := reopened.Session()
	if !ok || token2 != "tok-123" || user2.ID != "u-1" {
		t.Errorf("reopened session = (%q, %+v, %v)", token2, user2, ok)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credentials file permissions = %o, want 0600", perm)
	}
}

func TestClearSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := store.SetSession("tok", testUser()); err != nil {
		t.Fatalf("SetSession: %v", err)
	}
	if err := store.SetTheme("dark"); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	if err := store.ClearSession(); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}

	if _, _, ok := store.Session(); ok {
		t.Error("session should be gone after ClearSession")
	}
	if store.Token() != "" {
		t.Error("token should be empty after ClearSession")
	}

	// Theme survives logout.
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Theme() != "dark" {
		t.Errorf("theme after logout = %q, want dark", reopened.Theme())
	}

	// Clearing again is fine.
	if err := store.ClearSession(); err != nil {
		t.Errorf("second ClearSession: %v", err)
	}
}

func TestThemeDefault(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "credentials.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if store.Theme() != "light" {
		t.Errorf("default theme = %q, want light", store.Theme())
	}
}

func TestPartialRecordIsNoSession(t *testing.T) {
	// A file holding a token without a user must not count as a session.
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(`{"token":"orphan"}`), 0600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, _, ok := store.Session(); ok {
		t.Error("token without user should not be a session")
	}
	if store.Token() != "" {
		t.Error("orphan token should not be handed to the client")
	}
}
