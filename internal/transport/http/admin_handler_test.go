package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ark-trip-service/internal/domain"
)

func adminRequest(t *testing.T, server *httptest.Server, method, path, code string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if code != "" {
		req.Header.Set("X-Admin-Code", code)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestAdminRequiresCode(t *testing.T) {
	server := newTestServer(t)

	resp := adminRequest(t, server, http.MethodGet, "/admin/questions", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.StatusCode)
	}
	resp = adminRequest(t, server, http.MethodGet, "/admin/questions", "wrong", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", resp.StatusCode)
	}
	// the code check is case-insensitive, like the websocket join
	resp = adminRequest(t, server, http.MethodGet, "/admin/questions", "admin123", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, want 200", resp.StatusCode)
	}
}

func TestAdminQuestionCRUD(t *testing.T) {
	server := newTestServer(t)

	resp := adminRequest(t, server, http.MethodPost, "/admin/questions", "ADMIN123", domain.Question{
		Text:         "عاصمة فرنسا؟",
		Options:      []string{"لندن", "باريس"},
		CorrectIndex: 1,
		Type:         domain.QuestionText,
		Points:       100,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", resp.StatusCode)
	}
	var created domain.Question
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" {
		t.Fatal("create must assign an id")
	}

	resp = adminRequest(t, server, http.MethodGet, "/admin/questions", "ADMIN123", nil)
	var list []domain.Question
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 { // seed question plus the new one
		t.Fatalf("list len %d, want 2", len(list))
	}

	created.Text = "edited"
	resp = adminRequest(t, server, http.MethodPut, "/admin/questions/"+created.ID, "ADMIN123", created)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status %d", resp.StatusCode)
	}

	resp = adminRequest(t, server, http.MethodDelete, "/admin/questions/"+created.ID, "ADMIN123", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	resp = adminRequest(t, server, http.MethodDelete, "/admin/questions/"+created.ID, "ADMIN123", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("double delete status %d, want 404", resp.StatusCode)
	}
}

func TestAdminTripCodeValidation(t *testing.T) {
	server := newTestServer(t)

	resp := adminRequest(t, server, http.MethodPut, "/admin/trip-code", "ADMIN123", map[string]string{"code": "ab"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("short code status %d, want 400", resp.StatusCode)
	}

	resp = adminRequest(t, server, http.MethodPut, "/admin/trip-code", "ADMIN123", map[string]string{"code": "winter25"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "WINTER25" {
		t.Fatalf("code %q, want uppercased", body["code"])
	}
}

func TestAdminReset(t *testing.T) {
	server := newTestServer(t)

	participant := dial(t, server, "name=Sara&code=852456")
	readUntil(t, participant, "joined")

	resp := adminRequest(t, server, http.MethodPost, "/admin/reset", "ADMIN123", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("reset status %d", resp.StatusCode)
	}

	resp = adminRequest(t, server, http.MethodGet, "/admin/users", "ADMIN123", nil)
	var users []domain.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("users %d after reset, want 0", len(users))
	}
}
