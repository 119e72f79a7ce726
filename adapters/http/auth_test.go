package http

import (
	"net/http"
	"testing"
)

func TestSignupLoginMe(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()

	resp := doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/signup", `{
		"name": "Ada Lovelace",
		"handle": "ada",
		"email": "ada@example.org",
		"password": "s3cret"
	}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201", resp.StatusCode)
	}
	doc := decodeBody(t, resp)
	attrs, _ := doc["attributes"].(map[string]any)
	if attrs["handle"] != "ada" {
		t.Errorf("handle = %v", attrs["handle"])
	}
	if _, ok := attrs["hash"]; ok {
		t.Error("signup response must not expose the password hash")
	}

	// Duplicate handle is rejected.
	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/signup", `{
		"handle": "ada", "password": "other"
	}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate signup status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	// Wrong password is rejected.
	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", `{
		"handle": "ada", "password": "wrong"
	}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, client, http.MethodPost, srv.URL+"/api/auth/login", `{
		"handle": "ada", "password": "s3cret"
	}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want 200", resp.StatusCode)
	}
	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == authCookie {
			session = c
		}
	}
	resp.Body.Close()
	if session == nil || session.Value == "" {
		t.Fatal("login did not set the session cookie")
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
	req.AddCookie(session)
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, want 200", resp.StatusCode)
	}
	doc = decodeBody(t, resp)
	attrs, _ = doc["attributes"].(map[string]any)
	if attrs["email"] != "ada@example.org" {
		t.Errorf("me email = %v", attrs["email"])
	}
	if _, ok := attrs["hash"]; ok {
		t.Error("me response must not expose the password hash")
	}

	// is_logged reflects the cookie.
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/auth/is_logged", nil)
	req.AddCookie(session)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("is_logged: %v", err)
	}
	meta := decodeBody(t, resp)
	if meta["logged"] != true {
		t.Errorf("logged = %v, want true", meta["logged"])
	}

	resp = doJSON(t, client, http.MethodGet, srv.URL+"/api/auth/is_logged", "")
	meta = decodeBody(t, resp)
	if meta["logged"] != false {
		t.Errorf("anonymous logged = %v, want false", meta["logged"])
	}
}

func TestMeWithoutSession(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/auth/me", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv.Client(), http.MethodPost, srv.URL+"/api/auth/logout", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	var cleared *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == authCookie {
			cleared = c
		}
	}
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Error("logout should expire the session cookie")
	}
}
