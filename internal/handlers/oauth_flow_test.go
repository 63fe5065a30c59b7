package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"golang.org/x/oauth2"

	"dicteeclash/internal/service"
)

// fakeGoogle serves the token and userinfo endpoints
func fakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"g-42","email":"prof@ecole.fr","name":"Mme Martin"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newOAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	google := fakeGoogle(t)
	srv := newTestServer(t)
	return NewAuthHandler(srv.authService, &OAuthProvider{
		Name: "google",
		Config: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost/auth/google/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:  google.URL + "/auth",
				TokenURL: google.URL + "/token",
			},
			Scopes: []string{"openid", "email", "profile"},
		},
		UserInfoURL: google.URL + "/userinfo",
	})
}

func TestStartOAuthSetsState(t *testing.T) {
	h := newOAuthHandler(t)
	recorder := httptest.NewRecorder()

	h.StartOAuth(recorder, httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))

	if recorder.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", recorder.Code)
	}
	var state string
	for _, c := range recorder.Result().Cookies() {
		if c.Name == OAuthStateCookieName {
			state = c.Value
		}
	}
	location, err := url.Parse(recorder.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad redirect: %v", err)
	}
	if state == "" || location.Query().Get("state") != state {
		t.Errorf("state cookie %q, redirect state %q", state, location.Query().Get("state"))
	}
}

func TestOAuthCallback(t *testing.T) {
	h := newOAuthHandler(t)

	tests := []struct {
		name   string
		query  string
		cookie string
		want   int
	}{
		{"success", "?state=s1&code=good-code", "s1", http.StatusOK},
		{"missing code", "?state=s1", "s1", http.StatusBadRequest},
		{"state mismatch", "?state=s1&code=good-code", "other", http.StatusBadRequest},
		{"no cookie", "?state=s1&code=good-code", "", http.StatusBadRequest},
		{"rejected code", "?state=s1&code=bad-code", "s1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/google/callback"+tt.query, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: OAuthStateCookieName, Value: tt.cookie})
			}
			recorder := httptest.NewRecorder()

			h.OAuthCallback(recorder, req)

			if recorder.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", recorder.Code, tt.want, recorder.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			var res service.AuthResult
			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("failed to decode result: %v", err)
			}
			if res.Token == "" || res.Teacher.Email != "prof@ecole.fr" || res.Teacher.Name != "Mme Martin" {
				t.Errorf("result = %+v", res)
			}
		})
	}
}
