package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// kioskRouter mounts stand-ins for the settings and events endpoints behind CORS.
func kioskRouter(allowedOrigins string) *gin.Engine {
	r := gin.New()
	r.Use(CORSMiddleware(allowedOrigins))
	r.GET("/api/settings", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rotationRate": 60})
	})
	r.PUT("/api/settings", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rotationRate": 30})
	})
	r.GET("/api/events", func(c *gin.Context) {
		c.SSEvent("settings", gin.H{"wakeLock": true})
	})
	return r
}

func TestCORSMiddleware_DashboardOnAnyOrigin(t *testing.T) {
	r := kioskRouter("*")

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("Origin", "http://kiosk.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected ACAO '*', got '%s'", got)
	}
	if w.Header().Get("Vary") == "Origin" {
		t.Error("wildcard answers do not vary by origin")
	}
	if w.Header().Get("Access-Control-Allow-Credentials") == "true" {
		t.Error("credentials must not be allowed with a wildcard origin")
	}
}

func TestCORSMiddleware_SettingsEditorOrigin(t *testing.T) {
	r := kioskRouter("http://admin.kiosk.local,http://lobby-screen.local")

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("Origin", "http://lobby-screen.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://lobby-screen.local" {
		t.Errorf("expected the screen origin echoed, got '%s'", got)
	}
	if got := w.Header().Get("Vary"); got != "Origin" {
		t.Errorf("expected Vary: Origin, got '%s'", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected Allow-Credentials: true, got '%s'", got)
	}
}

func TestCORSMiddleware_UnknownScreenGetsNoGrant(t *testing.T) {
	r := kioskRouter("http://admin.kiosk.local")

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.Header.Set("Origin", "http://rogue-screen.local")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// the browser enforces the missing grant; the server still answers
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no ACAO header, got '%s'", got)
	}
}

func TestCORSMiddleware_PreflightSettingsReplace(t *testing.T) {
	tests := []struct {
		name      string
		allowed   string
		origin    string
		wantACAO  string
		wantCreds string
	}{
		{"specific origin", "http://admin.kiosk.local", "http://admin.kiosk.local", "http://admin.kiosk.local", "true"},
		{"any origin", "*", "http://admin.kiosk.local", "*", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := kioskRouter(tt.allowed)

			req := httptest.NewRequest(http.MethodOptions, "/api/settings", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPut)
			req.Header.Set("Access-Control-Request-Headers", "Content-Type")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusNoContent {
				t.Errorf("expected status 204 for preflight, got %d", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantACAO {
				t.Errorf("expected ACAO '%s', got '%s'", tt.wantACAO, got)
			}
			if got := w.Header().Get("Access-Control-Allow-Credentials"); got != tt.wantCreds {
				t.Errorf("expected Allow-Credentials '%s', got '%s'", tt.wantCreds, got)
			}
			if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type" {
				t.Errorf("expected requested headers echoed, got '%s'", got)
			}
			if w.Body.Len() != 0 {
				t.Errorf("preflight must not reach the settings handler, body %q", w.Body.String())
			}
		})
	}
}

func TestCORSMiddleware_PreflightEventStream(t *testing.T) {
	for _, allowed := range []string{"http://lobby-screen.local", "*"} {
		t.Run(allowed, func(t *testing.T) {
			r := kioskRouter(allowed)

			req := httptest.NewRequest(http.MethodOptions, "/api/events", nil)
			req.Header.Set("Origin", "http://lobby-screen.local")
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusNoContent {
				t.Errorf("expected status 204, got %d", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Headers"); got != defaultAllowHeaders {
				t.Errorf("expected default allow headers, got '%s'", got)
			}
			if w.Header().Get("Access-Control-Allow-Methods") == "" {
				t.Error("expected Access-Control-Allow-Methods header")
			}
			if w.Header().Get("Content-Type") == "text/event-stream" {
				t.Error("preflight opened an event stream")
			}
		})
	}
}

func TestCORSMiddleware_SameOriginDashboard(t *testing.T) {
	r := kioskRouter("http://admin.kiosk.local")

	// the bundled UI is served from the same origin and sends no Origin header
	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no ACAO header, got '%s'", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "" {
		t.Errorf("expected no CORS headers at all, got methods '%s'", got)
	}
}

func TestCORSMiddleware_OriginListParsing(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		origin  string
		want    string
	}{
		{"padded entries", "  http://a.kiosk.local  ,  http://b.kiosk.local  ", "http://b.kiosk.local", "http://b.kiosk.local"},
		{"empty entries skipped", "http://a.kiosk.local,,", "http://a.kiosk.local", "http://a.kiosk.local"},
		{"nothing configured", "", "http://a.kiosk.local", ""},
		{"empty origin never matches", ",", "http://a.kiosk.local", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := kioskRouter(tt.allowed)

			req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("expected ACAO '%s', got '%s'", tt.want, got)
			}
		})
	}
}
