package cli

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthCommand(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
		want    string
	}{
		{"reachable", http.StatusOK, false, "[HLTH] OK"},
		{"server error", http.StatusServiceUnavailable, true, "[OFF] FAIL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var method, path string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				method, path = r.Method, r.URL.Path
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			stdout, _, err := executeCommand(t, "--base-url", server.URL, "health")
			if (err != nil) != tt.wantErr {
				t.Fatalf("health error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(stdout, tt.want) || !strings.Contains(stdout, server.URL+"/docs") {
				t.Errorf("Unexpected output: %s", stdout)
			}
			if method != http.MethodHead || path != "/docs" {
				t.Errorf("Expected HEAD /docs, got %s %s", method, path)
			}
		})
	}
}

func TestHealthCommandUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, _, err := executeCommand(t, "--base-url", url, "health", "--timeout", "500ms")
	if err == nil || !strings.Contains(err.Error(), "prediction service unreachable") {
		t.Errorf("Expected unreachable error, got %v", err)
	}
}
