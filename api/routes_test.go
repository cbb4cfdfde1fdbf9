package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
)

func pinRouter(pin string) *mux.Router {
	r := mux.NewRouter()
	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(PINAuthMiddleware(pin))
	protected.HandleFunc("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	return r
}

func TestPINAuthMiddleware(t *testing.T) {
	router := pinRouter("123456")

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"missing pin", func(r *http.Request) {}, http.StatusUnauthorized},
		{"wrong pin", func(r *http.Request) { r.Header.Set("X-PIN", "000000") }, http.StatusUnauthorized},
		{"header pin", func(r *http.Request) { r.Header.Set("X-PIN", "123456") }, http.StatusOK},
		{"query pin", func(r *http.Request) { r.URL.RawQuery = "pin=123456" }, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestEmptyPINDisablesAuth(t *testing.T) {
	router := pinRouter("")

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
