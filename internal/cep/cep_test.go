package cep

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
	"github.com/google/go-cmp/cmp"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/ws/", time.Second, nil)
}

func TestLookup(t *testing.T) {
	var gotPath string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"cep": "21540-500", "logradouro": "Estrada do Barro Vermelho",
			"bairro": "Rocha Miranda", "localidade": "Rio de Janeiro", "uf": "RJ", "ibge": "3304557"}`))
	})

	got, err := c.Lookup(context.Background(), "21540-500")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	want := Address{
		PostalCode: "21540-500",
		Street:     "Estrada do Barro Vermelho",
		District:   "Rocha Miranda",
		City:       "Rio de Janeiro",
		State:      "RJ",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lookup mismatch (-want +got):\n%s", diff)
	}
	if gotPath != "/ws/21540500/json/" {
		t.Errorf("request path = %q, want /ws/21540500/json/", gotPath)
	}
}

func TestLookupErrors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		handler http.HandlerFunc
		kind    apperror.Kind
	}{
		{
			name: "not found",
			code: "99999999",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"erro": true}`))
			},
			kind: apperror.KindNotFound,
		},
		{
			name: "not found as string",
			code: "99999999",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"erro": "true"}`))
			},
			kind: apperror.KindNotFound,
		},
		{
			name: "server error",
			code: "21540500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			kind: apperror.KindConnectivity,
		},
		{
			name: "bad json",
			code: "21540500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>`))
			},
			kind: apperror.KindConnectivity,
		},
		{
			name: "timeout",
			code: "21540500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				time.Sleep(300 * time.Millisecond)
			},
			kind: apperror.KindConnectivity,
		},
		{
			name: "too short",
			code: "2154",
			kind: apperror.KindValidation,
		},
		{
			name: "too long",
			code: "215405001",
			kind: apperror.KindValidation,
		},
		{
			name: "empty",
			code: "",
			kind: apperror.KindValidation,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			called := false
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				if test.handler != nil {
					test.handler(w, r)
				}
			}))
			defer srv.Close()
			c := NewClient(srv.URL, 100*time.Millisecond, nil)

			_, err := c.Lookup(context.Background(), test.code)
			if got := apperror.KindOf(err); got != test.kind {
				t.Errorf("Lookup(%q) error = %v (kind %v), want kind %v", test.code, err, got, test.kind)
			}
			if test.kind == apperror.KindValidation && called {
				t.Errorf("Lookup(%q) reached the service with an invalid code", test.code)
			}
		})
	}
}

func TestLookupUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second, nil).Lookup(context.Background(), "21540500")
	if !apperror.Is(err, apperror.KindConnectivity) {
		t.Errorf("Lookup on a closed server error = %v, want connectivity error", err)
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient("", 0, nil)
	if c.baseURL != DefaultBaseURL || c.http.Timeout != DefaultTimeout {
		t.Errorf("NewClient defaults = %q, %v", c.baseURL, c.http.Timeout)
	}
}
