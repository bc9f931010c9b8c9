package match

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const primaryReply = `{"data": {"results": [
	[0.92, "Bitcoin", "x", "x", "x", "x", "x", 1],
	[0.35, "Bitcoin Cash", "x", "x", "x", "x", "x", 1831]
]}}`

const secondaryReply = `{"data": {"results": [
	[0.88, "btc-bitcoin"]
]}}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/primary", srv.URL+"/secondary", "key123")
}

func TestClient_Primary(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(primaryReply))
	})

	res := c.Primary(context.Background(), "Bitcoin")
	if res.Null() {
		t.Fatal("expected a match")
	}
	if *res.ID != "1" {
		t.Errorf("ID = %q, want numeric id rendered as string", *res.ID)
	}
	if res.Name == nil || *res.Name != "Bitcoin" {
		t.Errorf("Name = %v", res.Name)
	}
	if res.Score == nil || *res.Score != 0.92 {
		t.Errorf("Score = %v", res.Score)
	}
	if gotQuery != "api_key=key123&searchterms=Bitcoin" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestClient_Secondary(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(secondaryReply))
	})

	res := c.Secondary(context.Background(), "Bitcoin")
	if res.Null() {
		t.Fatal("expected a match")
	}
	if *res.ID != "btc-bitcoin" {
		t.Errorf("ID = %q", *res.ID)
	}
	if res.Name != nil {
		t.Errorf("Name = %v, want nil for secondary registry", res.Name)
	}
	if res.Score == nil || *res.Score != 0.88 {
		t.Errorf("Score = %v", res.Score)
	}
}

func TestClient_NullOnEmptyAndFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"empty results", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": {"results": []}}`))
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"row too short", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": {"results": [[0.5]]}}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			if res := c.Primary(context.Background(), "X"); !res.Null() {
				t.Errorf("Primary = %+v, want null", res)
			}
		})
	}
}

func TestClient_NullOnUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1/p", "http://127.0.0.1:1/s", "")
	if res := c.Primary(context.Background(), "X"); !res.Null() {
		t.Errorf("Primary = %+v, want null", res)
	}
	if res := c.Secondary(context.Background(), "X"); !res.Null() {
		t.Errorf("Secondary = %+v, want null", res)
	}
}
