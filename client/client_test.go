package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func newTestServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/score/addscore", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var s Submission
		if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
			t.Errorf("decode: %v", err)
		}
		if s.Game != "Super Mario Bros" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"unknown game"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(&Score{ID: 7, Score: s.Score, Pseudo: s.Pseudo, Game: s.Game})
	})
	mux.HandleFunc("/api/score/top/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/score/top/Super Mario Bros" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode([]Score{{ID: 1, Score: 5000, Pseudo: "Ada", Game: "Super Mario Bros"}})
	})
	mux.HandleFunc("/api/score/allscores", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	})
	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func TestClient_Submit(t *testing.T) {
	s := newTestServer(t)
	c := NewClient(s.URL + "/api/")

	created, err := c.Submit(context.Background(), Submission{Pseudo: "Ada", Score: 1250, Game: "Super Mario Bros"})
	if err != nil {
		t.Fatal(err)
	}
	expected := &Score{ID: 7, Score: 1250, Pseudo: "Ada", Game: "Super Mario Bros"}
	if !reflect.DeepEqual(created, expected) {
		t.Errorf("Submit() actual = %+v, expected = %+v", created, expected)
	}

	_, err = c.Submit(context.Background(), Submission{Pseudo: "Ada", Score: 1, Game: "Tetris"})
	var herr *HTTPError
	if !errors.As(err, &herr) {
		t.Fatalf("Submit() error = %v, expected *HTTPError", err)
	}
	if herr.StatusCode != http.StatusBadRequest || herr.Message != "unknown game" {
		t.Errorf("HTTPError actual = %+v", herr)
	}
}

func TestClient_Top(t *testing.T) {
	s := newTestServer(t)
	c := NewClient(s.URL + "/api")

	scores, err := c.Top(context.Background(), "Super Mario Bros")
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 1 || scores[0].Pseudo != "Ada" {
		t.Errorf("Top() actual = %+v", scores)
	}

	scores, err = c.Top(context.Background(), "Galaga")
	if err != nil {
		t.Fatalf("Top() on 404 error = %v, expected none", err)
	}
	if scores == nil || len(scores) != 0 {
		t.Errorf("Top() on 404 actual = %#v, expected empty", scores)
	}
}

func TestClient_All_ServerError(t *testing.T) {
	s := newTestServer(t)
	c := NewClient(s.URL + "/api")

	_, err := c.All(context.Background())
	var herr *HTTPError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusInternalServerError || herr.Message != "boom" {
		t.Errorf("All() error = %v", err)
	}
	if IsNotFound(err) {
		t.Errorf("IsNotFound(500) = true")
	}
}

func TestClient_Unreachable(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	u := s.URL
	s.Close()

	c := NewClient(u + "/api")
	if _, err := c.Submit(context.Background(), Submission{Pseudo: "Ada", Score: 1, Game: "Galaga"}); err == nil {
		t.Errorf("Submit() to closed server returned no error")
	}
}
