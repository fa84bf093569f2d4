package places

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/WessleyAI/whachapay/pkg/resilience"
)

func serve(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	h.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandler_Autocomplete(t *testing.T) {
	p := &stubProvider{results: []Suggestion{honolulu}}
	rec := serve(t, NewHandler(p, nil, nil), AutocompletePath+"?q=Hono")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []Suggestion
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Honolulu" {
		t.Fatalf("unexpected suggestions %+v", got)
	}
}

func TestHandler_AutocompleteBlank(t *testing.T) {
	p := &stubProvider{}
	rec := serve(t, NewHandler(p, nil, nil), AutocompletePath)
	if rec.Code != http.StatusOK || rec.Body.String() != "[]\n" {
		t.Fatalf("expected empty list, got %d %q", rec.Code, rec.Body.String())
	}
	if len(p.queries) != 0 {
		t.Fatal("blank query must not reach the provider")
	}
}

func TestHandler_AutocompleteErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errors.New("boom"), http.StatusBadGateway},
		{resilience.ErrCircuitOpen, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		rec := serve(t, NewHandler(&stubProvider{err: tc.err}, nil, nil), AutocompletePath+"?q=x")
		if rec.Code != tc.want {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

func TestHandler_Map(t *testing.T) {
	rec := serve(t, NewHandler(&stubProvider{}, nil, nil), MapPath+"?id=m1&name=Car&location=21.3,-157.8")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Zoom int    `json:"zoom"`
		URL  string `json:"url"`
	}
	json.NewDecoder(rec.Body).Decode(&got)
	if got.Zoom != DefaultZoom || got.URL == "" {
		t.Fatalf("unexpected body %+v", got)
	}

	rec = serve(t, NewHandler(&stubProvider{}, nil, nil), MapPath+"?location=bad")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
