package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"prizewheel/internal/location"
	"prizewheel/internal/persistence"
)

type upstream struct {
	srv      *httptest.Server
	failIBGE atomic.Bool
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ip/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"city":"Curitiba","region":"Paraná"}`))
	})
	mux.HandleFunc("/localidades/estados", func(w http.ResponseWriter, r *http.Request) {
		if u.failIBGE.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"id":41,"sigla":"PR","nome":"Paraná"},{"id":35,"sigla":"SP","nome":"São Paulo"}]`))
	})
	mux.HandleFunc("/localidades/estados/41/municipios", func(w http.ResponseWriter, r *http.Request) {
		if u.failIBGE.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"id":4106902,"nome":"Curitiba"},{"id":4113700,"nome":"Londrina"}]`))
	})
	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

func newLocationRouter(u *upstream) chi.Router {
	svc := location.NewService(
		location.NewGeoClient(u.srv.Client(), u.srv.URL),
		location.NewIBGEClient(u.srv.Client(), u.srv.URL),
		nil,
	)
	r := chi.NewRouter()
	NewLocationHandler(svc, persistence.NewJar(false), time.Second, nil).RegisterRoutes(r)
	return r
}

func serve(r http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestLocation_DetectsAndSuggestsState(t *testing.T) {
	r := newLocationRouter(newUpstream(t))

	rec := serve(r, http.MethodGet, "/location", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("code %d", rec.Code)
	}
	var body LocationResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.City != "Curitiba" || body.Region != "Paraná" {
		t.Errorf("location %+v", body.Location)
	}
	if body.Confirmed {
		t.Error("detected location should not be confirmed")
	}
	if body.Suggested == nil || body.Suggested.ID != 41 {
		t.Errorf("suggested %+v, want Paraná", body.Suggested)
	}
}

func TestLocation_StoredLocationWins(t *testing.T) {
	r := newLocationRouter(newUpstream(t))

	rec := serve(r, http.MethodGet, "/location", "",
		&http.Cookie{Name: persistence.KeyCity, Value: "Londrina"},
		&http.Cookie{Name: persistence.KeyRegion, Value: url.PathEscape("Paraná - PR")},
	)
	var body LocationResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.Confirmed || body.City != "Londrina" || body.Region != "Paraná - PR" {
		t.Errorf("body %+v", body)
	}
}

func TestLocation_Confirm(t *testing.T) {
	r := newLocationRouter(newUpstream(t))

	rec := serve(r, http.MethodPost, "/location/confirm", `{"city":"Curitiba","region":"Paraná"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code %d: %s", rec.Code, rec.Body.String())
	}
	if got := cookieValue(t, rec.Result().Cookies(), persistence.KeyCity); got != "Curitiba" {
		t.Errorf("%s = %q", persistence.KeyCity, got)
	}

	if rec := serve(r, http.MethodPost, "/location/confirm", `{"city":""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty body: code %d, want 400", rec.Code)
	}
}

func TestLocation_StatesAndCities(t *testing.T) {
	r := newLocationRouter(newUpstream(t))

	rec := serve(r, http.MethodGet, "/location/states", "")
	var states StatesResponse
	if err := json.NewDecoder(rec.Body).Decode(&states); err != nil {
		t.Fatal(err)
	}
	if len(states.States) != 2 {
		t.Errorf("states %d, want 2", len(states.States))
	}

	rec = serve(r, http.MethodGet, "/location/states/41/cities", "")
	var cities CitiesResponse
	if err := json.NewDecoder(rec.Body).Decode(&cities); err != nil {
		t.Fatal(err)
	}
	if len(cities.Cities) != 2 || cities.Cities[0].Nome != "Curitiba" {
		t.Errorf("cities %+v", cities.Cities)
	}

	if rec := serve(r, http.MethodGet, "/location/states/abc/cities", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: code %d, want 400", rec.Code)
	}
}

func TestLocation_UpstreamFailureIsReported(t *testing.T) {
	u := newUpstream(t)
	u.failIBGE.Store(true)
	r := newLocationRouter(u)

	rec := serve(r, http.MethodGet, "/location/states", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("code %d, want 502", rec.Code)
	}
	var body StatesResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Error != msgStatesUnavailable {
		t.Errorf("error %q", body.Error)
	}
}

func TestLocation_Manual(t *testing.T) {
	r := newLocationRouter(newUpstream(t))

	rec := serve(r, http.MethodPost, "/location/manual", `{"stateId":41,"city":"Londrina"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("code %d: %s", rec.Code, rec.Body.String())
	}
	cookies := rec.Result().Cookies()
	if got := cookieValue(t, cookies, persistence.KeyRegion); got != url.PathEscape("Paraná - PR") {
		t.Errorf("%s = %q", persistence.KeyRegion, got)
	}

	if rec := serve(r, http.MethodPost, "/location/manual", `{"stateId":41,"city":"Atlantis"}`); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown city: code %d, want 422", rec.Code)
	}
	if rec := serve(r, http.MethodPost, "/location/manual", `{"stateId":0,"city":"Curitiba"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing state: code %d, want 400", rec.Code)
	}
}
