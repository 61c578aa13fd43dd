package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/WendellXY/langcodec/catalog"
	"github.com/WendellXY/langcodec/datastore"
)

func newTestRouter(t *testing.T) (*mux.Router, *datastore.DataStore) {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	ds, err := datastore.New(db, "sqlite3")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ds.MigrateUp(); err != nil {
		t.Fatal(err)
	}

	// Mutation handlers publish to the export channel; drain it.
	export = make(chan string, 100)
	exportDir = t.TempDir()

	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/domains", handleWithDatastore(db, "sqlite3", getDomainsHandler)).Methods("GET")
	r.HandleFunc("/domains/{name}", handleWithDatastore(db, "sqlite3", getDomainHandler)).Methods("GET")
	r.HandleFunc("/domains/{name}/stats", handleWithDatastore(db, "sqlite3", getDomainStatsHandler)).Methods("GET")
	r.HandleFunc("/domains/{name}/diff/{other}", handleWithDatastore(db, "sqlite3", getDomainDiffHandler)).Methods("GET")
	r.HandleFunc("/languages", handleWithDatastore(db, "sqlite3", getLanguagesHandler)).Methods("GET")
	r.HandleFunc("/domains/{domain}/entries/{key}/translations/{lang}", handleWithDatastore(db, "sqlite3", deleteTranslationHandler)).Methods("DELETE")
	r.HandleFunc("/domains/{domain}/entries/{key}/translations/{lang}", handleWithDatastore(db, "sqlite3", createOrUpdateTranslationHandler)).Methods("POST", "PUT")
	return r, ds
}

func seed(t *testing.T, ds *datastore.DataStore, domain string) {
	t.Helper()
	res, err := catalog.NewResource(catalog.Meta{}, []catalog.Entry{
		{Key: "greeting", Language: "en", Value: catalog.Singular("Hello"), Status: catalog.Translated},
		{Key: "greeting", Language: "de", Value: catalog.Singular("Hallo"), Status: catalog.Translated},
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := ds.ImportResource(domain, res); err != nil {
		t.Fatal(err)
	}
}

func doRequest(t *testing.T, r *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetDomains(t *testing.T) {
	r, ds := newTestRouter(t)
	seed(t, ds, "app")

	w := doRequest(t, r, "GET", "/domains", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var out struct {
		Domains []string `json:"domains"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Domains) != 1 || out.Domains[0] != "app" {
		t.Errorf("domains = %v", out.Domains)
	}
}

func TestGetDomainNotFound(t *testing.T) {
	r, _ := newTestRouter(t)
	w := doRequest(t, r, "GET", "/domains/none", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not found") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestUpsertAndDeleteTranslation(t *testing.T) {
	r, ds := newTestRouter(t)
	seed(t, ds, "app")

	w := doRequest(t, r, "POST", "/domains/app/entries/farewell/translations/de",
		`{"value": "Tschüss", "status": "needs_review"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	res, err := ds.ExportResource("app")
	if err != nil {
		t.Fatal(err)
	}
	e, ok := res.Find("farewell", "de")
	if !ok {
		t.Fatal("created translation missing")
	}
	if e.Value.Single() != "Tschüss" || e.Status != catalog.NeedsReview {
		t.Errorf("entry = %+v", e)
	}

	w = doRequest(t, r, "DELETE", "/domains/app/entries/farewell/translations/de", "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doRequest(t, r, "DELETE", "/domains/app/entries/farewell/translations/de", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestUpsertPluralTranslation(t *testing.T) {
	r, ds := newTestRouter(t)
	seed(t, ds, "app")

	w := doRequest(t, r, "PUT", "/domains/app/entries/files/translations/pl",
		`{"plural": {"one": "%d plik", "few": "%d pliki", "many": "%d plików", "other": "%d pliku"}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	res, err := ds.ExportResource("app")
	if err != nil {
		t.Fatal(err)
	}
	e, ok := res.Find("files", "pl")
	if !ok || !e.Value.IsPlural() {
		t.Fatalf("plural entry not stored: %+v", e)
	}
	if v, _ := e.Value.Form(catalog.Many); v != "%d plików" {
		t.Errorf("many form = %q", v)
	}
}

func TestUpsertRejectsBadStatus(t *testing.T) {
	r, ds := newTestRouter(t)
	seed(t, ds, "app")

	w := doRequest(t, r, "POST", "/domains/app/entries/x/translations/de",
		`{"value": "x", "status": "approved"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDomainDiffAndStats(t *testing.T) {
	r, ds := newTestRouter(t)
	seed(t, ds, "app")
	seed(t, ds, "web")

	extra := catalog.Entry{Key: "extra", Language: "de", Value: catalog.Singular("Mehr"), Status: catalog.Translated}
	if err := ds.UpsertTranslation("web", extra); err != nil {
		t.Fatal(err)
	}

	w := doRequest(t, r, "GET", "/domains/app/diff/web", "")
	if w.Code != http.StatusOK {
		t.Fatalf("diff status = %d", w.Code)
	}
	var diff map[string]struct {
		Added []string `json:"added"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &diff); err != nil {
		t.Fatal(err)
	}
	if len(diff["de"].Added) != 1 || diff["de"].Added[0] != "extra" {
		t.Errorf("diff = %s", w.Body.String())
	}

	w = doRequest(t, r, "GET", "/domains/app/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}
	var stats []struct {
		Language   string  `json:"language"`
		Completion float64 `json:"completion_percent"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 || stats[0].Completion != 100 {
		t.Errorf("stats = %s", w.Body.String())
	}
}
