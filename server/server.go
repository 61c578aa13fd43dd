/*
Package server provides a JSON HTTP API over the stored localization
domains: listing, fetching, editing and deleting translations, plus diff
and completion statistics between domains. Mutations trigger a re-export of
the affected domain to the configured export path.
*/
package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/WendellXY/langcodec/catalog"
	"github.com/WendellXY/langcodec/config"
	"github.com/WendellXY/langcodec/datastore"
	"github.com/WendellXY/langcodec/format"
)

var (
	export     chan string
	exportDir  string
	sourceLng  string
	strictMode bool
)

func checkFatal(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func checkHttpWithStatus(e error, w http.ResponseWriter, status int) (hadError bool) {
	if e != nil {
		w.WriteHeader(status)

		errMsg := e.Error()
		// Don't expose internal error detail on not-found responses
		if status == http.StatusNotFound {
			errMsg = "not found"
		}

		jsonErr := struct {
			Error string `json:"error"`
		}{
			Error: errMsg,
		}
		enc := json.NewEncoder(w)
		enc.Encode(jsonErr)

		return true
	}
	return false
}

func checkHttp(e error, w http.ResponseWriter) (hadError bool) {
	status := http.StatusInternalServerError
	if e == sql.ErrNoRows || errors.Is(e, datastore.ErrNotFound) {
		status = http.StatusNotFound
	}
	return checkHttpWithStatus(e, w, status)
}

// Instantiates a datastore for a request using the given DB connection
func handleWithDatastore(db *sqlx.DB, driver string, f func(http.ResponseWriter, *http.Request, *datastore.DataStore)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := datastore.New(db, driver)

		if checkHttpWithStatus(err, w, http.StatusServiceUnavailable) {
			return
		}
		f(w, r, ds)
	}
}

func setJsonHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		h.ServeHTTP(w, r)
	})
}

// Gets list of languages with stored translations
func getLanguagesHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	ls, err := ds.GetLanguageList()
	if checkHttp(err, w) {
		return
	}

	var output struct {
		Languages []string `json:"languages"`
	}
	output.Languages = ls

	enc := json.NewEncoder(w)
	checkHttp(enc.Encode(output), w)
}

// Gets list of available domain names
func getDomainsHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	doms, err := ds.GetDomainList()
	if checkHttp(err, w) {
		return
	}

	var output struct {
		Domains []string `json:"domains"`
	}
	output.Domains = doms

	enc := json.NewEncoder(w)
	checkHttp(enc.Encode(output), w)
}

// Gets a domain with all its entries and translations
func getDomainHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	name := mux.Vars(r)["name"]

	res, err := ds.ExportResource(name)
	if checkHttp(err, w) {
		return
	}

	enc := json.NewEncoder(w)
	checkHttp(enc.Encode(res), w)
}

// Gets per-language completion statistics for a domain
func getDomainStatsHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	name := mux.Vars(r)["name"]

	res, err := ds.ExportResource(name)
	if checkHttp(err, w) {
		return
	}

	enc := json.NewEncoder(w)
	checkHttp(enc.Encode(catalog.Stats(res)), w)
}

// Gets the difference between two stored domains
func getDomainDiffHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	source, err := ds.ExportResource(mux.Vars(r)["name"])
	if checkHttp(err, w) {
		return
	}
	target, err := ds.ExportResource(mux.Vars(r)["other"])
	if checkHttp(err, w) {
		return
	}

	enc := json.NewEncoder(w)
	checkHttp(enc.Encode(catalog.Diff(source, target)), w)
}

// Exports a domain to XLIFF files on disk, one per language
func exportDomainHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	name := mux.Vars(r)["name"]

	err := exportDomain(ds, name, exportDir)
	if checkHttp(err, w) {
		return
	}

	w.Write([]byte("{\"result\":\"ok\"}\n"))
}

type translationBody struct {
	Value   string            `json:"value"`
	Plural  map[string]string `json:"plural,omitempty"`
	Status  string            `json:"status,omitempty"`
	Comment string            `json:"comment,omitempty"`
}

func (b translationBody) toEntry(key, lang string) (e catalog.Entry, err error) {
	e = catalog.Entry{Key: key, Language: lang, Comment: b.Comment}

	if len(b.Plural) > 0 {
		forms := make(map[catalog.Category]string, len(b.Plural))
		for name, value := range b.Plural {
			c, err := catalog.ParseCategory(name)
			if err != nil {
				return e, err
			}
			forms[c] = value
		}
		e.Value = catalog.Plural(forms)
	} else {
		e.Value = catalog.Singular(b.Value)
	}

	e.Status = catalog.Translated
	if b.Status != "" {
		if e.Status, err = catalog.ParseStatus(b.Status); err != nil {
			return e, err
		}
	}
	return e, nil
}

// Creates or updates a translation.
// On success, the affected domain will be re-exported to file.
func createOrUpdateTranslationHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	dName := mux.Vars(r)["domain"]
	key := mux.Vars(r)["key"]
	lang := mux.Vars(r)["lang"]

	var body translationBody
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("Could not decode request (%v)", err.Error()), http.StatusBadRequest)
		return
	}

	entry, err := body.toEntry(key, lang)
	if err != nil {
		checkHttpWithStatus(err, w, http.StatusBadRequest)
		return
	}

	if checkHttp(ds.UpsertTranslation(dName, entry), w) {
		return
	}

	w.Write([]byte("{\"result\":\"ok\"}\n"))

	export <- dName
}

// Deletes a single translation.
// On success, the affected domain will be re-exported to file.
func deleteTranslationHandler(w http.ResponseWriter, r *http.Request, ds *datastore.DataStore) {
	dName := mux.Vars(r)["domain"]
	key := mux.Vars(r)["key"]
	lang := mux.Vars(r)["lang"]

	err := ds.DeleteTranslation(dName, key, lang)
	if checkHttp(err, w) {
		return
	}

	w.Write([]byte("{\"result\":\"ok\"}\n"))

	export <- dName
}

// exportDomain writes one XLIFF file per stored language of the domain.
func exportDomain(ds *datastore.DataStore, name, dir string) error {
	res, err := ds.ExportResource(name)
	if err != nil {
		return err
	}

	reg := format.NewRegistry()
	for _, lang := range res.Languages() {
		path := filepath.Join(dir, fmt.Sprintf("%v.%v.xliff", name, lang))
		opts := format.Options{Strict: strictMode, Language: lang, SourceLanguage: sourceLng}
		if err := reg.WriteFile(path, "xliff", res, opts); err != nil {
			return err
		}
	}
	return nil
}

func Serve(c config.Config) {
	exportDir = c.Import.ExportPath
	sourceLng = c.Validate.SourceLanguage
	strictMode = c.Validate.Strict
	export = make(chan string, 100)

	var db *sqlx.DB
	db, err := sqlx.Connect(c.DB.Driver, c.DB.ConnectionString())
	checkFatal(err)

	// Listen for domains to export to file
	go func() {
		ds, err := datastore.New(db, c.DB.Driver)
		checkFatal(err)

		for {
			d := <-export
			err := exportDomain(ds, d, exportDir)
			if err != nil {
				fmt.Println(err)
			}
		}
	}()

	r := mux.NewRouter().StrictSlash(true)
	r.HandleFunc("/domains", handleWithDatastore(db, c.DB.Driver, getDomainsHandler)).Methods("GET")
	r.HandleFunc("/domains/{name}", handleWithDatastore(db, c.DB.Driver, getDomainHandler)).Methods("GET")
	r.HandleFunc("/domains/{name}/stats", handleWithDatastore(db, c.DB.Driver, getDomainStatsHandler)).Methods("GET")
	r.HandleFunc("/domains/{name}/diff/{other}", handleWithDatastore(db, c.DB.Driver, getDomainDiffHandler)).Methods("GET")
	r.HandleFunc("/domains/{name}/export", handleWithDatastore(db, c.DB.Driver, exportDomainHandler)).Methods("POST")
	r.HandleFunc("/languages", handleWithDatastore(db, c.DB.Driver, getLanguagesHandler)).Methods("GET")
	r.HandleFunc("/domains/{domain}/entries/{key}/translations/{lang}", handleWithDatastore(db, c.DB.Driver, deleteTranslationHandler)).Methods("DELETE")
	r.HandleFunc("/domains/{domain}/entries/{key}/translations/{lang}", handleWithDatastore(db, c.DB.Driver, createOrUpdateTranslationHandler)).Methods("POST", "PUT")

	rWithMiddleWares := handlers.CombinedLoggingHandler(os.Stdout, setJsonHeaders(r))

	fmt.Printf("Listening on port %v\n", c.Server.Port)
	http.ListenAndServe(fmt.Sprintf(":%v", c.Server.Port), rWithMiddleWares)
}
