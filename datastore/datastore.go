/*
Package datastore persists localization catalogs in a SQL database. Each
domain holds one catalog; entries, per-language translations and plural
forms are stored in separate tables so nothing of the resource model is
lost in the round trip through the store.
*/
package datastore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/WendellXY/langcodec/catalog"
	"github.com/WendellXY/langcodec/config"
)

// ErrNotFound is returned when a domain, entry or translation does not
// exist in the database.
var ErrNotFound = errors.New("datastore: not found")

// Adapter provides database-driver-specific query strings, etc.
type Adapter interface {
	PostCreate(*sqlx.DB) error
	EnsureVersionTableExists(*sqlx.DB) error
	MigrateUp(*sqlx.DB) (int64, error)
	MigrateDown(*sqlx.DB) (int64, error)
	CreateDomainQuery() string
	CreateEntryQuery() string
	CreateTranslationQuery() string
	CreatePluralFormQuery() string
	GetAllDomainsQuery() string
	GetAllLanguagesQuery() string
	GetSingleDomainIdQuery() string
	GetSingleEntryIdQuery() string
	GetSingleTranslationIdQuery() string
	GetDomainEntriesQuery() string
	GetDomainPluralFormsQuery() string
	UpdateTranslationQuery() string
	DeleteTranslationQuery() string
	DeletePluralFormsQuery() string
}

type DataStore struct {
	adapter     Adapter
	db          *sqlx.DB
	domainCache map[string]int64
	entryCache  map[EntryKey]int64
	Stats       Stats
}

type EntryKey struct {
	DomainId int64
	Key      string
}

type Stats map[StatKey]StatItem

type StatKey struct {
	Name   string
	Action string
}

type StatItem struct {
	Duration time.Duration
	Count    int
}

func (s Stats) Log(name, action string, d time.Duration) {
	item := s[StatKey{Name: name, Action: action}]
	item.Count++
	item.Duration += d
	s[StatKey{Name: name, Action: action}] = item
}

func (s Stats) String() (out string) {
	for k, v := range s {
		out += fmt.Sprintf("%v  %v '%v' actions took %v total, %v avg\n", v.Count, k.Name, k.Action, v.Duration, v.Duration/time.Duration(v.Count))
	}

	return out
}

// Creates a new datastore using the given database connection. The driver
// parameter is used to select the appropriate database adapter, and should
// be one of the config.DbDriver* constants.
func New(db *sqlx.DB, driver string) (ds *DataStore, err error) {
	adp, err := newAdapter(driver)
	if err != nil {
		return &DataStore{}, err
	}

	ds = &DataStore{
		adapter:     adp,
		db:          db,
		domainCache: make(map[string]int64),
		entryCache:  make(map[EntryKey]int64),
		Stats:       make(map[StatKey]StatItem),
	}

	err = ds.adapter.PostCreate(ds.db)
	if err != nil {
		return ds, err
	}

	return ds, nil
}

func newAdapter(driver string) (adp Adapter, err error) {
	switch driver {
	case config.DbDriverSqlite3:
		adp = &Sqlite3Adapter{}
	}

	if adp == nil {
		return nil, fmt.Errorf("no adapter available for database driver '%v'", driver)
	}

	return adp, nil
}

// MigrateUp brings the database schema up to the latest version.
func (ds *DataStore) MigrateUp() (version int64, err error) {
	if err = ds.adapter.EnsureVersionTableExists(ds.db); err != nil {
		return 0, err
	}
	return ds.adapter.MigrateUp(ds.db)
}

// MigrateDown reverts all schema migrations.
func (ds *DataStore) MigrateDown() (version int64, err error) {
	if err = ds.adapter.EnsureVersionTableExists(ds.db); err != nil {
		return 0, err
	}
	return ds.adapter.MigrateDown(ds.db)
}

func (ds *DataStore) getDomainId(name string) (id int64, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("domain", "get", time.Since(start)) }()

	if id, ok := ds.domainCache[name]; ok {
		return id, nil
	}

	row := ds.db.QueryRow(ds.adapter.GetSingleDomainIdQuery(), name)
	err = row.Scan(&id)
	if err != nil {
		return 0, err
	}
	ds.domainCache[name] = id

	return id, nil
}

func (ds *DataStore) createDomain(name string) (id int64, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("domain", "insert", time.Since(start)) }()

	result, err := ds.db.Exec(ds.adapter.CreateDomainQuery(), name)
	if err != nil {
		return 0, err
	}

	id, err = result.LastInsertId()
	if err != nil {
		return 0, err
	}
	ds.domainCache[name] = id

	return id, nil
}

func (ds *DataStore) createOrGetDomain(name string) (id int64, err error) {
	id, err = ds.getDomainId(name)

	if err == sql.ErrNoRows {
		return ds.createDomain(name)
	}

	return id, err
}

func (ds *DataStore) getEntryId(key string, domainId int64) (id int64, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("entry", "get", time.Since(start)) }()

	if id, ok := ds.entryCache[EntryKey{DomainId: domainId, Key: key}]; ok {
		return id, nil
	}

	row := ds.db.QueryRow(ds.adapter.GetSingleEntryIdQuery(), key, domainId)
	err = row.Scan(&id)
	if err != nil {
		return 0, err
	}
	ds.entryCache[EntryKey{DomainId: domainId, Key: key}] = id

	return id, nil
}

func (ds *DataStore) createEntry(key string, domainId int64) (id int64, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("entry", "insert", time.Since(start)) }()

	result, err := ds.db.Exec(ds.adapter.CreateEntryQuery(), key, domainId)
	if err != nil {
		return 0, err
	}

	id, err = result.LastInsertId()
	if err != nil {
		return 0, err
	}
	ds.entryCache[EntryKey{DomainId: domainId, Key: key}] = id

	return id, nil
}

func (ds *DataStore) createOrGetEntry(key string, domainId int64) (id int64, err error) {
	id, err = ds.getEntryId(key, domainId)

	if err == sql.ErrNoRows {
		id, err = ds.createEntry(key, domainId)
	}

	return id, err
}

func (ds *DataStore) getTranslationId(entryId int64, language string) (id int64, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("translation", "get", time.Since(start)) }()

	row := ds.db.QueryRow(ds.adapter.GetSingleTranslationIdQuery(), entryId, language)
	err = row.Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// translationColumns flattens a catalog entry for storage. Plural forms go
// to their own table keyed by the translation row.
func translationColumns(e catalog.Entry) (kind int, value string, status string) {
	if e.Value.IsPlural() {
		kind = 1
	} else {
		value = e.Value.Single()
	}
	return kind, value, e.Status.String()
}

func (ds *DataStore) insertTranslation(entryId int64, e catalog.Entry) (id int64, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("translation", "insert", time.Since(start)) }()

	kind, value, status := translationColumns(e)
	result, err := ds.db.Exec(ds.adapter.CreateTranslationQuery(), entryId, e.Language, kind, value, status, e.Comment)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

func (ds *DataStore) updateTranslation(transId int64, e catalog.Entry) (err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("translation", "update", time.Since(start)) }()

	kind, value, status := translationColumns(e)
	_, err = ds.db.Exec(ds.adapter.UpdateTranslationQuery(), kind, value, status, e.Comment, transId)

	return err
}

func (ds *DataStore) replacePluralForms(transId int64, e catalog.Entry) (err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("plural_form", "replace", time.Since(start)) }()

	_, err = ds.db.Exec(ds.adapter.DeletePluralFormsQuery(), transId)
	if err != nil {
		return err
	}
	if !e.Value.IsPlural() {
		return nil
	}
	for _, c := range e.Value.PopulatedCategories() {
		v, _ := e.Value.Form(c)
		_, err = ds.db.Exec(ds.adapter.CreatePluralFormQuery(), transId, c.String(), v)
		if err != nil {
			return err
		}
	}

	return nil
}

// Gets all available domain names.
func (ds *DataStore) GetDomainList() (domains []string, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("domain", "get", time.Since(start)) }()

	err = ds.db.Select(&domains, ds.adapter.GetAllDomainsQuery())

	return domains, err
}

// Gets all languages that have at least one stored translation.
func (ds *DataStore) GetLanguageList() (languages []string, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("language", "get", time.Since(start)) }()

	err = ds.db.Select(&languages, ds.adapter.GetAllLanguagesQuery())

	return languages, err
}

// UpsertTranslation stores one catalog entry under the given domain,
// creating the domain, entry and translation rows as needed.
func (ds *DataStore) UpsertTranslation(domainName string, e catalog.Entry) (err error) {
	domId, err := ds.createOrGetDomain(domainName)
	if err != nil {
		return err
	}

	entryId, err := ds.createOrGetEntry(e.Key, domId)
	if err != nil {
		return err
	}

	transId, err := ds.getTranslationId(entryId, e.Language)
	if err == sql.ErrNoRows {
		transId, err = ds.insertTranslation(entryId, e)
		if err != nil {
			return err
		}
		return ds.replacePluralForms(transId, e)
	}
	if err != nil {
		return err
	}

	if err = ds.updateTranslation(transId, e); err != nil {
		return err
	}
	return ds.replacePluralForms(transId, e)
}

// DeleteTranslation removes the translation of one entry in one language.
func (ds *DataStore) DeleteTranslation(domainName, key, language string) (err error) {
	domId, err := ds.getDomainId(domainName)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	entryId, err := ds.getEntryId(key, domId)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	transId, err := ds.getTranslationId(entryId, language)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	start := time.Now()
	defer func() { ds.Stats.Log("translation", "delete", time.Since(start)) }()

	if _, err = ds.db.Exec(ds.adapter.DeletePluralFormsQuery(), transId); err != nil {
		return err
	}
	_, err = ds.db.Exec(ds.adapter.DeleteTranslationQuery(), transId)

	return err
}

// ImportResource stores every entry of a resource under the given domain.
func (ds *DataStore) ImportResource(domainName string, res catalog.Resource) (err error) {
	for _, e := range res.Entries {
		if err = ds.UpsertTranslation(domainName, e); err != nil {
			return fmt.Errorf("importing %v/%v: %w", e.Key, e.Language, err)
		}
	}

	return nil
}

// ExportResource loads the full catalog stored under the given domain.
// Entries come back in the order they were first stored. Returns
// ErrNotFound when the domain does not exist.
func (ds *DataStore) ExportResource(domainName string) (res catalog.Resource, err error) {
	start := time.Now()
	defer func() { ds.Stats.Log("domain", "export", time.Since(start)) }()

	domId, err := ds.getDomainId(domainName)
	if err == sql.ErrNoRows {
		return res, ErrNotFound
	}
	if err != nil {
		return res, err
	}

	var forms []struct {
		TranslationId int64  `db:"translation_id"`
		Category      string `db:"category"`
		Value         string `db:"value"`
	}
	if err = ds.db.Select(&forms, ds.adapter.GetDomainPluralFormsQuery(), domId); err != nil {
		return res, err
	}
	formsByTrans := make(map[int64]map[catalog.Category]string)
	for _, f := range forms {
		c, err := catalog.ParseCategory(f.Category)
		if err != nil {
			return res, err
		}
		if formsByTrans[f.TranslationId] == nil {
			formsByTrans[f.TranslationId] = make(map[catalog.Category]string)
		}
		formsByTrans[f.TranslationId][c] = f.Value
	}

	var rows []struct {
		TranslationId int64  `db:"translation_id"`
		Key           string `db:"key"`
		Language      string `db:"language"`
		Kind          int    `db:"kind"`
		Value         string `db:"value"`
		Status        string `db:"status"`
		Comment       string `db:"comment"`
	}
	if err = ds.db.Select(&rows, ds.adapter.GetDomainEntriesQuery(), domId); err != nil {
		return res, err
	}

	res.Metadata.Set("domain", domainName)
	for _, r := range rows {
		status, err := catalog.ParseStatus(r.Status)
		if err != nil {
			return catalog.Resource{}, err
		}
		entry := catalog.Entry{
			Key:      r.Key,
			Language: r.Language,
			Status:   status,
			Comment:  r.Comment,
		}
		if r.Kind == 1 {
			entry.Value = catalog.Plural(formsByTrans[r.TranslationId])
		} else {
			entry.Value = catalog.Singular(r.Value)
		}
		if err = res.Append(entry); err != nil {
			return catalog.Resource{}, err
		}
	}

	return res, nil
}
