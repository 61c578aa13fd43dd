package datastore

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Sqlite3Adapter provides support for SQLite3 databases.
type Sqlite3Adapter struct{}

func (s Sqlite3Adapter) EnsureVersionTableExists(db *sqlx.DB) (err error) {
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS "schema_migrations" ("version" INTEGER PRIMARY KEY NOT NULL)`)
	if err != nil {
		return err
	}

	var count int
	err = db.Get(&count, `SELECT COUNT(*) FROM schema_migrations`)
	if err != nil {
		return err
	}
	switch {
	case count == 0:
		_, err = db.Exec(`INSERT INTO schema_migrations (version) VALUES (0)`)
	case count > 1:
		err = errors.New("too many rows in schema_migrations table")
	}

	return err
}

func (s Sqlite3Adapter) PostCreate(db *sqlx.DB) (err error) {
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return err
	}
	// Faster than using default journal file
	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return err
	}
	// Default (full) is slower
	_, err = db.Exec("PRAGMA synchronous = NORMAL")
	if err != nil {
		return err
	}

	return nil
}

func (s Sqlite3Adapter) up() []string {
	return []string{
		// 1
		`
CREATE TABLE "domain" (
    "id" INTEGER PRIMARY KEY AUTOINCREMENT,
    "name" TEXT UNIQUE
);
CREATE TABLE "entry" (
    "id" INTEGER PRIMARY KEY AUTOINCREMENT,
    "key" TEXT,
    "domain_id" INTEGER REFERENCES "domain"("id") ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE INDEX "entry_domain_id" ON "entry" ("domain_id");
CREATE UNIQUE INDEX "entry_domain_key" ON "entry" ("domain_id", "key");
CREATE TABLE "translation" (
    "id" INTEGER PRIMARY KEY AUTOINCREMENT,
    "entry_id" INTEGER REFERENCES "entry"("id") ON UPDATE CASCADE ON DELETE CASCADE,
    "language" TEXT,
    "kind" INTEGER NOT NULL DEFAULT 0,
    "value" TEXT,
    "status" TEXT NOT NULL DEFAULT 'new',
    "comment" TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX "translation_entry_language" ON "translation" ("entry_id", "language");
CREATE TABLE "plural_form" (
    "id" INTEGER PRIMARY KEY AUTOINCREMENT,
    "translation_id" INTEGER REFERENCES "translation"("id") ON UPDATE CASCADE ON DELETE CASCADE,
    "category" TEXT,
    "value" TEXT
);
CREATE UNIQUE INDEX "plural_form_translation_category" ON "plural_form" ("translation_id", "category");
`,
		// 2
		`CREATE INDEX "translation_language" ON "translation" ("language")`,
	}
}

func (s Sqlite3Adapter) down() []string {
	return []string{
		// 1
		`
DROP TABLE plural_form;
DROP TABLE translation;
DROP TABLE entry;
DROP TABLE domain;
`,
		// 2
		`DROP INDEX "translation_language"`,
	}
}

func (s Sqlite3Adapter) MigrateUp(db *sqlx.DB) (version int64, err error) {
	startVer, err := s.version(db)
	if err != nil {
		return version, err
	}

	for i, query := range s.up() {
		migTo := int64(i + 1)
		if migTo <= startVer {
			version = migTo
			continue
		}

		_, err = db.Exec(query)
		if err != nil {
			return version, err
		}

		err = s.updateVersion(migTo, db)
		if err != nil {
			return version, err
		}

		version = migTo
	}

	return version, err
}

func (s Sqlite3Adapter) MigrateDown(db *sqlx.DB) (version int64, err error) {
	startVer, err := s.version(db)
	if err != nil {
		return version, err
	}

	down := s.down()
	for i := len(down) - 1; i >= 0; i-- {
		query := down[i]
		migVer := int64(i + 1) // The version of the Down migration we will apply
		migTo := int64(i)      // The version we will end up at

		// Skip migrations for newer versions
		if migVer > startVer {
			version = startVer
			continue
		}

		_, err = db.Exec(query)
		if err != nil {
			return version, err
		}

		err = s.updateVersion(migTo, db)
		if err != nil {
			return version, err
		}

		version = migTo
	}

	return version, err
}

func (s Sqlite3Adapter) CreateDomainQuery() string {
	return "INSERT INTO domain (name) VALUES (?)"
}

func (s Sqlite3Adapter) CreateEntryQuery() string {
	return "INSERT INTO entry (key, domain_id) VALUES (?, ?)"
}

func (s Sqlite3Adapter) CreateTranslationQuery() string {
	return "INSERT INTO translation (entry_id, language, kind, value, status, comment) VALUES (?, ?, ?, ?, ?, ?)"
}

func (s Sqlite3Adapter) CreatePluralFormQuery() string {
	return "INSERT INTO plural_form (translation_id, category, value) VALUES (?, ?, ?)"
}

func (s Sqlite3Adapter) GetAllDomainsQuery() string {
	return "SELECT name FROM domain ORDER BY name"
}

func (s Sqlite3Adapter) GetAllLanguagesQuery() string {
	return "SELECT DISTINCT language FROM translation ORDER BY language"
}

func (s Sqlite3Adapter) GetSingleDomainIdQuery() string {
	return "SELECT id FROM domain WHERE name=?"
}

func (s Sqlite3Adapter) GetSingleEntryIdQuery() string {
	return "SELECT id FROM entry WHERE key = ? AND domain_id = ?"
}

func (s Sqlite3Adapter) GetSingleTranslationIdQuery() string {
	return "SELECT id FROM translation WHERE entry_id = ? AND language = ?"
}

func (s Sqlite3Adapter) GetDomainEntriesQuery() string {
	return "SELECT translation.id AS translation_id, entry.key, translation.language, translation.kind, translation.value, translation.status, translation.comment FROM entry INNER JOIN translation ON entry.id = translation.entry_id WHERE entry.domain_id = ? ORDER BY entry.id, translation.id"
}

func (s Sqlite3Adapter) GetDomainPluralFormsQuery() string {
	return "SELECT plural_form.translation_id, plural_form.category, plural_form.value FROM plural_form INNER JOIN translation ON plural_form.translation_id = translation.id INNER JOIN entry ON translation.entry_id = entry.id WHERE entry.domain_id = ?"
}

func (s Sqlite3Adapter) UpdateTranslationQuery() string {
	return "UPDATE translation SET kind=?, value=?, status=?, comment=? WHERE id=?"
}

func (s Sqlite3Adapter) DeleteTranslationQuery() string {
	return "DELETE FROM translation WHERE id = ?"
}

func (s Sqlite3Adapter) DeletePluralFormsQuery() string {
	return "DELETE FROM plural_form WHERE translation_id = ?"
}

func (s Sqlite3Adapter) version(db *sqlx.DB) (version int64, err error) {
	row := db.QueryRow("SELECT version FROM schema_migrations")
	err = row.Scan(&version)
	switch {
	case err == sql.ErrNoRows:
		return 0, nil
	case err != nil:
		return 0, err
	default:
		return version, nil
	}
}

func (s Sqlite3Adapter) updateVersion(version int64, db *sqlx.DB) (err error) {
	_, err = db.Exec("UPDATE schema_migrations SET version = ?", int64(version))

	return err
}
