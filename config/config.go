/*
Package config implements TOML config file handling for the localization
toolkit.

Normally it will be used by simply passing a config file name to the Load
function to obtain a Config struct.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const DbDriverSqlite3 = "sqlite3"

// Config represents the parsed configuration for the localization toolkit.
type Config struct {
	DB       DbConfig       `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Import   ImportConfig   `toml:"import"`
	Validate ValidateConfig `toml:"validate"`
}

// valid checks if the Config is valid in its current state.
func (c *Config) valid() error {
	if c.DB.Driver != DbDriverSqlite3 {
		return fmt.Errorf("config: invalid database.driver value. (Must be '%v')", DbDriverSqlite3)
	}
	if len(c.DB.File) == 0 {
		return errors.New("config: missing database.file value")
	}
	if c.Server.Port < 0 {
		return errors.New("config: server.port is invalid")
	}
	if len(c.Import.ImportPath) == 0 {
		return errors.New("config: missing import.import_path value")
	}
	if len(c.Import.ExportPath) == 0 {
		return errors.New("config: missing import.export_path value")
	}
	if len(c.Validate.SourceLanguage) == 0 {
		return errors.New("config: missing validate.source_language value")
	}
	if len(c.Validate.PluralRules) > 0 {
		if _, err := os.Stat(filepath.FromSlash(c.Validate.PluralRules)); os.IsNotExist(err) {
			return errors.New("config: validate.plural_rules file does not exist")
		}
	}
	return nil
}

// DbConfig contains database connection configuration.
type DbConfig struct {
	// Must currently be 'sqlite3'
	Driver string
	// Path to the database file
	File string
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port that the server should run on.
	Port int
}

// ImportConfig contains bulk import/export configuration.
type ImportConfig struct {
	// Path to import localization files from
	ImportPath string `toml:"import_path"`
	// Path to export localization files to
	ExportPath string `toml:"export_path"`
	// Domain that imported files are stored under when their metadata
	// does not name one
	DefaultDomain string `toml:"default_domain"`
	// Rewrite keys to snake_case on import
	NormalizeKeys bool `toml:"normalize_keys"`
}

// ValidateConfig contains validation configuration.
type ValidateConfig struct {
	// Reference language for placeholder validation
	SourceLanguage string `toml:"source_language"`
	// Optional YAML file overriding the built-in plural rule table
	PluralRules string `toml:"plural_rules"`
	// Treat validation findings as fatal
	Strict bool `toml:"strict"`
}

// Gets a connection string for this config.
func (d *DbConfig) ConnectionString() string {
	return d.File
}

// Creates a new Config with some default values.
func defaults() Config {
	return Config{
		DB: DbConfig{
			Driver: DbDriverSqlite3,
			File:   filepath.FromSlash("./localization.db"),
		},
		Server: ServerConfig{
			Port: 8181,
		},
		Import: ImportConfig{
			ImportPath:    filepath.FromSlash("./l10n-in"),
			ExportPath:    filepath.FromSlash("./l10n-out"),
			DefaultDomain: "default",
		},
		Validate: ValidateConfig{
			SourceLanguage: "en",
		},
	}
}

// Loads config from a TOML file and checks its validity.
func Load(file string) (Config, error) {
	conf := defaults()
	_, err := toml.DecodeFile(file, &conf)
	if err != nil {
		return conf, err
	}

	if err = conf.valid(); err != nil {
		return conf, err
	}

	return conf, nil
}

// Default returns the built-in configuration, used when no config file is
// present at the default path.
func Default() Config {
	return defaults()
}
