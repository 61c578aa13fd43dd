/*
A toolkit for working with localization files: converting between formats,
merging and diffing catalogs, syncing translations between file versions,
validating plural coverage and placeholder consistency, and managing a
database of translation domains with a JSON HTTP API.

File formats are inferred from paths (strings.xml, .strings, .xcstrings,
.csv, .tsv, .xliff, .json) and platform layouts like de.lproj/ and
values-fr/ provide the language where the file itself cannot.

Database-backed commands (import, init-db, serve) are controlled by a TOML
config file. By default, the program will look for a file called
'localization-kit.toml' in the working directory; the other commands work
without one.
*/
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/WendellXY/langcodec/config"
	"github.com/WendellXY/langcodec/format"
	"github.com/WendellXY/langcodec/importer"
	"github.com/WendellXY/langcodec/plural"
	"github.com/WendellXY/langcodec/server"
)

var version = "dev"

var defaultConfigPath = filepath.FromSlash("./localization-kit.toml")

var (
	app        = kingpin.New("localization-kit", "Convert, merge, diff, sync and validate localization files.").Version(version)
	configPath = app.Flag("config", "Path to the TOML config file.").Default(defaultConfigPath).String()
	strict     = app.Flag("strict", "Fail on lossy conversions and malformed input instead of degrading with warnings.").Bool()

	convertCmd    = app.Command("convert", "Convert a localization file to another format.")
	convertInput  = convertCmd.Arg("input", "File to convert.").Required().String()
	convertOutput = convertCmd.Arg("output", "File to write.").Required().String()
	convertInFmt  = convertCmd.Flag("input-format", "Input format (inferred from the path by default).").String()
	convertOutFmt = convertCmd.Flag("output-format", "Output format (inferred from the path by default).").String()
	convertLang   = convertCmd.Flag("lang", "Language of the input file (inferred from the path by default).").String()
	convertSrc    = convertCmd.Flag("source-lang", "Source language to record in the output, for formats that carry one.").String()

	mergeCmd      = app.Command("merge", "Merge several localization files into one.")
	mergeInputs   = mergeCmd.Arg("inputs", "Files to merge, in priority order.").Required().Strings()
	mergeOutput   = mergeCmd.Flag("output", "File to write.").Short('o').Required().String()
	mergeStrategy = mergeCmd.Flag("strategy", "Conflict resolution: first, last or error.").Default("first").String()
	mergeLang     = mergeCmd.Flag("lang", "Language to assume for inputs that cannot express one.").String()

	diffCmd    = app.Command("diff", "Show the difference between two localization files.")
	diffSource = diffCmd.Arg("source", "Baseline file.").Required().String()
	diffTarget = diffCmd.Arg("target", "Changed file.").Required().String()
	diffJSON   = diffCmd.Flag("json", "Print the report as JSON.").Bool()
	diffLang   = diffCmd.Flag("lang", "Language to assume for inputs that cannot express one.").String()

	syncCmd       = app.Command("sync", "Carry translations from an old file version over to a new one.")
	syncSource    = syncCmd.Arg("source", "File holding the translations to carry over.").Required().String()
	syncTarget    = syncCmd.Arg("target", "File to update.").Required().String()
	syncMatchLang = syncCmd.Flag("match-lang", "Language used to match renamed keys by value.").Default("en").String()
	syncOutput    = syncCmd.Flag("output", "File to write (defaults to updating the target in place).").Short('o').String()
	syncFailUnmat = syncCmd.Flag("fail-on-unmatched", "Exit non-zero when entries stay unmatched.").Bool()
	syncFailAmbig = syncCmd.Flag("fail-on-ambiguous", "Exit non-zero when entries are ambiguous.").Bool()

	statsCmd   = app.Command("stats", "Show per-language entry counts and completion.")
	statsInput = statsCmd.Arg("input", "File to analyze.").Required().String()
	statsJSON  = statsCmd.Flag("json", "Print the report as JSON.").Bool()
	statsLang  = statsCmd.Flag("lang", "Language to assume for inputs that cannot express one.").String()

	validateCmd   = app.Command("validate", "Validate a localization file.")
	validateKind  = validateCmd.Arg("check", "Check to run: plurals or placeholders.").Required().Enum("plurals", "placeholders")
	validateInput = validateCmd.Arg("input", "File to validate.").Required().String()
	validateRules = validateCmd.Flag("rules", "YAML file overriding the built-in plural rule table.").String()
	validateSrc   = validateCmd.Flag("source-lang", "Reference language for the placeholder check.").String()
	validateLang  = validateCmd.Flag("lang", "Language to assume for inputs that cannot express one.").String()
	validateFix   = validateCmd.Flag("fix", "Rewrite repairable placeholder mismatches back to the file.").Bool()

	editCmd     = app.Command("edit", "Edit a localization file.")
	editSetCmd  = editCmd.Command("set", "Add, update or remove one entry.")
	editFile    = editSetCmd.Arg("file", "File to edit.").Required().String()
	editKey     = editSetCmd.Arg("key", "Entry key.").Required().String()
	editLang    = editSetCmd.Flag("lang", "Entry language.").Required().String()
	editValue   = editSetCmd.Flag("value", "New value. Omit to remove the entry.").String()
	editComment = editSetCmd.Flag("comment", "Comment to attach.").String()
	editStatus  = editSetCmd.Flag("status", "Status to set (new, translated, needs_review, stale, do_not_translate).").String()
	editOutput  = editSetCmd.Flag("output", "File to write (defaults to editing in place).").Short('o').String()
	editDryRun  = editSetCmd.Flag("dry-run", "Show what would change without writing.").Bool()

	viewCmd   = app.Command("view", "Print the entries of a localization file.")
	viewInput = viewCmd.Arg("input", "File to view.").Required().String()
	viewLang  = viewCmd.Flag("lang", "Only show entries of this language.").String()

	importCmd = app.Command("import", "Import localization files from the configured import path into the database.")
	initDbCmd = app.Command("init-db", "Initialize or migrate the database schema.")
	serveCmd  = app.Command("serve", "Start the JSON HTTP API server.")
)

// Exit codes: 0 ok, 1 general failure, 2 plural validation failure.
const (
	exitOK            = 0
	exitFailure       = 1
	exitPluralFailure = 2
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	reg := format.NewRegistry()
	var err error
	switch command {
	case convertCmd.FullCommand():
		err = runConvert(reg)
	case mergeCmd.FullCommand():
		err = runMerge(reg)
	case diffCmd.FullCommand():
		err = runDiff(reg)
	case syncCmd.FullCommand():
		err = runSync(reg)
	case statsCmd.FullCommand():
		err = runStats(reg)
	case validateCmd.FullCommand():
		err = runValidate(reg)
	case editSetCmd.FullCommand():
		err = runEditSet(reg)
	case viewCmd.FullCommand():
		err = runView(reg)
	case importCmd.FullCommand():
		err = withConfig(importer.Import)
	case initDbCmd.FullCommand():
		err = withConfig(runInitDb)
	case serveCmd.FullCommand():
		err = withConfig(func(c config.Config) error {
			server.Serve(c)
			return nil
		})
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var perr *plural.ValidationError
		if errors.As(err, &perr) {
			os.Exit(exitPluralFailure)
		}
		os.Exit(exitFailure)
	}
	os.Exit(exitOK)
}

// withConfig loads the config file before running a database-backed command.
// A missing file at the default path falls back to the built-in defaults; an
// explicitly given path must exist.
func withConfig(f func(config.Config) error) error {
	c, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) || *configPath != defaultConfigPath {
			return err
		}
		c = config.Default()
	}
	return f(c)
}

// warn prints non-fatal degradation notices from the format layer.
func warn(msg string) {
	fmt.Fprintln(os.Stderr, "Warning:", msg)
}

func baseOptions() format.Options {
	return format.Options{Strict: *strict, Warn: warn}
}
