package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/WendellXY/langcodec/catalog"
	"github.com/WendellXY/langcodec/config"
	"github.com/WendellXY/langcodec/datastore"
	"github.com/WendellXY/langcodec/format"
	"github.com/WendellXY/langcodec/placeholder"
	"github.com/WendellXY/langcodec/plural"
)

func parseInput(reg *format.Registry, path, tag, lang string) (catalog.Resource, error) {
	opts := baseOptions()
	opts.Language = lang
	return reg.ParseFile(path, tag, opts)
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func runConvert(reg *format.Registry) error {
	opts := baseOptions()
	opts.Language = *convertLang
	opts.SourceLanguage = *convertSrc

	res, err := reg.ParseFile(*convertInput, *convertInFmt, opts)
	if err != nil {
		return err
	}
	return reg.WriteFile(*convertOutput, *convertOutFmt, res, opts)
}

func runMerge(reg *format.Registry) error {
	strategy, err := catalog.ParseStrategy(*mergeStrategy)
	if err != nil {
		return err
	}

	// Parse every input before giving up so all problems surface at once.
	var resources []catalog.Resource
	failed := 0
	for _, path := range *mergeInputs {
		res, err := parseInput(reg, path, "", *mergeLang)
		if err != nil {
			warn(fmt.Sprintf("%v: %v", path, err))
			failed++
			continue
		}
		resources = append(resources, res)
	}
	if failed > 0 {
		return fmt.Errorf("%v of %v inputs could not be parsed", failed, len(*mergeInputs))
	}

	merged, err := catalog.Merge(resources, strategy)
	if err != nil {
		return err
	}
	return reg.WriteFile(*mergeOutput, "", merged, baseOptions())
}

func runDiff(reg *format.Registry) error {
	source, err := parseInput(reg, *diffSource, "", *diffLang)
	if err != nil {
		return err
	}
	target, err := parseInput(reg, *diffTarget, "", *diffLang)
	if err != nil {
		return err
	}

	report := catalog.Diff(source, target)
	if *diffJSON {
		return printJSON(report)
	}

	if report.Empty() {
		fmt.Println("No differences.")
		return nil
	}
	langs := make([]string, 0, len(report))
	for lang := range report {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		d := report[lang]
		fmt.Printf("%v:\n", lang)
		for _, key := range d.Added {
			fmt.Printf("  + %v\n", key)
		}
		for _, key := range d.Removed {
			fmt.Printf("  - %v\n", key)
		}
		for _, c := range d.Changed {
			fmt.Printf("  ~ %v: %v -> %v\n", c.Key, c.Before, c.After)
		}
	}
	return nil
}

func runSync(reg *format.Registry) error {
	source, err := parseInput(reg, *syncSource, "", "")
	if err != nil {
		return err
	}
	target, err := parseInput(reg, *syncTarget, "", "")
	if err != nil {
		return err
	}

	policy := catalog.SyncPolicy{
		FailOnUnmatched: *syncFailUnmat,
		FailOnAmbiguous: *syncFailAmbig,
	}
	synced, report, err := catalog.Sync(source, target, *syncMatchLang, policy)

	langs := make([]string, 0, len(report))
	for lang := range report {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		l := report[lang]
		fmt.Printf("%v: %v matched, %v unmatched, %v ambiguous\n",
			lang, l.Matched, len(l.Unmatched), len(l.Ambiguous))
		for _, key := range l.Unmatched {
			fmt.Printf("  unmatched: %v\n", key)
		}
		for _, key := range l.Ambiguous {
			fmt.Printf("  ambiguous: %v\n", key)
		}
	}
	if err != nil {
		return err
	}

	out := *syncOutput
	if out == "" {
		out = *syncTarget
	}
	return reg.WriteFile(out, "", synced, baseOptions())
}

func runStats(reg *format.Registry) error {
	res, err := parseInput(reg, *statsInput, "", *statsLang)
	if err != nil {
		return err
	}

	stats := catalog.Stats(res)
	if *statsJSON {
		return printJSON(stats)
	}

	statuses := []catalog.Status{
		catalog.New, catalog.Translated, catalog.NeedsReview,
		catalog.Stale, catalog.DoNotTranslate,
	}
	for _, s := range stats {
		fmt.Printf("%v: %v entries, %.1f%% complete\n", s.Language, s.Total, s.Completion)
		for _, status := range statuses {
			if n := s.ByStatus[status]; n > 0 {
				fmt.Printf("  %v: %v\n", status, n)
			}
		}
	}
	return nil
}

func runValidate(reg *format.Registry) error {
	res, err := parseInput(reg, *validateInput, "", *validateLang)
	if err != nil {
		return err
	}

	switch *validateKind {
	case "plurals":
		rules := plural.DefaultRules()
		if *validateRules != "" {
			if rules, err = plural.LoadRulesFile(*validateRules); err != nil {
				return err
			}
		}
		report, err := plural.ValidateResource(res, rules, *strict)
		for _, f := range report.Findings {
			if *strict {
				fmt.Println(f)
			} else {
				warn(f.String())
			}
		}
		if report.OK() {
			fmt.Printf("Plural coverage ok (%v entries).\n", len(res.Entries))
		}
		return err

	case "placeholders":
		sourceLang := *validateSrc
		if sourceLang == "" {
			sourceLang = "en"
		}
		if *validateFix {
			fixed, n := fixPlaceholders(res, sourceLang)
			if n > 0 {
				if err := reg.WriteFile(*validateInput, "", fixed, baseOptions()); err != nil {
					return err
				}
				fmt.Printf("Fixed %v translations.\n", n)
			}
			res = fixed
		}
		report, err := placeholder.Validate(res, sourceLang, *strict)
		for _, m := range report.Mismatches {
			if *strict {
				fmt.Println(m)
			} else {
				warn(m.String())
			}
		}
		if report.OK() {
			fmt.Printf("Placeholders ok (%v entries).\n", len(res.Entries))
		}
		return err
	}
	return nil
}

// fixPlaceholders rewrites repairable placeholder variants against the
// source language and reports how many translations changed.
func fixPlaceholders(res catalog.Resource, sourceLang string) (catalog.Resource, int) {
	reference := make(map[string]string)
	for _, e := range res.Entries {
		if e.Language == sourceLang && !e.Value.IsPlural() {
			reference[e.Key] = e.Value.Single()
		}
	}

	out := res.Clone()
	fixed := 0
	for i, e := range out.Entries {
		if e.Language == sourceLang || e.Status == catalog.DoNotTranslate {
			continue
		}
		ref, ok := reference[e.Key]
		if !ok {
			continue
		}

		if !e.Value.IsPlural() {
			if v, ok := placeholder.Fix(e.Value.Single(), ref); ok && v != e.Value.Single() {
				out.Entries[i].Value = catalog.Singular(v)
				fixed++
			}
			continue
		}

		forms := e.Value.Forms()
		changed := false
		for c, form := range forms {
			if v, ok := placeholder.Fix(form, ref); ok && v != form {
				forms[c] = v
				changed = true
			}
		}
		if changed {
			out.Entries[i].Value = catalog.Plural(forms)
			fixed++
		}
	}
	return out, fixed
}

func runEditSet(reg *format.Registry) error {
	res, err := parseInput(reg, *editFile, "", "")
	if err != nil {
		return err
	}

	var action string
	if *editValue == "" {
		// An empty value removes the entry.
		kept := res.Clone()
		kept.Entries = kept.Entries[:0]
		found := false
		for _, e := range res.Entries {
			if e.Key == *editKey && e.Language == *editLang {
				found = true
				continue
			}
			kept.Entries = append(kept.Entries, e.Clone())
		}
		if !found {
			return fmt.Errorf("no entry '%v' for language '%v'", *editKey, *editLang)
		}
		res = kept
		action = "Removed"
	} else {
		status := catalog.Translated
		if *editStatus != "" {
			if status, err = catalog.ParseStatus(*editStatus); err != nil {
				return err
			}
		}

		if e, ok := res.Find(*editKey, *editLang); ok {
			e.Value = catalog.Singular(*editValue)
			if *editComment != "" {
				e.Comment = *editComment
			}
			if *editStatus != "" {
				e.Status = status
			}
			updated := res.Clone()
			for i := range updated.Entries {
				if updated.Entries[i].Key == *editKey && updated.Entries[i].Language == *editLang {
					updated.Entries[i] = e
				}
			}
			res = updated
			action = "Updated"
		} else {
			entry := catalog.Entry{
				Key:      *editKey,
				Language: *editLang,
				Value:    catalog.Singular(*editValue),
				Status:   status,
				Comment:  *editComment,
			}
			if err := res.Append(entry); err != nil {
				return err
			}
			action = "Added"
		}
	}

	if *editDryRun {
		fmt.Printf("%v '%v' (%v). No file written.\n", action, *editKey, *editLang)
		return nil
	}

	out := *editOutput
	if out == "" {
		out = *editFile
	}
	if err := reg.WriteFile(out, "", res, baseOptions()); err != nil {
		return err
	}
	fmt.Printf("%v '%v' (%v).\n", action, *editKey, *editLang)
	return nil
}

func runView(reg *format.Registry) error {
	res, err := parseInput(reg, *viewInput, "", "")
	if err != nil {
		return err
	}

	for _, e := range res.Entries {
		if *viewLang != "" && e.Language != *viewLang {
			continue
		}
		fmt.Printf("%v (%v) [%v]: %v\n", e.Key, e.Language, e.Status, e.Value)
		if e.Comment != "" {
			fmt.Printf("  # %v\n", e.Comment)
		}
	}
	return nil
}

func runInitDb(c config.Config) error {
	db, err := sqlx.Connect(c.DB.Driver, c.DB.ConnectionString())
	if err != nil {
		return err
	}
	defer db.Close()

	ds, err := datastore.New(db, c.DB.Driver)
	if err != nil {
		return err
	}
	version, err := ds.MigrateUp()
	if err != nil {
		return err
	}
	fmt.Printf("Database schema is at version %v\n", version)
	return nil
}
