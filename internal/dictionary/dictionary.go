// Package dictionary provides the typed keyword-to-category mapping the
// Keyword Indexer scans with.
//
// The dictionary is built once at startup — from a versioned YAML file or
// from the compiled-in default — and is immutable afterwards. Entries
// referencing category codes that do not exist in the taxonomy are
// rejected at load time, not at use time.
package dictionary

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/driftlab/trustdebt/internal/taxonomy"
)

// File is the on-disk YAML shape of a keyword dictionary.
type File struct {
	Version  string              `yaml:"version"`
	Keywords map[string][]string `yaml:"keywords"` // keyword → category codes
}

// Dictionary maps normalized keywords to the sorted category codes they
// provide evidence for. Immutable after construction.
type Dictionary struct {
	version string
	entries map[string][]string
	sorted  []string // keys in sorted order for deterministic iteration
}

// New builds a Dictionary from raw keyword→codes entries, validating
// every referenced code against the taxonomy. Keywords are lowercased
// and trimmed; duplicate codes per keyword are collapsed.
func New(version string, entries map[string][]string, cats []taxonomy.Category) (*Dictionary, error) {
	known := make(map[string]bool, len(cats))
	for _, c := range cats {
		known[c.Code] = true
	}

	d := &Dictionary{
		version: version,
		entries: make(map[string][]string, len(entries)),
	}

	for raw, codeList := range entries {
		kw := Normalize(raw)
		if kw == "" {
			return nil, fmt.Errorf("dictionary: empty keyword (raw %q)", raw)
		}
		if len(codeList) == 0 {
			return nil, fmt.Errorf("dictionary: keyword %q maps to no categories", kw)
		}

		seen := make(map[string]bool, len(codeList))
		var codeSet []string
		for _, code := range codeList {
			if !known[code] {
				return nil, fmt.Errorf("dictionary: keyword %q references unknown category %q", kw, code)
			}
			if seen[code] {
				continue
			}
			seen[code] = true
			codeSet = append(codeSet, code)
		}
		sort.Slice(codeSet, func(i, j int) bool {
			return taxonomy.Less(codeSet[i], codeSet[j])
		})

		if existing, ok := d.entries[kw]; ok {
			// Two raw spellings normalized to the same keyword: merge.
			d.entries[kw] = mergeCodes(existing, codeSet)
			continue
		}
		d.entries[kw] = codeSet
	}

	d.sorted = make([]string, 0, len(d.entries))
	for kw := range d.entries {
		d.sorted = append(d.sorted, kw)
	}
	sort.Strings(d.sorted)

	return d, nil
}

// Load reads a dictionary YAML file and validates it against the taxonomy.
func Load(path string, cats []taxonomy.Category) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dictionary: reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("dictionary: parsing %s: %w", path, err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("dictionary: %s is missing a version", path)
	}
	if len(f.Keywords) == 0 {
		return nil, fmt.Errorf("dictionary: %s defines no keywords", path)
	}

	return New(f.Version, f.Keywords, cats)
}

// Version returns the dictionary's declared version string.
func (d *Dictionary) Version() string {
	return d.version
}

// Len returns the number of distinct keywords.
func (d *Dictionary) Len() int {
	return len(d.entries)
}

// Keywords returns the keyword set in sorted order. The returned slice
// is shared — callers must not modify it.
func (d *Dictionary) Keywords() []string {
	return d.sorted
}

// Categories returns the category codes a keyword maps to, in ShortLex
// order, or nil when the keyword is not in the dictionary.
func (d *Dictionary) Categories(keyword string) []string {
	return d.entries[Normalize(keyword)]
}

// Normalize lowercases and trims a raw keyword token.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// mergeCodes unions two sorted code lists, preserving ShortLex order.
func mergeCodes(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, code := range append(append([]string{}, a...), b...) {
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	sort.Slice(out, func(i, j int) bool {
		return taxonomy.Less(out[i], out[j])
	})
	return out
}
