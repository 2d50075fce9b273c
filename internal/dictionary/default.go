package dictionary

import "github.com/driftlab/trustdebt/internal/taxonomy"

// defaultEntries is the compiled-in keyword dictionary matched to the
// default 45-category taxonomy. Projects with their own vocabulary
// should ship a YAML dictionary instead.
var defaultEntries = map[string][]string{
	// A Measurement
	"score":       {"A", "A.1"},
	"scoring":     {"A.1"},
	"grade":       {"A", "A.1"},
	"metric":      {"A"},
	"measure":     {"A"},
	"calibration": {"A.2"},
	"threshold":   {"A.3"},
	"normalize":   {"A.4"},
	"sample":      {"A.5"},
	"aggregate":   {"A.6"},
	"baseline":    {"A.7"},
	"determinism": {"A.8"},
	"drift":       {"A", "C"},

	// B Implementation
	"implement":   {"B"},
	"algorithm":   {"B.1"},
	"function":    {"B.1"},
	"struct":      {"B.2"},
	"schema":      {"B.2", "D.5"},
	"database":    {"B.3", "D.5"},
	"sqlite":      {"B.3"},
	"api":         {"B.4"},
	"interface":   {"B.4"},
	"error":       {"B.5"},
	"panic":       {"B.5"},
	"goroutine":   {"B.6"},
	"concurrency": {"B.6"},
	"latency":     {"B.7"},
	"performance": {"B.7"},
	"dependency":  {"B.8"},

	// C Documentation
	"architecture": {"C.1"},
	"design":       {"C.1", "C.6"},
	"reference":    {"C.2"},
	"guide":        {"C.3"},
	"tutorial":     {"C.3"},
	"example":      {"C.4"},
	"changelog":    {"C.5"},
	"decision":     {"C.6"},
	"glossary":     {"C.7"},
	"onboarding":   {"C.8"},
	"readme":       {"C"},
	"document":     {"C"},
	"spec":         {"C"},

	// D Integration
	"build":         {"D.1"},
	"compile":       {"D.1"},
	"package":       {"D.2"},
	"release":       {"D.2", "E.1"},
	"config":        {"D.3"},
	"configuration": {"D.3"},
	"transport":     {"D.4"},
	"protocol":      {"D.4"},
	"storage":       {"D.5"},
	"logging":       {"D.6"},
	"tracing":       {"D.6"},
	"compatibility": {"D.7"},
	"security":      {"D.8"},
	"auth":          {"D.8", "E.7"},

	// E Operations
	"deploy":      {"E.1"},
	"monitor":     {"E.2"},
	"alert":       {"E.2", "E.3"},
	"incident":    {"E.3"},
	"maintenance": {"E.4"},
	"capacity":    {"E.5"},
	"backup":      {"E.6"},
	"restore":     {"E.6"},
	"permission":  {"E.7"},
	"lifecycle":   {"E.8"},
	"shutdown":    {"E.8"},
}

// Default returns the compiled-in dictionary validated against the given
// taxonomy (normally taxonomy.DefaultCategories()).
func Default(cats []taxonomy.Category) (*Dictionary, error) {
	return New("builtin-1", defaultEntries, cats)
}
