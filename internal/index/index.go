// Package index implements the Keyword Indexer: it counts case-insensitive
// whole-word keyword occurrences independently in the Intent and Reality
// corpora and maps them onto taxonomy categories through the dictionary.
//
// Iteration is always over the dictionary's sorted keyword set, so output
// order is deterministic for identical inputs.
package index

import (
	"regexp"

	"github.com/driftlab/trustdebt/internal/dictionary"
	"github.com/driftlab/trustdebt/internal/taxonomy"
)

// Document is one unit of corpus text (a file, a commit message, a
// section). The label is carried through for evidence snapshots only.
type Document struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Corpus is an ordered list of documents from one provenance side.
type Corpus struct {
	Documents []Document `json:"documents"`
}

// Size returns the number of documents in the corpus.
func (c Corpus) Size() int { return len(c.Documents) }

// KeywordMapping records how often one keyword occurred per corpus, for
// one of the categories it maps to. TotalCount is always the exact sum
// of the two sides. Never mutated after creation.
type KeywordMapping struct {
	Keyword      string `json:"keyword"`
	CategoryCode string `json:"category_code"`
	IntentCount  int    `json:"intent_count"`
	RealityCount int    `json:"reality_count"`
	TotalCount   int    `json:"total_count"`
}

// CategoryEvidence aggregates all keyword evidence for one category.
// One row exists for every taxonomy category, including zero-evidence
// categories.
type CategoryEvidence struct {
	CategoryCode    string  `json:"category_code"`
	IntentStrength  int     `json:"intent_strength"`
	RealityStrength int     `json:"reality_strength"`
	TotalStrength   int     `json:"total_strength"`
	DocumentCount   int     `json:"document_count"` // documents with ≥1 hit, both corpora
	AvgStrength     float64 `json:"avg_strength"`
	PercentOfCorpus float64 `json:"percent_of_corpus"`
}

// Result is the Indexer stage artifact.
type Result struct {
	DictionaryVersion string             `json:"dictionary_version"`
	IntentDocuments   int                `json:"intent_documents"`
	RealityDocuments  int                `json:"reality_documents"`
	Mappings          []KeywordMapping   `json:"mappings"`
	Evidence          []CategoryEvidence `json:"evidence"`
}

// Recorder persists keyword mappings to the indexed store so downstream
// consumers get keyword- and category-scoped lookups without re-scanning
// text. A nil Recorder disables persistence.
type Recorder interface {
	RecordMappings(runID string, mappings []KeywordMapping) error
}

// Indexer scans corpora against a fixed dictionary and taxonomy.
type Indexer struct {
	dict     *dictionary.Dictionary
	cats     []taxonomy.Category
	patterns map[string]*regexp.Regexp
}

// New compiles one whole-word pattern per dictionary keyword.
func New(dict *dictionary.Dictionary, cats []taxonomy.Category) *Indexer {
	patterns := make(map[string]*regexp.Regexp, dict.Len())
	for _, kw := range dict.Keywords() {
		patterns[kw] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return &Indexer{dict: dict, cats: cats, patterns: patterns}
}

// Index counts keyword occurrences in both corpora and aggregates them
// into per-category evidence. Empty corpora produce all-zero counts
// rather than an error.
func (ix *Indexer) Index(intent, reality Corpus) Result {
	res := Result{
		DictionaryVersion: ix.dict.Version(),
		IntentDocuments:   intent.Size(),
		RealityDocuments:  reality.Size(),
	}

	type sideCount struct {
		intent  int
		reality int
	}
	perKeyword := make(map[string]sideCount, ix.dict.Len())
	// categoryDocs[code] holds the set of documents (side, index) with a hit.
	categoryDocs := make(map[string]map[[2]int]bool)

	markDoc := func(code string, side, doc int) {
		docs, ok := categoryDocs[code]
		if !ok {
			docs = make(map[[2]int]bool)
			categoryDocs[code] = docs
		}
		docs[[2]int{side, doc}] = true
	}

	for _, kw := range ix.dict.Keywords() {
		pat := ix.patterns[kw]
		var counts sideCount
		for di, doc := range intent.Documents {
			n := len(pat.FindAllStringIndex(doc.Text, -1))
			if n == 0 {
				continue
			}
			counts.intent += n
			for _, code := range ix.dict.Categories(kw) {
				markDoc(code, 0, di)
			}
		}
		for di, doc := range reality.Documents {
			n := len(pat.FindAllStringIndex(doc.Text, -1))
			if n == 0 {
				continue
			}
			counts.reality += n
			for _, code := range ix.dict.Categories(kw) {
				markDoc(code, 1, di)
			}
		}
		perKeyword[kw] = counts
	}

	// One mapping row per (keyword, category) pair reachable through the
	// dictionary; a multi-category keyword repeats its counts per row.
	strength := make(map[string]*CategoryEvidence, len(ix.cats))
	for _, c := range ix.cats {
		strength[c.Code] = &CategoryEvidence{CategoryCode: c.Code}
	}

	for _, kw := range ix.dict.Keywords() {
		counts := perKeyword[kw]
		for _, code := range ix.dict.Categories(kw) {
			res.Mappings = append(res.Mappings, KeywordMapping{
				Keyword:      kw,
				CategoryCode: code,
				IntentCount:  counts.intent,
				RealityCount: counts.reality,
				TotalCount:   counts.intent + counts.reality,
			})
			if ev, ok := strength[code]; ok {
				ev.IntentStrength += counts.intent
				ev.RealityStrength += counts.reality
				ev.TotalStrength += counts.intent + counts.reality
			}
		}
	}

	var corpusTotal int
	for _, c := range ix.cats {
		ev := strength[c.Code]
		ev.DocumentCount = len(categoryDocs[c.Code])
		if ev.DocumentCount > 0 {
			ev.AvgStrength = float64(ev.TotalStrength) / float64(ev.DocumentCount)
		}
		corpusTotal += ev.TotalStrength
	}
	for _, c := range ix.cats {
		ev := strength[c.Code]
		if corpusTotal > 0 {
			ev.PercentOfCorpus = float64(ev.TotalStrength) / float64(corpusTotal) * 100
		}
		res.Evidence = append(res.Evidence, *ev)
	}

	return res
}

// IntentKeywordCounts extracts, from indexer output, the intent-side
// strength per category for keywords actually observed in the Intent
// corpus. The Alignment Analyzer derives intent scores from this subset.
func IntentKeywordCounts(mappings []KeywordMapping) map[string]int {
	counts := make(map[string]int)
	for _, m := range mappings {
		if m.IntentCount > 0 {
			counts[m.CategoryCode] += m.IntentCount
		}
	}
	return counts
}
