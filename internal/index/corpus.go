package index

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxDocumentBytes caps how much of a single file is indexed.
const maxDocumentBytes = 1 << 20

// textExtensions lists file types read into a corpus. Everything else
// is skipped silently.
var textExtensions = map[string]bool{
	".md":   true,
	".txt":  true,
	".rst":  true,
	".go":   true,
	".py":   true,
	".js":   true,
	".ts":   true,
	".rs":   true,
	".java": true,
	".rb":   true,
	".sh":   true,
	".yaml": true,
	".yml":  true,
	".json": true,
	".toml": true,
	".sql":  true,
}

// LoadDir reads every text file under dir into a corpus. Documents are
// labeled with their slash-separated relative paths and arrive in
// lexical walk order, so the corpus is deterministic for a given tree.
// An empty directory yields an empty corpus, not an error.
func LoadDir(dir string) (Corpus, error) {
	var corpus Corpus

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if !textExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Size() > maxDocumentBytes {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("index: reading %s: %w", path, err)
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		corpus.Documents = append(corpus.Documents, Document{
			Label: filepath.ToSlash(rel),
			Text:  string(data),
		})
		return nil
	})
	if err != nil {
		return Corpus{}, fmt.Errorf("index: walking %s: %w", dir, err)
	}
	return corpus, nil
}
