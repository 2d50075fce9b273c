package taxonomy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk taxonomy format. Categories may arrive in any
// order; callers run Normalize before using them.
type File struct {
	Version    string `yaml:"version"`
	Categories []struct {
		Code       string  `yaml:"code"`
		Name       string  `yaml:"name"`
		ParentCode string  `yaml:"parent_code"`
		Units      float64 `yaml:"units"`
	} `yaml:"categories"`
}

// Load reads a raw category set from a YAML file. Positions and
// percentages are not assigned here; Normalize owns the canonical order.
func Load(path string) ([]Category, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("taxonomy: parsing %s: %w", path, err)
	}
	if len(f.Categories) == 0 {
		return nil, fmt.Errorf("taxonomy: %s defines no categories", path)
	}

	cats := make([]Category, 0, len(f.Categories))
	for _, c := range f.Categories {
		if c.Code == "" {
			return nil, fmt.Errorf("taxonomy: %s contains a category with no code", path)
		}
		cats = append(cats, Category{
			Code:       c.Code,
			Name:       c.Name,
			ParentCode: c.ParentCode,
			Units:      c.Units,
		})
	}
	return cats, nil
}
