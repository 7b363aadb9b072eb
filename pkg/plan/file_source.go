package plan

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileSource implements Source backed by a YAML catalog file.
//
// Expected document shape:
//
//	free:
//	  monthly_analyses: 5
//	  max_companies: 3
//	  support_level: email
//	professional:
//	  monthly_analyses: 100
//	  max_companies: 25
//	  ai_analysis: true
//	  export_data: true
//	  support_level: priority
//	enterprise:
//	  monthly_analyses: -1
//	  max_companies: -1
//	  ai_analysis: true
//	  export_data: true
//	  api_access: true
//	  support_level: dedicated
type fileSource struct {
	path string
}

// NewFileSource returns a Source that reads the plan catalog from a YAML file.
// The file is read on every Load so a registry rebuild picks up edits.
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

// Load reads and decodes the catalog file.
func (s *fileSource) Load(ctx context.Context) (map[Tier]Limits, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	var doc map[Tier]Limits
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, fmt.Errorf("decode %s: %w", s.path, err))
	}

	for tier, l := range doc {
		l.Tier = tier
		doc[tier] = l
	}

	return doc, nil
}
