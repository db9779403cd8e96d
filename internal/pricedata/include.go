package pricedata

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// universeFile is the YAML include-set format
type universeFile struct {
	Universe []string `yaml:"universe"`
}

// ReadInclude reads an include-set. Files ending in .yaml/.yml hold a
// `universe:` list; anything else is one ticker per line ('#' starts a comment).
// Tickers are upper-cased, blanks skipped and duplicates dropped.
func ReadInclude(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read include file: %w", err)
	}

	var raw []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var u universeFile
		if err := yaml.Unmarshal(data, &u); err != nil {
			return nil, fmt.Errorf("parse include file %s: %w", path, err)
		}
		raw = u.Universe
	default:
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := scanner.Text()
			if i := strings.IndexByte(line, '#'); i >= 0 {
				line = line[:i]
			}
			raw = append(raw, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("scan include file %s: %w", path, err)
		}
	}

	return MergeTickers(raw), nil
}

// MergeTickers normalizes and de-duplicates ticker lists, keeping first-seen order
func MergeTickers(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, t := range list {
			t = normalizeTicker(t)
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
