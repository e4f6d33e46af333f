package puzzle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a puzzle file (JSON or YAML, chosen by extension) and
// validates it. A malformed puzzle is fatal to the caller: there is no
// partial-load mode.
func Load(path string) (*Puzzle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle file: %w", err)
	}

	p := &Puzzle{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("failed to parse puzzle YAML %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("failed to parse puzzle JSON %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported puzzle file extension: %s", path)
	}

	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid puzzle %s: %w", path, err)
	}
	return p, nil
}

// PuzzleInfo describes one loadable puzzle file for listing APIs.
type PuzzleInfo struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// List scans a directory for puzzle files. Unparseable files are skipped;
// listing is best-effort, loading is strict.
func List(dir string) ([]PuzzleInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle directory %s: %w", dir, err)
	}

	var infos []PuzzleInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		p, err := Load(path)
		if err != nil {
			continue
		}
		infos = append(infos, PuzzleInfo{Name: p.Name, Path: path})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}
