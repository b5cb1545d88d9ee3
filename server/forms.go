package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/formskema"
)

// LoadForms compiles every *.json, *.yaml and *.yml definition file in dir.
// The form name is the file name without extension.
func LoadForms(dir string, opts ...formskema.BuildOption) (map[string]Form, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	forms := make(map[string]Form)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if _, dup := forms[name]; dup {
			return nil, fmt.Errorf("form %q defined more than once in %s", name, dir)
		}
		path := filepath.Join(dir, e.Name())
		defs, err := formskema.LoadDefinitions(path)
		if err != nil {
			return nil, err
		}
		s, err := formskema.New(defs, opts...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		forms[name] = Form{Schema: s, Definitions: defs}
	}
	return forms, nil
}
