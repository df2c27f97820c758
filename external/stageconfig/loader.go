// Package stageconfig loads the stage definitions YAML file.
package stageconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dryrunhq/dryrun/internal/stage"
)

func Load(path string) (*stage.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage config %s: %w", path, err)
	}
	var cfg stage.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse stage config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("stage config %s: %w", path, err)
	}
	return &cfg, nil
}
