package source

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const defaultMaxHeadingLevel = 2

// Loader reads and validates the source configuration file.
type Loader struct {
	configFile string
}

func NewLoader(configFile string) *Loader {
	return &Loader{configFile: configFile}
}

func (l *Loader) Run() (*Config, error) {
	data, err := os.ReadFile(l.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	config, err := l.parseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", l.configFile, err)
	}

	setDefaults(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.configFile, err)
	}

	for _, id := range config.SourceIDs() {
		src := config.Sources[id]
		slog.Debug("Source configuration loaded", "source", id, "files", len(src.Files), "skip", src.Skip)
	}

	return config, nil
}

func (l *Loader) parseConfig(data []byte) (*Config, error) {
	var config Config

	switch strings.ToLower(filepath.Ext(l.configFile)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	return &config, nil
}

func setDefaults(config *Config) {
	for id, src := range config.Sources {
		if src == nil {
			src = &Source{}
			config.Sources[id] = src
		}
		src.ID = id
		if src.Name == "" {
			src.Name = id
		}
		for filePath, file := range src.Files {
			if file == nil {
				file = &File{}
				src.Files[filePath] = file
			}
			file.Path = filePath
			if file.Name == "" && file.Index {
				file.Name = src.Name
			}
			if file.Name == "" {
				file.Name = strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
			}
			if file.Options.MaxHeadingLevel == 0 {
				file.Options.MaxHeadingLevel = defaultMaxHeadingLevel
			}
		}
	}
}
