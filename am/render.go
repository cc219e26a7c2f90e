package am

import (
	"encoding/json"

	"github.com/pelletier/go-toml/v2"
	"github.com/teranos/azsku/errors"
	"gopkg.in/yaml.v3"
)

// Render serializes cfg in the given format: toml, json or yaml.
func Render(cfg *Config, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(cfg, "", "  ")
	case "yaml":
		return yaml.Marshal(cfg)
	case "toml", "":
		return toml.Marshal(cfg)
	default:
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "unsupported format: %s (supported: toml, json, yaml)", format)
	}
}
