package pageshot

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConfigEnv names the environment variable holding a default config path.
const ConfigEnv = "PAGESHOT_CONFIG"

// LoadOptions reads a YAML file and applies it on top of NewOptions.
// Keys missing from the file keep their defaults.
func LoadOptions(path string) (Options, error) {
	options := NewOptions()

	data, err := os.ReadFile(path)
	if err != nil {
		return options, fmt.Errorf("error reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &options); err != nil {
		return options, fmt.Errorf("error parsing config %s: %w", path, err)
	}

	if err := options.Validate(); err != nil {
		return options, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return options, nil
}
