package interfaces

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type ConfigurationSystem interface {
	LoadConfiguration() bool
	SaveConfiguration() bool
}

type Configurable interface {
	// ProvideConfigurationSystem provides this configurable instance with the system that can load/save its configuration
	ProvideConfigurationSystem(configurationSystem ConfigurationSystem)

	// LoadConfiguration calls json.Unmarshal on the json.RawMessage into its configuration model
	LoadConfiguration(config json.RawMessage)

	// ConfigurationModel returns a json.Marshal interface{} that will be stored by the ConfigurationSystem
	ConfigurationModel() interface{}
}

// ConfigDir returns the per-user directory the tracker keeps its configuration in.
// ARCADIA_CONFIG_DIR overrides it.
func ConfigDir() (string, error) {
	if dir := os.Getenv("ARCADIA_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "arcadia"), nil
}
