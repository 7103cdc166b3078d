package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/e7canasta/gst-plugin-zenoh/transport"
)

// LoadTransportConfig decodes the optional transport-config file spec
// §6's `config` property names into a transport.Config. An empty path
// is not an error: it yields a Config with no Raw overrides, letting
// the concrete transport.Opener fall back to its own defaults.
//
// The file format itself is out of the core's scope (spec §1 names
// "configuration-file parsing for the transport" as an external
// collaborator concern); this function only resolves the file into the
// flat key/value shape transport.Config.Raw carries, the way
// stream-capture resolves an RTSPConfig from caller-provided fields
// before handing it to the pipeline.
func LoadTransportConfig(path string) (transport.Config, error) {
	if path == "" {
		return transport.Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return transport.Config{}, fmt.Errorf("config: read transport config %s: %w", path, err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return transport.Config{}, fmt.Errorf("config: parse transport config %s: %w", path, err)
	}

	return transport.Config{Path: path, Raw: raw}, nil
}
