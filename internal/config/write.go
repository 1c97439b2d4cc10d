package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/sensorwatch/internal/errors"
)

const fileHeader = `# sensorwatch configuration
# Every key can be overridden with SENSORWATCH_<KEY>, dots become underscores
# (e.g. SENSORWATCH_STREAM_URL, SENSORWATCH_VIEW_GRID_PAGE_SIZE).
`

// Write saves cfg to path as YAML. An existing file is only replaced when
// force is set.
func Write(path string, cfg *Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrConfig,
				"Config file already exists: "+path,
				"Use --force to overwrite it")
		}
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot create config directory "+dir, "Check directory permissions")
		}
	}
	if err := os.WriteFile(path, append([]byte(fileHeader), data...), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file "+path, "Check file permissions")
	}
	return nil
}

// Marshal renders cfg as YAML with durations spelled out ("5s").
func Marshal(cfg *Config) ([]byte, error) {
	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(toFile(cfg)); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	return []byte(buf.String()), nil
}

// SetValue sets a dotted key (e.g. "view.grid_page_size") in an existing
// config file. It edits the YAML tree in place so comments and ordering
// survive. Missing intermediate mappings are created.
func SetValue(configPath, key, value string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file "+configPath,
			"Run 'sensorwatch config init' first")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to parse config file "+configPath,
			"Check the YAML syntax")
	}
	if root.Kind == 0 {
		root = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return errors.New(errors.ErrConfig,
			"Expected a mapping at the top of "+configPath,
			"Check the YAML structure")
	}

	parts := strings.Split(key, ".")
	node := root.Content[0]
	for i, part := range parts {
		if part == "" {
			return errors.New(errors.ErrConfig, fmt.Sprintf("Invalid key %q", key), "Use dotted keys like view.grid_page_size")
		}
		last := i == len(parts)-1
		child := findMapValue(node, part)

		if last {
			if child == nil {
				node.Content = append(node.Content, scalarNode(part), scalarNode(value))
				break
			}
			if child.Kind != yaml.ScalarNode {
				return errors.New(errors.ErrConfig,
					fmt.Sprintf("%q is a section, not a value", key),
					"Set one of its nested keys instead")
			}
			child.Value = value
			child.Tag = ""
			child.Style = 0
			break
		}

		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalarNode(part), child)
		}
		if child.Kind != yaml.MappingNode {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("%q is a value, not a section", strings.Join(parts[:i+1], ".")),
				"Check the key")
		}
		node = child
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	encoder.Close()

	if err := os.WriteFile(configPath, []byte(buf.String()), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file "+configPath, "Check file permissions")
	}
	return nil
}

// fileConfig mirrors Config with durations as strings, so written files read
// "5s" instead of nanosecond counts.
type fileConfig struct {
	Version   int          `yaml:"version"`
	APIURL    string       `yaml:"api_url"`
	StreamURL string       `yaml:"stream_url"`
	ClientID  string       `yaml:"client_id,omitempty"`
	Topics    TopicsConfig `yaml:"topics"`
	Stream    struct {
		ReconnectDelay string `yaml:"reconnect_delay"`
		KeepAlive      string `yaml:"keep_alive"`
		ConnectTimeout string `yaml:"connect_timeout"`
	} `yaml:"stream"`
	View   ViewConfig   `yaml:"view"`
	Alerts AlertsConfig `yaml:"alerts"`
	API    struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"api"`
	Log LogConfig `yaml:"log,omitempty"`
}

func toFile(cfg *Config) fileConfig {
	f := fileConfig{
		Version:   cfg.Version,
		APIURL:    cfg.APIURL,
		StreamURL: cfg.StreamURL,
		ClientID:  cfg.ClientID,
		Topics:    cfg.Topics,
		View:      cfg.View,
		Alerts:    cfg.Alerts,
		Log:       cfg.Log,
	}
	f.Stream.ReconnectDelay = cfg.Stream.ReconnectDelay.String()
	f.Stream.KeepAlive = cfg.Stream.KeepAlive.String()
	f.Stream.ConnectTimeout = cfg.Stream.ConnectTimeout.String()
	f.API.Timeout = cfg.API.Timeout.String()
	return f
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}
