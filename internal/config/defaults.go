package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:  DefaultDataDir(),
		Timezone: "Local",
		Server: ServerConfig{
			Addr: ":3000",
			Mode: "release",
		},
		Store: StoreConfig{
			Driver: DriverJSON,
		},
		Metrics: MetricsConfig{
			Watch:      true,
			Debounce:   250 * time.Millisecond,
			WindowDays: 7,
		},
	}
}

// DefaultDataDir is ~/.floortrack, or ./.floortrack without a home directory
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".floortrack"
	}
	return filepath.Join(home, ".floortrack")
}

// annotation is the comment attached to one key of the generated file
type annotation struct {
	head string // above the key
	line string // after the value
	foot string // below the pair, used for commented-out examples
}

// defaultComments annotates the generated file; nested keys use dotted paths
var defaultComments = map[string]annotation{
	"data_dir": {head: "Where records, the completion log and derived files live"},
	"timezone": {
		head: `Zone used for zone-less timestamps and daily buckets ("Local" = host zone)`,
		foot: "Optional YAML category table; the built-in table is used when unset\n" +
			"categories_file: ~/.floortrack/categories.yaml",
	},
	"node_id": {
		head: "Snowflake node id (0-1023), unique per machine writing to the same data",
		foot: "Worker used by CLI commands when --user is not given\nuser: alice",
	},
	"server.mode": {line: "debug, release or test"},
	"store":       {head: "Record store backend"},
	"store.driver": {
		line: "json (one file per user), sqlite or mysql",
		foot: "dsn: ~/.floortrack/floortrack.db\n" +
			`dsn: "user:pass@tcp(127.0.0.1:3306)/floortrack?charset=utf8mb4&parseTime=True&loc=Local"`,
	},
	"metrics": {head: "Read-only log from an older install, merged into metrics\n" +
		"ledger:\n  legacy_path: /srv/tracker/tasks.csv"},
	"metrics.watch": {line: "also recompute on external edits of the ledger"},
}

// WriteDefault writes the default configuration as commented YAML
func WriteDefault(path string) error {
	var root yaml.Node
	if err := root.Encode(DefaultConfig()); err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	annotate(&root, "")
	doc := &yaml.Node{
		Kind:        yaml.DocumentNode,
		HeadComment: "floortrack configuration",
		Content:     []*yaml.Node{&root},
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// annotate walks a mapping node and attaches defaultComments to its keys
func annotate(node *yaml.Node, prefix string) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		path := key.Value
		if prefix != "" {
			path = prefix + "." + key.Value
		}
		if a, ok := defaultComments[path]; ok {
			key.HeadComment = a.head
			key.FootComment = a.foot
			value.LineComment = a.line
		}
		annotate(value, path)
	}
}
