package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Node configuration
	NodeID    string   `yaml:"id"`
	RaftAddr  string   `yaml:"raft_addr"`
	RaftDir   string   `yaml:"raft_dir"`
	HTTPAddr  string   `yaml:"http_addr"`
	Bootstrap bool     `yaml:"bootstrap"`
	JoinAddr  string   `yaml:"join"`

	// PeerSpecs are the raw "id=addr" entries of -peers or the file's peers list
	PeerSpecs []string `yaml:"peers"`
	// Peers are the parsed PeerSpecs. Each ID must match the peer's own -id.
	Peers []Peer `yaml:"-"`

	// LogLevel is one of trace, debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// PlanDB is the bbolt file holding archived plans. Defaults to RaftDir/plans.db.
	PlanDB string `yaml:"plan_db"`
}

// Peer is a voting member listed in the bootstrap configuration
type Peer struct {
	ID   string
	Addr string
}

// Load parses command line arguments. Values from the YAML file named by -config
// fill in every flag that was not given explicitly.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("printbatch", flag.ContinueOnError)

	var (
		cfg        Config
		peersStr   string
		configPath string
	)
	fs.StringVar(&configPath, "config", "", "YAML configuration file")
	fs.StringVar(&cfg.NodeID, "id", "", "Node ID (required)")
	fs.StringVar(&cfg.RaftAddr, "raft-addr", "", "Raft transport address (required)")
	fs.StringVar(&cfg.RaftDir, "raft-dir", "", "Raft storage directory (required)")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", "", "HTTP API address (required)")
	fs.BoolVar(&cfg.Bootstrap, "bootstrap", false, "Bootstrap the cluster")
	fs.StringVar(&cfg.JoinAddr, "join", "", "HTTP address of the leader to join")
	fs.StringVar(&peersStr, "peers", "", "Comma-separated list of id=raft-addr peers")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")
	fs.StringVar(&cfg.PlanDB, "plan-db", "", "Plan archive file (default <raft-dir>/plans.db)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if peersStr != "" {
		cfg.PeerSpecs = strings.Split(peersStr, ",")
	}

	if configPath != "" {
		file, err := readFile(configPath)
		if err != nil {
			return nil, err
		}
		set := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		cfg.merge(file, set)
	}

	peers, err := parsePeers(cfg.PeerSpecs)
	if err != nil {
		return nil, err
	}
	cfg.Peers = peers

	if cfg.PlanDB == "" && cfg.RaftDir != "" {
		cfg.PlanDB = filepath.Join(cfg.RaftDir, "plans.db")
	}

	return &cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &file, nil
}

// parsePeers splits "id=addr" entries. Raft matches votes by server ID, so an address alone is not enough.
func parsePeers(specs []string) ([]Peer, error) {
	peers := make([]Peer, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		id, addr, ok := strings.Cut(spec, "=")
		id, addr = strings.TrimSpace(id), strings.TrimSpace(addr)
		if !ok || id == "" || addr == "" {
			return nil, fmt.Errorf("config: peer %q must be id=addr", spec)
		}
		if seen[id] {
			return nil, fmt.Errorf("config: peer ID %q listed twice", id)
		}
		seen[id] = true
		peers = append(peers, Peer{ID: id, Addr: addr})
	}
	return peers, nil
}

// merge copies file values for flags that were not set on the command line
func (c *Config) merge(file *Config, set map[string]bool) {
	if !set["id"] && file.NodeID != "" {
		c.NodeID = file.NodeID
	}
	if !set["raft-addr"] && file.RaftAddr != "" {
		c.RaftAddr = file.RaftAddr
	}
	if !set["raft-dir"] && file.RaftDir != "" {
		c.RaftDir = file.RaftDir
	}
	if !set["http-addr"] && file.HTTPAddr != "" {
		c.HTTPAddr = file.HTTPAddr
	}
	if !set["bootstrap"] {
		c.Bootstrap = file.Bootstrap
	}
	if !set["join"] && file.JoinAddr != "" {
		c.JoinAddr = file.JoinAddr
	}
	if !set["peers"] && len(file.PeerSpecs) > 0 {
		c.PeerSpecs = file.PeerSpecs
	}
	if !set["log-level"] && file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if !set["plan-db"] && file.PlanDB != "" {
		c.PlanDB = file.PlanDB
	}
}

// Validate checks that all required settings are present
func (c *Config) Validate() error {
	var errs []error
	if c.NodeID == "" {
		errs = append(errs, errors.New("node ID is required"))
	}
	if c.RaftAddr == "" {
		errs = append(errs, errors.New("raft address is required"))
	}
	if c.RaftDir == "" {
		errs = append(errs, errors.New("raft directory is required"))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP address is required"))
	}
	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if c.Bootstrap && c.JoinAddr != "" {
		errs = append(errs, errors.New("bootstrap and join are mutually exclusive"))
	}
	return errors.Join(errs...)
}
