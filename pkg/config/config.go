// Package config loads the inventory of managed nodes from YAML.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPort is the default NETCONF port.
const DefaultPort = 830

// Node is one managed router's management endpoint. Credentials and port
// fall back to the file-level defaults when unset.
type Node struct {
	Host     string `yaml:"host"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Port     int    `yaml:"port"`
}

// Addr returns the host:port dial target.
func (n Node) Addr() string {
	return fmt.Sprintf("%s:%d", n.Host, n.Port)
}

// Config is the inventory file: file-level credential defaults, the root
// node collection starts from, and the peer node list.
type Config struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Port     int    `yaml:"port"`
	Root     *Node  `yaml:"root"`
	Nodes    []Node `yaml:"nodes"`
}

// AllNodes returns the root node (when configured) followed by the peers.
func (c *Config) AllNodes() []Node {
	if c.Root == nil {
		return c.Nodes
	}
	return append([]Node{*c.Root}, c.Nodes...)
}

// Load reads and parses the inventory file, applies defaults to each node
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses inventory YAML, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Root != nil {
		c.applyNodeDefaults(c.Root)
	}
	for i := range c.Nodes {
		c.applyNodeDefaults(&c.Nodes[i])
	}
}

func (c *Config) applyNodeDefaults(n *Node) {
	if n.User == "" {
		n.User = c.User
	}
	if n.Password == "" {
		n.Password = c.Password
	}
	if n.Port == 0 {
		n.Port = c.Port
	}
}

func (c *Config) Validate() error {
	nodes := c.AllNodes()
	if len(nodes) == 0 {
		return errors.New("at least one node is required")
	}
	for i, n := range nodes {
		if n.Host == "" {
			return fmt.Errorf("node %d: host is required", i)
		}
		if n.User == "" {
			return fmt.Errorf("node %s: user is required", n.Host)
		}
		if n.Port <= 0 || n.Port > 65535 {
			return fmt.Errorf("node %s: port %d out of range", n.Host, n.Port)
		}
	}
	return nil
}
