// Package config manages ferry's named engine contexts.
//
// A context points image operations at a remote Docker engine endpoint,
// optionally secured by mutual TLS, plus the registry credentials to use
// when pushing through it. Contexts are stored in a single YAML file under
// the user config directory.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvContext is the environment variable that overrides the active context.
const EnvContext = "FERRY_CONTEXT"

// Context represents a saved engine endpoint.
type Context struct {
	// Host is the engine endpoint URL, e.g. "tcp://build-01.internal:2376"
	// or "unix:///var/run/docker.sock".
	Host string `yaml:"host"`

	// Mutual TLS material. Required together for tcp hosts.
	CA   string `yaml:"ca,omitempty"`
	Cert string `yaml:"cert,omitempty"`
	Key  string `yaml:"key,omitempty"`

	// Registry credentials used for pushes through this context. The
	// password is never stored; only the name of the env var holding it.
	RegistryUser        string `yaml:"registry_user,omitempty"`
	RegistryPasswordEnv string `yaml:"registry_password_env,omitempty"`

	CreatedAt time.Time `yaml:"created_at,omitempty"`
}

// TLS reports whether the context carries mutual TLS material.
func (c Context) TLS() bool {
	return c.CA != "" || c.Cert != "" || c.Key != ""
}

// Store is the on-disk collection of contexts plus the active pointer.
type Store struct {
	Active   string             `yaml:"active,omitempty"`
	Contexts map[string]Context `yaml:"contexts"`

	path string
}

// DefaultPath returns the default contexts file path.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.Getenv("HOME")
	}
	return filepath.Join(configDir, "ferry", "contexts.yaml")
}

// Load loads the store from path, or an empty store if the file does not
// exist yet. An empty path means the default location.
func Load(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}

	store := &Store{
		Contexts: make(map[string]Context),
		path:     path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read contexts file: %w", err)
	}

	if err := yaml.Unmarshal(data, store); err != nil {
		return nil, fmt.Errorf("failed to parse contexts file: %w", err)
	}

	if store.Contexts == nil {
		store.Contexts = make(map[string]Context)
	}
	store.path = path

	return store, nil
}

// Save writes the store back to its file. The file is created with 0600 and
// its directory with 0700 since it may name credential env vars.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal contexts: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write contexts file: %w", err)
	}

	return nil
}

// Path returns the file backing this store.
func (s *Store) Path() string {
	return s.path
}

// Add validates and saves a new context. Overwriting an existing name is
// the caller's decision; Add refuses it so the CLI can prompt first.
func (s *Store) Add(name string, c Context) error {
	if name == "" {
		return fmt.Errorf("context name cannot be empty")
	}
	if _, exists := s.Contexts[name]; exists {
		return fmt.Errorf("context %q already exists", name)
	}

	if err := Validate(c); err != nil {
		return fmt.Errorf("invalid context %q: %w", name, err)
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	s.Contexts[name] = c
	return nil
}

// Replace validates and overwrites an existing context.
func (s *Store) Replace(name string, c Context) error {
	if _, exists := s.Contexts[name]; !exists {
		return fmt.Errorf("context %q not found", name)
	}
	if err := Validate(c); err != nil {
		return fmt.Errorf("invalid context %q: %w", name, err)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	s.Contexts[name] = c
	return nil
}

// Remove deletes a context. The active pointer is cleared when it named
// the removed context.
func (s *Store) Remove(name string) error {
	if _, exists := s.Contexts[name]; !exists {
		return fmt.Errorf("context %q not found", name)
	}

	delete(s.Contexts, name)

	if s.Active == name {
		s.Active = ""
	}

	return nil
}

// SetActive marks a context as the default target for engine operations.
func (s *Store) SetActive(name string) error {
	if _, exists := s.Contexts[name]; !exists {
		return fmt.Errorf("context %q not found", name)
	}

	s.Active = name
	return nil
}

// Get returns a context by name.
func (s *Store) Get(name string) (Context, error) {
	c, ok := s.Contexts[name]
	if !ok {
		return Context{}, fmt.Errorf("context %q not found", name)
	}
	return c, nil
}

// Names returns the context names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.Contexts))
	for name := range s.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve picks the context to use.
// Precedence: flag > FERRY_CONTEXT env > active pointer.
func (s *Store) Resolve(flag string) (string, Context, error) {
	name := flag
	if name == "" {
		name = os.Getenv(EnvContext)
	}
	if name == "" {
		name = s.Active
	}
	if name == "" {
		return "", Context{}, fmt.Errorf("no context selected: create one with 'ferry context create' and select it with 'ferry context use'")
	}

	c, err := s.Get(name)
	if err != nil {
		return "", Context{}, err
	}

	return name, c, nil
}

// Validate checks a context's host URL and TLS material.
//
// tcp hosts talk to a daemon over the network and must carry the full
// mutual TLS triple; unix hosts are local sockets and must not. Each TLS
// file must exist and be readable at registration time so a broken context
// fails at create, not mid-push.
func Validate(c Context) error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}

	u, err := url.Parse(c.Host)
	if err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}

	switch u.Scheme {
	case "tcp":
		if u.Host == "" {
			return fmt.Errorf("tcp host must include an address")
		}
		if c.CA == "" || c.Cert == "" || c.Key == "" {
			return fmt.Errorf("tcp hosts require --ca, --cert and --key")
		}
	case "unix":
		if c.TLS() {
			return fmt.Errorf("unix sockets do not take TLS material")
		}
	default:
		return fmt.Errorf("unsupported host scheme %q: must be tcp:// or unix://", u.Scheme)
	}

	for _, f := range []struct {
		label string
		path  string
	}{
		{"ca", c.CA},
		{"cert", c.Cert},
		{"key", c.Key},
	} {
		if f.path == "" {
			continue
		}
		fh, err := os.Open(f.path)
		if err != nil {
			return fmt.Errorf("%s file is not readable: %w", f.label, err)
		}
		fh.Close()
	}

	if c.RegistryPasswordEnv != "" && c.RegistryUser == "" {
		return fmt.Errorf("registry_password_env requires registry_user")
	}

	return nil
}

// RegistryPassword reads the context's registry password from its env var.
func (c Context) RegistryPassword() string {
	if c.RegistryPasswordEnv == "" {
		return ""
	}
	return os.Getenv(c.RegistryPasswordEnv)
}
