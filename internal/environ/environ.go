// Package environ provides the variable store that configuration entries
// read from and write to. Synthesis never touches the process environment
// directly; it goes through an Env so that tests and embedders can supply
// their own.
package environ

import (
	"os"
	"sort"
	"strings"
	"sync"
)

// Env is a name to value store with the operations synthesis needs.
// Implementations serialize all reads and writes.
type Env interface {
	Lookup(name string) (string, bool)
	Get(name string) string
	Set(name, value string) error
	// Append adds value to the current value separated by a single space.
	// An unset or empty variable is simply set to value.
	Append(name, value string) error
	Unset(name string) error
	// Environ returns the variables as sorted "NAME=value" pairs, suitable
	// for exec.Cmd.Env.
	Environ() []string
}

func appendValue(current, value string) string {
	if current == "" {
		return value
	}
	return current + " " + value
}

// OS is an Env backed by the process environment.
type OS struct {
	mu sync.Mutex
}

// NewOS returns the process environment as an Env.
func NewOS() *OS {
	return &OS{}
}

func (e *OS) Lookup(name string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return os.LookupEnv(name)
}

func (e *OS) Get(name string) string {
	v, _ := e.Lookup(name)
	return v
}

func (e *OS) Set(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return os.Setenv(name, value)
}

func (e *OS) Append(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return os.Setenv(name, appendValue(os.Getenv(name), value))
}

func (e *OS) Unset(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return os.Unsetenv(name)
}

func (e *OS) Environ() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	env := os.Environ()
	sort.Strings(env)
	return env
}

// Map is an in-memory Env.
type Map struct {
	mu   sync.Mutex
	vars map[string]string
}

// NewMap returns a Map seeded with vars. The map is copied.
func NewMap(vars map[string]string) *Map {
	m := &Map{vars: make(map[string]string, len(vars))}
	for k, v := range vars {
		m.vars[k] = v
	}
	return m
}

// FromOS returns a Map seeded with a snapshot of the process environment.
func FromOS() *Map {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = v
	}
	return &Map{vars: vars}
}

func (m *Map) Lookup(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vars[name]
	return v, ok
}

func (m *Map) Get(name string) string {
	v, _ := m.Lookup(name)
	return v
}

func (m *Map) Set(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vars[name] = value
	return nil
}

func (m *Map) Append(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vars[name] = appendValue(m.vars[name], value)
	return nil
}

func (m *Map) Unset(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vars, name)
	return nil
}

func (m *Map) Environ() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	env := make([]string, 0, len(m.vars))
	for k, v := range m.vars {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// Snapshot returns a copy of the variables.
func (m *Map) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.vars))
	for k, v := range m.vars {
		out[k] = v
	}
	return out
}
