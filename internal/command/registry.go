package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDuplicate is returned when a name or alias is already taken.
var ErrDuplicate = errors.New("command already registered")

// Registry indexes commands by lowercased name and aliases. It is filled at
// startup and read-only afterwards.
type Registry struct {
	roles  Roles
	lookup map[string]*Command
	list   []*Command
}

// NewRegistry returns an empty registry whose commands check roles.
func NewRegistry(roles Roles) *Registry {
	return &Registry{roles: roles, lookup: make(map[string]*Command)}
}

// Register builds a command from opts and adds it.
func (r *Registry) Register(opts Options) (*Command, error) {
	c, err := New(opts, r.roles)
	if err != nil {
		return nil, err
	}
	if err := r.Add(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Add indexes an already built command. Nothing is added when any of its keys
// collides with an existing one.
func (r *Registry) Add(c *Command) error {
	keys := append([]string{c.Name()}, c.Aliases()...)
	for _, k := range keys {
		if other, ok := r.lookup[strings.ToLower(k)]; ok {
			return fmt.Errorf("%w: %q (taken by %s)", ErrDuplicate, k, other.Name())
		}
	}
	for _, k := range keys {
		r.lookup[strings.ToLower(k)] = c
	}
	r.list = append(r.list, c)
	return nil
}

// Get finds a command by name or alias, case-insensitively.
func (r *Registry) Get(name string) (*Command, bool) {
	c, ok := r.lookup[strings.ToLower(name)]
	return c, ok
}

// All returns every registered command sorted by name.
func (r *Registry) All() []*Command {
	list := append([]*Command(nil), r.list...)
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

// Keys returns every lookup key, names and aliases alike.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.lookup))
	for k := range r.lookup {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
