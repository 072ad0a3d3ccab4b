// Package command holds the command descriptor: name, aliases, typed
// arguments, permission and accessibility rules, and the runner invoked by
// the dispatcher once a message has been authorized.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UsageSuffix is appended to every synthesized usage string.
const UsageSuffix = ":troll:"

// Tier is the minimum role a member needs to use a command.
type Tier int

const (
	TierNone Tier = iota
	TierOwner
	TierAdmin
	TierMod
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierOwner:
		return "owner"
	case TierAdmin:
		return "admin"
	case TierMod:
		return "mod"
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

func (t Tier) valid() bool {
	return t >= TierNone && t <= TierMod
}

// Access is the accessibility rule of a command.
type Access struct {
	GuildOnly bool
	Tier      Tier
}

// Declared reports whether any accessibility rule is set.
func (a Access) Declared() bool {
	return a.GuildOnly || a.Tier != TierNone
}

// Permissions are discordgo permission bitmasks. Client is what the bot needs
// in the channel, User is what the invoking member needs.
type Permissions struct {
	Client int64
	User   int64
}

// Roles holds the role IDs behind the admin and mod tiers.
type Roles struct {
	Admin string
	Mod   string
}

// Options is the declarative configuration a Command is built from.
type Options struct {
	Name        string
	Description string
	Category    string
	Aliases     []string
	NSFW        bool
	Permissions Permissions
	Access      Access
	Arguments   []Argument
	Runner      Runner
}

var (
	ErrNoName    = errors.New("command name is empty")
	ErrNoRunner  = errors.New("command has no runner")
	ErrBadName   = errors.New("command name or alias contains whitespace")
	ErrBadAlias  = errors.New("alias repeats the command name")
	ErrBadTier   = errors.New("unknown accessibility tier")
	ErrBadArgDef = errors.New("invalid argument definition")
)

// Command is an immutable command descriptor.
type Command struct {
	name        string
	description string
	category    string
	aliases     []string
	usage       string
	nsfw        bool
	perms       Permissions
	access      Access
	args        []Argument
	roles       Roles
	runner      Runner
}

// New validates opts and builds a descriptor. roles are the IDs checked by
// the admin and mod tiers.
func New(opts Options, roles Roles) (*Command, error) {
	if opts.Name == "" {
		return nil, ErrNoName
	}
	if strings.ContainsAny(opts.Name, " \t\n") {
		return nil, fmt.Errorf("%w: %q", ErrBadName, opts.Name)
	}
	for _, a := range opts.Aliases {
		if a == "" || strings.ContainsAny(a, " \t\n") {
			return nil, fmt.Errorf("%w: %q", ErrBadName, a)
		}
		if strings.EqualFold(a, opts.Name) {
			return nil, fmt.Errorf("%w: %q", ErrBadAlias, a)
		}
	}
	if opts.Runner == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoRunner, opts.Name)
	}
	if !opts.Access.Tier.valid() {
		return nil, fmt.Errorf("%w: %s on %s", ErrBadTier, opts.Access.Tier, opts.Name)
	}
	for i, a := range opts.Arguments {
		if a.Name == "" {
			return nil, fmt.Errorf("%w: argument %d of %s has no name", ErrBadArgDef, i, opts.Name)
		}
		if !a.Type.valid() {
			return nil, fmt.Errorf("%w: argument %s of %s has type %s", ErrBadArgDef, a.Name, opts.Name, a.Type)
		}
	}

	c := &Command{
		name:        opts.Name,
		description: opts.Description,
		category:    opts.Category,
		aliases:     append([]string(nil), opts.Aliases...),
		nsfw:        opts.NSFW,
		perms:       opts.Permissions,
		access:      opts.Access,
		args:        append([]Argument(nil), opts.Arguments...),
		roles:       roles,
		runner:      opts.Runner,
	}
	c.usage = buildUsage(c.name, c.args)
	return c, nil
}

// MustNew is like New but panics on invalid options.
func MustNew(opts Options, roles Roles) *Command {
	c, err := New(opts, roles)
	if err != nil {
		panic(err)
	}
	return c
}

func buildUsage(name string, args []Argument) string {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range args {
		if a.Required() {
			b.WriteString(" <" + a.Name + ">")
		} else {
			b.WriteString(" [" + a.Name + "]")
		}
	}
	b.WriteString(UsageSuffix)
	return b.String()
}

func (c *Command) Name() string             { return c.name }
func (c *Command) Description() string      { return c.description }
func (c *Command) Category() string         { return c.category }
func (c *Command) Usage() string            { return c.usage }
func (c *Command) NSFW() bool               { return c.nsfw }
func (c *Command) Access() Access           { return c.access }
func (c *Command) Permissions() Permissions { return c.perms }

func (c *Command) Aliases() []string {
	return append([]string(nil), c.aliases...)
}

func (c *Command) Arguments() []Argument {
	return append([]Argument(nil), c.args...)
}

// Run invokes the command's runner as-is.
func (c *Command) Run(ctx context.Context, inv *Invocation) *Result {
	return c.runner.Run(ctx, inv)
}
