package command

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ArgumentType is the closed set of argument kinds.
type ArgumentType int

const (
	ArgText ArgumentType = iota
	ArgNumber
	ArgMember
	ArgUser
	ArgChannel
	ArgThread
	ArgRole
)

var argumentTypeNames = [...]string{
	ArgText:    "text",
	ArgNumber:  "number",
	ArgMember:  "member",
	ArgUser:    "user",
	ArgChannel: "channel",
	ArgThread:  "thread",
	ArgRole:    "role",
}

func (t ArgumentType) String() string {
	if t.valid() {
		return argumentTypeNames[t]
	}
	return fmt.Sprintf("ArgumentType(%d)", int(t))
}

func (t ArgumentType) valid() bool {
	return t >= ArgText && t <= ArgRole
}

// Argument describes one positional argument. Arguments are required unless
// Optional is set.
type Argument struct {
	Name     string
	Type     ArgumentType
	Optional bool
}

// Required reports whether the argument must be supplied.
func (a Argument) Required() bool { return !a.Optional }

// Resolver looks up platform entities referenced by arguments.
type Resolver interface {
	Member(guildID, userID string) (*discordgo.Member, error)
	User(userID string) (*discordgo.User, error)
	Channel(channelID string) (*discordgo.Channel, error)
	Role(guildID, roleID string) (*discordgo.Role, error)
}

// Value is a parsed argument. Exactly one of the typed fields is set,
// matching Argument.Type.
type Value struct {
	Argument Argument
	Raw      string

	Text    string
	Number  float64
	Member  *discordgo.Member
	User    *discordgo.User
	Channel *discordgo.Channel
	Role    *discordgo.Role
}

// Values holds parsed arguments by name. Optional arguments that were not
// supplied are absent.
type Values map[string]Value

func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

func (v Values) Text(name string) string                { return v[name].Text }
func (v Values) Number(name string) float64             { return v[name].Number }
func (v Values) Member(name string) *discordgo.Member   { return v[name].Member }
func (v Values) Channel(name string) *discordgo.Channel { return v[name].Channel }
func (v Values) Role(name string) *discordgo.Role       { return v[name].Role }

// User returns the user behind a user or member argument.
func (v Values) User(name string) *discordgo.User {
	val := v[name]
	if val.User != nil {
		return val.User
	}
	if val.Member != nil {
		return val.Member.User
	}
	return nil
}

var (
	ErrMissingArgument = errors.New("missing argument")
	ErrInvalidArgument = errors.New("invalid argument")
)

// ArgumentError reports which argument failed to parse.
type ArgumentError struct {
	Argument Argument
	Raw      string
	Err      error
}

func (e *ArgumentError) Error() string {
	if errors.Is(e.Err, ErrMissingArgument) {
		return fmt.Sprintf("missing %s", e.Argument.Name)
	}
	return fmt.Sprintf("%s: %q is not a valid %s: %v", e.Argument.Name, e.Raw, e.Argument.Type, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

var (
	userMention    = regexp.MustCompile(`^<@!?(\d+)>$`)
	channelMention = regexp.MustCompile(`^<#(\d+)>$`)
	roleMention    = regexp.MustCompile(`^<@&(\d+)>$`)
	snowflake      = regexp.MustCompile(`^\d{15,21}$`)
)

// ParseArguments binds tokens to defs in order. A trailing text argument
// takes the remainder of the tokens. Extra tokens are ignored. An optional
// argument that does not parse is skipped, leaving its token for the next
// argument, as long as a required argument follows it.
func ParseArguments(defs []Argument, tokens []string, guildID string, r Resolver) (Values, error) {
	values := make(Values, len(defs))
	next := 0
	for i, def := range defs {
		if next >= len(tokens) {
			if def.Required() {
				return nil, &ArgumentError{Argument: def, Err: ErrMissingArgument}
			}
			continue
		}
		raw := tokens[next]
		if def.Type == ArgText && i == len(defs)-1 {
			raw = strings.Join(tokens[next:], " ")
		}
		val, err := parseValue(def, raw, guildID, r)
		if err != nil {
			if !def.Required() && requiredAfter(defs[i+1:]) {
				continue
			}
			return nil, &ArgumentError{Argument: def, Raw: raw, Err: err}
		}
		values[def.Name] = val
		next++
	}
	return values, nil
}

func requiredAfter(defs []Argument) bool {
	for _, def := range defs {
		if def.Required() {
			return true
		}
	}
	return false
}

func parseValue(def Argument, raw, guildID string, r Resolver) (Value, error) {
	val := Value{Argument: def, Raw: raw}
	var err error
	switch def.Type {
	case ArgText:
		val.Text = raw
	case ArgNumber:
		val.Number, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return val, ErrInvalidArgument
		}
	case ArgMember:
		id, ok := mentionID(userMention, raw)
		if !ok || guildID == "" {
			return val, ErrInvalidArgument
		}
		val.Member, err = r.Member(guildID, id)
	case ArgUser:
		id, ok := mentionID(userMention, raw)
		if !ok {
			return val, ErrInvalidArgument
		}
		val.User, err = r.User(id)
	case ArgChannel, ArgThread:
		id, ok := mentionID(channelMention, raw)
		if !ok {
			return val, ErrInvalidArgument
		}
		val.Channel, err = r.Channel(id)
		if err == nil && def.Type == ArgThread && (val.Channel == nil || !val.Channel.IsThread()) {
			return val, fmt.Errorf("%w: not a thread", ErrInvalidArgument)
		}
	case ArgRole:
		id, ok := mentionID(roleMention, raw)
		if !ok || guildID == "" {
			return val, ErrInvalidArgument
		}
		val.Role, err = r.Role(guildID, id)
	}
	return val, err
}

func mentionID(re *regexp.Regexp, raw string) (string, bool) {
	if m := re.FindStringSubmatch(raw); m != nil {
		return m[1], true
	}
	if snowflake.MatchString(raw) {
		return raw, true
	}
	return "", false
}
