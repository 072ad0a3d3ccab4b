package command_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/trollbot/internal/command"
)

var errNotFound = errors.New("not found")

type fakeResolver struct {
	members  map[string]*discordgo.Member
	channels map[string]*discordgo.Channel
	roles    map[string]*discordgo.Role
}

func (r *fakeResolver) Member(_, userID string) (*discordgo.Member, error) {
	if m, ok := r.members[userID]; ok {
		return m, nil
	}
	return nil, errNotFound
}

func (r *fakeResolver) User(userID string) (*discordgo.User, error) {
	if m, ok := r.members[userID]; ok {
		return m.User, nil
	}
	return nil, errNotFound
}

func (r *fakeResolver) Channel(channelID string) (*discordgo.Channel, error) {
	if c, ok := r.channels[channelID]; ok {
		return c, nil
	}
	return nil, errNotFound
}

func (r *fakeResolver) Role(_, roleID string) (*discordgo.Role, error) {
	if ro, ok := r.roles[roleID]; ok {
		return ro, nil
	}
	return nil, errNotFound
}

type sent struct {
	channel string
	content string
	embed   *discordgo.MessageEmbed
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sent
	err  error
}

func (m *fakeMessenger) Send(_ context.Context, channelID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sent{channel: channelID, content: content})
	return m.err
}

func (m *fakeMessenger) SendEmbed(_ context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sent{channel: channelID, embed: embed})
	return m.err
}

func (m *fakeMessenger) messages() []sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sent(nil), m.sent...)
}

type recorded struct {
	ran     map[string]command.Code
	denied  map[string]string
	unknown int
}

type fakeRecorder struct {
	mu sync.Mutex
	recorded
}

func newRecorder() *fakeRecorder {
	return &fakeRecorder{recorded: recorded{ran: map[string]command.Code{}, denied: map[string]string{}}}
}

func (r *fakeRecorder) Ran(name string, code command.Code, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ran[name] = code
}

func (r *fakeRecorder) Denied(name, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.denied[name] = reason
}

func (r *fakeRecorder) Unknown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unknown++
}
