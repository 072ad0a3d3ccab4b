package discord

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/trollbot/internal/command"
	"github.com/keshon/trollbot/pkg/retrylimit"
)

// channelSender is the part of *discordgo.Session the messenger needs.
type channelSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Messenger implements command.Messenger over channel messages, retrying
// rate limits and server errors.
type Messenger struct {
	s       channelSender
	limiter *retrylimit.AdaptiveLimiter
	retry   retrylimit.Config
}

var _ command.Messenger = (*Messenger)(nil)

// NewMessenger wraps s. lim may be nil.
func NewMessenger(s channelSender, lim *retrylimit.AdaptiveLimiter, cfg retrylimit.Config) *Messenger {
	return &Messenger{s: s, limiter: lim, retry: cfg}
}

// Send sends a plain text message to a channel.
func (m *Messenger) Send(ctx context.Context, channelID, content string) error {
	return m.do(ctx, func() error {
		_, err := m.s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
		return err
	})
}

// SendEmbed sends an embed to a channel.
func (m *Messenger) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	return m.do(ctx, func() error {
		_, err := m.s.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
		return err
	})
}

func (m *Messenger) do(ctx context.Context, send func() error) error {
	return retrylimit.Do(ctx, m.limiter, m.retry, func() error {
		return classify(send())
	})
}

// restError carries the HTTP status of a failed REST call so the retry loop
// can tell transient failures from permanent ones.
type restError struct {
	err    error
	status int
	after  time.Duration
}

func (e *restError) Error() string             { return e.err.Error() }
func (e *restError) Unwrap() error             { return e.err }
func (e *restError) StatusCode() int           { return e.status }
func (e *restError) RetryAfter() time.Duration { return e.after }

func classify(err error) error {
	if err == nil {
		return nil
	}
	if after, ok := rateLimited(err); ok {
		return &restError{err: err, status: http.StatusTooManyRequests, after: after}
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		re := &restError{err: err, status: rest.Response.StatusCode}
		if secs, perr := strconv.ParseFloat(rest.Response.Header.Get("Retry-After"), 64); perr == nil {
			re.after = time.Duration(secs * float64(time.Second))
		}
		return re
	}
	return err
}

func rateLimited(err error) (time.Duration, bool) {
	var rl *discordgo.RateLimitError
	if errors.As(err, &rl) {
		return retryAfter(rl.RateLimit), true
	}
	return 0, false
}

func retryAfter(rl *discordgo.RateLimit) time.Duration {
	if rl == nil || rl.TooManyRequests == nil {
		return 0
	}
	return rl.RetryAfter
}
