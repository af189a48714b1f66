package actions

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// DiscordTransport posts webhook payloads as plain-text messages to a
// Discord channel named by target, the generalized replacement for the
// original tool's unfinished Slack/pager hook (page.py).
type DiscordTransport struct {
	session *discordgo.Session
}

// NewDiscordTransport opens a bot session using token.
func NewDiscordTransport(token string) (*DiscordTransport, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	if err := session.Open(); err != nil {
		return nil, err
	}
	return &DiscordTransport{session: session}, nil
}

func (t *DiscordTransport) Name() string { return "discord" }

func (t *DiscordTransport) Send(_ context.Context, target string, payload []byte) error {
	_, err := t.session.ChannelMessageSend(target, string(payload))
	return err
}

func (t *DiscordTransport) Close() error {
	return t.session.Close()
}

func (t *DiscordTransport) HealthCheckName() string { return "discord-webhook" }
func (t *DiscordTransport) HealthCheck() bool        { return t.session.DataReady }
