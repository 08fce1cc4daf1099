package discordbot

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"bvi/citizenship_backend/internal/config"
	"bvi/citizenship_backend/internal/notify"
)

// Delegate implements the outbound platform interface consumed by the core:
// direct messages, audit channel posts, and the citizenship role grant.
type Delegate struct {
	session       *discordgo.Session
	guildID       string
	citizenRoleID string
	channels      config.Channels
}

func NewDelegate(session *discordgo.Session, guildID, citizenRoleID string, channels config.Channels) *Delegate {
	return &Delegate{
		session:       session,
		guildID:       guildID,
		citizenRoleID: citizenRoleID,
		channels:      channels,
	}
}

// SendDirectMessage DMs a user. Users with DMs disabled surface as an error
// the dispatcher treats as a non-fatal delivery failure.
func (d *Delegate) SendDirectMessage(ctx context.Context, userID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch, err := d.session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("open DM channel: %w", err)
	}
	_, err = d.session.ChannelMessageSend(ch.ID, text)
	return err
}

// PostToChannel posts to the concrete channel behind a logical kind.
func (d *Delegate) PostToChannel(ctx context.Context, kind notify.ChannelKind, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	channelID, err := d.resolveChannel(kind)
	if err != nil {
		return err
	}
	_, err = d.session.ChannelMessageSend(channelID, text)
	return err
}

// GrantRole assigns the configured citizen role.
func (d *Delegate) GrantRole(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.citizenRoleID == "" {
		return errors.New("citizen role not configured")
	}
	return d.session.GuildMemberRoleAdd(d.guildID, userID, d.citizenRoleID)
}

// resolveChannel maps a logical kind to a channel ID: configured ID first,
// then a name search as fallback.
func (d *Delegate) resolveChannel(kind notify.ChannelKind) (string, error) {
	var id, name string
	switch kind {
	case notify.ChannelCitizenshipLog:
		id, name = d.channels.CitizenshipLogID, d.channels.CitizenshipLogName
	case notify.ChannelCitizenshipStatus:
		id, name = d.channels.CitizenshipStatusID, d.channels.CitizenshipStatusName
	case notify.ChannelModLog:
		id, name = d.channels.ModLogID, d.channels.ModLogName
	case notify.ChannelAnnouncements:
		id, name = d.channels.AnnouncementsID, d.channels.AnnouncementsName
	default:
		return "", fmt.Errorf("unknown channel kind %q", kind)
	}
	if id != "" {
		return id, nil
	}

	channels, err := d.session.GuildChannels(d.guildID)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return ch.ID, nil
		}
	}
	return "", fmt.Errorf("channel %q not found", name)
}
