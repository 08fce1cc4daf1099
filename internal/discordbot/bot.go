// Package discordbot is the inbound/outbound Discord adapter. It renders
// user-facing output and translates interactions into core workflow calls; no
// lifecycle or permission logic lives here.
package discordbot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"bvi/citizenship_backend/internal/citizenship"
	"bvi/citizenship_backend/internal/config"
	"bvi/citizenship_backend/internal/notify"
	"bvi/citizenship_backend/internal/stats"
)

// Bot owns the Discord session and the slash command surface.
type Bot struct {
	session  *discordgo.Session
	workflow *citizenship.Workflow
	tracker  *stats.Tracker
	cfg      config.Config
	limits   citizenship.FieldLimits
	logger   *slog.Logger

	registered []*discordgo.ApplicationCommand
}

func New(token string, cfg config.Config, limits citizenship.FieldLimits, logger *slog.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bot{
		session: session,
		cfg:     cfg,
		limits:  limits,
		logger:  logger,
	}
	session.AddHandler(b.onInteraction)
	return b, nil
}

// Session exposes the underlying session so the outbound Delegate can share
// one connection.
func (b *Bot) Session() *discordgo.Session { return b.session }

// Attach wires the core workflow in. The session is created before the
// workflow because the workflow's delegates need it; call Attach before Open.
func (b *Bot) Attach(workflow *citizenship.Workflow, tracker *stats.Tracker) {
	b.workflow = workflow
	b.tracker = tracker
}

// Open connects the gateway and registers the guild slash commands.
func (b *Bot) Open(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	b.logger.Info("discord session established", "user", b.session.State.User.Username)

	for _, cmd := range commandDefinitions() {
		created, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.cfg.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("register command %s: %w", cmd.Name, err)
		}
		b.registered = append(b.registered, created)
	}
	b.logger.Info("slash commands registered", "count", len(b.registered))
	return ctx.Err()
}

// Close tears down the registered commands and the session.
func (b *Bot) Close() {
	for _, cmd := range b.registered {
		if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.cfg.GuildID, cmd.ID); err != nil {
			b.logger.Warn("failed to delete command", "command", cmd.Name, "err", err)
		}
	}
	_ = b.session.Close()
}

// onInteraction routes every gateway interaction. Handlers always answer
// ephemerally; errors are rendered as user-facing messages, never dropped.
func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if b.workflow == nil || i.Member == nil || i.Member.User == nil {
		return // guild interactions only, after Attach
	}
	ctx := context.Background()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		switch data.Name {
		case "citizenship":
			b.handleApplyCommand(i)
		case "citizenship_status":
			b.handleStatusCommand(ctx, i)
		case "citizenship_accept":
			b.handleAcceptCommand(ctx, i, data)
		case "citizenship_decline":
			b.handleDeclineCommand(ctx, i, data)
		case "citizenship_bulk":
			b.handleBulkCommand(ctx, i, data)
		case "citizenship_resend":
			b.handleResendCommand(ctx, i, data)
		case "citizenship_stats":
			b.handleStatsCommand(i)
		case "citizenship_announce":
			b.handleAnnounceCommand(ctx, i, data)
		case "ban":
			b.handleBanCommand(ctx, i, data)
		}
	case discordgo.InteractionModalSubmit:
		if i.ModalSubmitData().CustomID == applicationModalID {
			b.handleApplicationSubmit(ctx, i)
		}
	}
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	userOption := func(desc string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: desc,
			Required:    true,
		}
	}
	return []*discordgo.ApplicationCommand{
		{
			Name:        "citizenship",
			Description: "Apply for British Virgin Islands citizenship",
		},
		{
			Name:        "citizenship_status",
			Description: "Check the status of your citizenship application",
		},
		{
			Name:        "citizenship_accept",
			Description: "Accept a citizenship application",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user whose application to accept"),
			},
		},
		{
			Name:        "citizenship_decline",
			Description: "Decline a citizenship application",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user whose application to decline"),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for declining the application",
				},
			},
		},
		{
			Name:        "citizenship_bulk",
			Description: "Approve or decline multiple applications at once",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "operation",
					Description: "Operation to apply",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "approve", Value: string(citizenship.BulkApprove)},
						{Name: "decline", Value: string(citizenship.BulkDecline)},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "user_list",
					Description: "Comma-separated list of user mentions or IDs",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason applied to declined applications",
				},
			},
		},
		{
			Name:        "citizenship_resend",
			Description: "Re-send the outcome DM for a reviewed application",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The user whose outcome DM to re-send"),
			},
		},
		{
			Name:        "citizenship_stats",
			Description: "View application statistics",
		},
		{
			Name:        "citizenship_announce",
			Description: "Post a server announcement",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "kind",
					Description: "Announcement kind",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "welcome", Value: string(notify.KindWelcome)},
						{Name: "maintenance", Value: string(notify.KindMaintenance)},
						{Name: "policy update", Value: string(notify.KindPolicyUpdate)},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Announcement text",
					Required:    true,
				},
			},
		},
		{
			Name:        "ban",
			Description: "Ban a user from a Roblox place",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("The Discord user to ban"),
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "place_id",
					Description: "The Roblox place ID to ban from",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Reason for the ban",
				},
			},
		},
	}
}
