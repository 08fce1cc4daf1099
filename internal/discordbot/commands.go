package discordbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"bvi/citizenship_backend/internal/citizenship"
	"bvi/citizenship_backend/internal/notify"
	"bvi/citizenship_backend/internal/permission"
)

func (b *Bot) actor(i *discordgo.InteractionCreate) citizenship.Actor {
	return citizenship.Actor{ID: i.Member.User.ID, RoleIDs: i.Member.Roles}
}

func (b *Bot) handleApplyCommand(i *discordgo.InteractionCreate) {
	if err := b.session.InteractionRespond(i.Interaction, applicationModal(b.limits)); err != nil {
		b.logger.Error("failed to open application modal", "err", err)
	}
}

func (b *Bot) handleApplicationSubmit(ctx context.Context, i *discordgo.InteractionCreate) {
	fields := fieldsFromModal(i.ModalSubmitData(), i.Member.User.Username)

	_, err := b.workflow.Submit(ctx, b.actor(i), fields)
	if err != nil {
		b.respond(i, renderError(err))
		return
	}
	b.respond(i, "✅ Your citizenship application has been submitted successfully! You will receive a DM once your application has been reviewed.")
}

func (b *Bot) handleStatusCommand(ctx context.Context, i *discordgo.InteractionCreate) {
	app, err := b.workflow.StatusOf(ctx, i.Member.User.ID)
	if err != nil {
		if errors.Is(err, citizenship.ErrNotFound) {
			b.respond(i, "You don't have any citizenship applications. Use /citizenship to apply!")
			return
		}
		b.respond(i, renderError(err))
		return
	}
	b.respond(i, fmt.Sprintf("📋 **Your Application Status**\nStatus: %s\nSubmitted: <t:%d:R>\nRoblox Username: %s",
		app.Status, app.SubmittedAt.Unix(), app.RobloxUsername))
}

func (b *Bot) handleAcceptCommand(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	target := b.targetUser(data)
	if target == nil {
		b.respond(i, "❌ No user provided.")
		return
	}
	_, err := b.workflow.Approve(ctx, b.actor(i), target.ID)
	if err != nil {
		b.respond(i, renderError(err))
		return
	}
	b.respond(i, fmt.Sprintf("✅ Successfully approved citizenship application for %s", target.Mention()))
}

func (b *Bot) handleDeclineCommand(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	target := b.targetUser(data)
	if target == nil {
		b.respond(i, "❌ No user provided.")
		return
	}
	_, err := b.workflow.Decline(ctx, b.actor(i), target.ID, b.stringOption(data, "reason"))
	if err != nil {
		b.respond(i, renderError(err))
		return
	}
	b.respond(i, fmt.Sprintf("✅ Successfully declined citizenship application for %s", target.Mention()))
}

func (b *Bot) handleBulkCommand(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	op := citizenship.BulkOperation(b.stringOption(data, "operation"))
	ids := parseUserList(b.stringOption(data, "user_list"))
	if len(ids) == 0 {
		b.respond(i, "❌ No valid users in the list.")
		return
	}

	report, err := b.workflow.RunBulk(ctx, b.actor(i), ids, op, b.stringOption(data, "reason"))
	if err != nil {
		b.respond(i, renderError(err))
		return
	}

	var lines []string
	for _, item := range report.Items {
		if item.Err != nil {
			lines = append(lines, fmt.Sprintf("❌ <@%s>: %s", item.ApplicantID, renderError(item.Err)))
		} else {
			lines = append(lines, fmt.Sprintf("✅ <@%s>: %s", item.ApplicantID, pastTense(op)))
		}
	}
	summary := fmt.Sprintf("**Bulk %s results** — succeeded: %d, failed: %d\n%s",
		op, report.Succeeded, report.Failed, strings.Join(lines, "\n"))
	if len(summary) > 1900 {
		summary = summary[:1900] + "\n... (truncated)"
	}
	b.respond(i, summary)
}

func (b *Bot) handleResendCommand(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	target := b.targetUser(data)
	if target == nil {
		b.respond(i, "❌ No user provided.")
		return
	}
	if err := b.workflow.ResendOutcome(ctx, b.actor(i), target.ID); err != nil {
		b.respond(i, renderError(err))
		return
	}
	b.respond(i, fmt.Sprintf("✅ Outcome DM re-sent to %s", target.Mention()))
}

func (b *Bot) handleStatsCommand(i *discordgo.InteractionCreate) {
	if b.tracker == nil {
		b.respond(i, "❌ Statistics are not enabled.")
		return
	}
	s := b.tracker.Snapshot()
	b.respond(i, fmt.Sprintf(
		"📊 **Application Statistics**\n```\n"+
			"Total Applications:    %d\n"+
			"Pending Review:        %d\n"+
			"Approved:              %d\n"+
			"Declined:              %d\n"+
			"Approval Rate:         %.1f%%\n"+
			"Last 24h / 7d / 30d:   %d / %d / %d\n"+
			"Status Checks:         %d\n```",
		s.Total, s.Pending, s.Approved, s.Declined, s.ApprovalRate,
		s.Daily, s.Weekly, s.Monthly, s.StatusChecks))
}

func (b *Bot) handleAnnounceCommand(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	kind := notify.Kind(b.stringOption(data, "kind"))
	message := b.stringOption(data, "message")
	if message == "" {
		b.respond(i, "❌ No announcement text provided.")
		return
	}
	if err := b.workflow.Announce(ctx, b.actor(i), kind, message); err != nil {
		b.respond(i, renderError(err))
		return
	}
	b.respond(i, "📢 Announcement posted.")
}

func (b *Bot) handleBanCommand(ctx context.Context, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	target := b.targetUser(data)
	if target == nil {
		b.respond(i, "❌ No user provided.")
		return
	}
	err := b.workflow.Ban(ctx, b.actor(i), target.ID, b.stringOption(data, "place_id"), b.stringOption(data, "reason"))
	if err != nil {
		b.respond(i, renderError(err))
		return
	}
	b.respond(i, fmt.Sprintf("🔨 Successfully banned %s from the Roblox place.", target.Mention()))
}

// respond sends an ephemeral reply, falling back to a followup when the
// interaction was already acknowledged.
func (b *Bot) respond(i *discordgo.InteractionCreate, content string) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		if _, err := b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		}); err != nil {
			b.logger.Error("failed to respond to interaction", "err", err)
		}
	}
}

func (b *Bot) targetUser(data discordgo.ApplicationCommandInteractionData) *discordgo.User {
	for _, opt := range data.Options {
		if opt.Name == "user" && opt.Type == discordgo.ApplicationCommandOptionUser {
			return opt.UserValue(b.session)
		}
	}
	return nil
}

func (b *Bot) stringOption(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, opt := range data.Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

func pastTense(op citizenship.BulkOperation) string {
	if op == citizenship.BulkDecline {
		return "declined"
	}
	return "approved"
}

// parseUserList accepts comma-separated user mentions or raw IDs.
func parseUserList(list string) []string {
	var ids []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		part = strings.TrimSuffix(strings.TrimPrefix(part, "<@"), ">")
		part = strings.TrimPrefix(part, "!")
		if part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

// renderError maps core error kinds to the user-facing messages.
func renderError(err error) string {
	var denied *permission.DeniedError
	var invalid *citizenship.ValidationError
	var failure *notify.DeliveryFailure
	switch {
	case errors.As(err, &failure):
		return "❌ The message could not be delivered. Check channel and DM permissions."
	case errors.As(err, &denied):
		if denied.Need == permission.Admin {
			return "❌ You need the Admin role to use this command."
		}
		return "❌ You need the Admin or Citizenship Manager role to use this command."
	case errors.As(err, &invalid):
		return fmt.Sprintf("❌ Some fields are invalid: %s.", strings.Join(invalid.Fields, ", "))
	case errors.Is(err, citizenship.ErrDuplicatePending):
		return "❌ You already have a pending citizenship application. Please wait for it to be processed."
	case errors.Is(err, citizenship.ErrAlreadyReviewed):
		return "❌ That application has already been reviewed."
	case errors.Is(err, citizenship.ErrNotFound):
		return "❌ No application found for that user."
	case errors.Is(err, citizenship.ErrBanNotConfirmed):
		return "❌ Failed to ban user from the Roblox place. Please check the place ID and try again."
	default:
		return "❌ An error occurred while processing your command. Please try again later."
	}
}
