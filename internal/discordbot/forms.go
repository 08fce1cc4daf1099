package discordbot

import (
	"github.com/bwmarrin/discordgo"

	"bvi/citizenship_backend/internal/citizenship"
)

const applicationModalID = "citizenship_application"

// applicationModal builds the single-page application form. Discord allows at
// most five inputs per modal; the display name comes from the interaction
// member instead of a field.
func applicationModal(limits citizenship.FieldLimits) *discordgo.InteractionResponse {
	row := func(input discordgo.TextInput) discordgo.ActionsRow {
		return discordgo.ActionsRow{Components: []discordgo.MessageComponent{input}}
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: applicationModalID,
			Title:    "BVI Citizenship Application",
			Components: []discordgo.MessageComponent{
				row(discordgo.TextInput{
					CustomID:    "roblox_username",
					Label:       "Roblox Username",
					Style:       discordgo.TextInputShort,
					Placeholder: "Enter your Roblox username...",
					Required:    true,
					MaxLength:   limits.RobloxUsername,
				}),
				row(discordgo.TextInput{
					CustomID:    "reason",
					Label:       "Why do you want BVI citizenship?",
					Style:       discordgo.TextInputParagraph,
					Placeholder: "Please explain your motivation...",
					Required:    true,
					MaxLength:   limits.Reason,
				}),
				row(discordgo.TextInput{
					CustomID:    "criminal_record",
					Label:       "Criminal Record Disclosure",
					Style:       discordgo.TextInputShort,
					Placeholder: "Yes/No and details if applicable...",
					Required:    true,
					MaxLength:   limits.CriminalRecord,
				}),
				row(discordgo.TextInput{
					CustomID:    "additional_info",
					Label:       "Additional Information (Optional)",
					Style:       discordgo.TextInputParagraph,
					Placeholder: "Any additional information...",
					Required:    false,
					MaxLength:   limits.AdditionalInfo,
				}),
			},
		},
	}
}

// fieldsFromModal extracts the form answers from a modal submission.
func fieldsFromModal(data discordgo.ModalSubmitInteractionData, displayName string) citizenship.FormFields {
	fields := citizenship.FormFields{DisplayName: displayName}
	for _, component := range data.Components {
		actionsRow, ok := component.(*discordgo.ActionsRow)
		if !ok || len(actionsRow.Components) == 0 {
			continue
		}
		input, ok := actionsRow.Components[0].(*discordgo.TextInput)
		if !ok {
			continue
		}
		switch input.CustomID {
		case "roblox_username":
			fields.RobloxUsername = input.Value
		case "reason":
			fields.Reason = input.Value
		case "criminal_record":
			fields.CriminalRecord = input.Value
		case "additional_info":
			fields.AdditionalInfo = input.Value
		}
	}
	return fields
}
