package discord

import (
	"errors"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrPermissionDenied = errors.New("you do not have permission to use this command")
	ErrBotPermission    = errors.New("the bot is missing the required permission in this guild")
)

// RequirePermission ensures the interaction came from inside a guild and that
// the invoking member holds the given permission bit.
func RequirePermission(interaction *discordgo.InteractionCreate, permission int64) error {
	if interaction.GuildID == "" || interaction.Member == nil {
		return ErrGuildOnly
	}

	if interaction.Member.Permissions&permission != permission {
		return ErrPermissionDenied
	}

	return nil
}

// RequireBotPermission checks the bot's own effective permissions in the
// source channel, as reported on the interaction itself.
func RequireBotPermission(interaction *discordgo.InteractionCreate, permission int64) error {
	if interaction.AppPermissions&permission != permission {
		return ErrBotPermission
	}

	return nil
}
