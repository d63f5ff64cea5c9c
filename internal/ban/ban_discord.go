package ban

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/crossban/xban/internal/discord"
	"github.com/crossban/xban/internal/discord/message"
	"github.com/crossban/xban/internal/guild"
	"github.com/crossban/xban/internal/list"
	"github.com/gofrs/uuid/v5"
)

const maxReasonOptionLen = 100

type DiscordHandler struct {
	bans   *Bans
	lists  *list.Lists
	guilds *guild.Guilds
}

// RegisterDiscordCommands wires the /xbanid command into the bot. List
// autocompletion is scoped to lists the invoking guild is paired with.
func RegisterDiscordCommands(bot *discord.Bot, bans *Bans, lists *list.Lists, guilds *guild.Guilds) error {
	handler := &DiscordHandler{bans: bans, lists: lists, guilds: guilds}

	minSnowflakeLen := 17

	command := &discordgo.ApplicationCommand{
		Name:                     string(discord.CmdXBanID),
		Description:              "Ban a user across servers using their ID.",
		DMPermission:             &discord.DmPerms,
		DefaultMemberPermissions: &discord.BanPerms,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        discord.OptUserID,
				Description: "The ID of the user to ban.",
				Required:    true,
				MinLength:   &minSnowflakeLen,
				MaxLength:   20,
			},
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         discord.OptList,
				Description:  "The list to ban this user through.",
				Required:     true,
				Autocomplete: true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        discord.OptReason,
				Description: "The reason provided with the ban.",
				MaxLength:   maxReasonOptionLen,
			},
		},
	}

	if errCommand := bot.RegisterCommand(command, handler.onXBanID); errCommand != nil {
		return errCommand
	}

	return bot.RegisterAutocomplete(discord.CmdXBanID, handler.onAutocomplete)
}

func (h *DiscordHandler) onXBanID(ctx context.Context, _ *discordgo.Session, interaction *discordgo.InteractionCreate) (*discord.Response, error) {
	if errPerm := discord.RequirePermission(interaction, discord.BanPerms); errPerm != nil {
		return nil, errPerm
	}

	if errBotPerm := discord.RequireBotPermission(interaction, discord.BanPerms); errBotPerm != nil {
		return nil, errBotPerm
	}

	if _, errEnabled := h.guilds.RequireEnabled(ctx, interaction.GuildID); errEnabled != nil {
		return nil, errEnabled
	}

	_, opts := discord.Subcommand(interaction.ApplicationCommandData())

	listID, errParse := uuid.FromString(opts.String(discord.OptList))
	if errParse != nil {
		return nil, list.ErrUnknownList
	}

	report, errExecute := h.bans.Execute(ctx, Opts{
		GuildID:  interaction.GuildID,
		CallerID: interaction.Member.User.ID,
		ListID:   listID,
		UserID:   opts.String(discord.OptUserID),
		Reason:   opts.String(discord.OptReason),
	})
	if errExecute != nil {
		return nil, errExecute
	}

	if report.Local != nil {
		return &discord.Response{Embed: message.NewEmbed("Cross-ban failed", report.Message()).Embed().
			SetColor(message.ColourError).
			Truncate().MessageEmbed}, nil
	}

	if len(report.Failures) > 0 {
		return &discord.Response{Embed: message.Warn("Cross-ban partially applied", report.Message())}, nil
	}

	return &discord.Response{Embed: message.Success("Cross-ban applied", report.Message())}, nil
}

func (h *DiscordHandler) onAutocomplete(ctx context.Context, _ *discordgo.Session, interaction *discordgo.InteractionCreate) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	if interaction.GuildID == "" {
		return nil, nil
	}

	option, query := discord.FocusedOption(interaction.ApplicationCommandData())

	return h.lists.Choices(ctx, interaction.GuildID, option, query)
}
