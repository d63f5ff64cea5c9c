package guild

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/crossban/xban/internal/discord"
	"github.com/crossban/xban/internal/discord/message"
)

const (
	ComponentEnable  = "xbot:enable"
	ComponentDisable = "xbot:disable"
)

const consentText = `By enabling cross-banning, you acknowledge that you:
1. Ensure you trust the guilds in the lists you participate in.
2. Restrict command permissions to trusted roles in ` + "`Server Settings > Integrations > xban`" + `. Cross-banning commands are restricted to users with ban permissions by default.
3. Use cross-bans sparingly and appropriately.

When cross-banning, xban will try to ban the specified user in the current guild regardless of the moderator's roles and position, and will not propogate bans if that fails.
**To prevent moderators of the same rank from banning each other, place xban's role below moderators**, while still giving it proper permissions.

## By enabling this bot, you allow moderators of guilds in participating lists to ban users from this guild.`

const enabledText = `Enabled cross-banning in this guild.

To start using xban, create a list with ` + "`/xlist create`" + `, and invite other guilds with ` + "`/xlist invite`" + `.
Other guilds will need to enable the bot and join the list with ` + "`/xlist join`" + `.`

type DiscordHandler struct {
	guilds *Guilds
}

// RegisterDiscordCommands wires the /xbot command and its confirmation
// buttons into the bot.
func RegisterDiscordCommands(bot *discord.Bot, guilds *Guilds) error {
	handler := &DiscordHandler{guilds: guilds}

	command := &discordgo.ApplicationCommand{
		Name:                     string(discord.CmdXBot),
		Description:              "Manage xban settings.",
		DMPermission:             &discord.DmPerms,
		DefaultMemberPermissions: &discord.ManagePerms,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "enable",
				Description: "Enable (or disable) cross-banning.",
			},
		},
	}

	if errCommand := bot.RegisterCommand(command, handler.onXBot); errCommand != nil {
		return errCommand
	}

	if errEnable := bot.RegisterComponent(ComponentEnable, handler.onEnable); errEnable != nil {
		return errEnable
	}

	return bot.RegisterComponent(ComponentDisable, handler.onDisable)
}

// onXBot presents either the consent prompt with an enable button or, when
// already enabled, a disable button. The actual state change only happens on
// the button press.
func (h *DiscordHandler) onXBot(ctx context.Context, _ *discordgo.Session, interaction *discordgo.InteractionCreate) (*discord.Response, error) {
	if errPerm := discord.RequirePermission(interaction, discord.ManagePerms); errPerm != nil {
		return nil, errPerm
	}

	enabled, errEnabled := h.guilds.Enabled(ctx, interaction.GuildID)
	if errEnabled != nil {
		return nil, errEnabled
	}

	if enabled {
		return &discord.Response{
			Embed: message.Info("Cross-banning", "This guild already has cross-banning enabled."),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{
						Style:    discordgo.DangerButton,
						Label:    "Disable",
						CustomID: ComponentDisable,
					},
				}},
			},
		}, nil
	}

	return &discord.Response{
		Embed: message.Warn("Cross-banning", consentText),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Style:    discordgo.DangerButton,
					Label:    "I agree with these terms, and want to enable cross-banning.",
					CustomID: ComponentEnable,
				},
			}},
		},
	}, nil
}

func (h *DiscordHandler) onEnable(ctx context.Context, _ *discordgo.Session, interaction *discordgo.InteractionCreate) (string, error) {
	if errPerm := discord.RequirePermission(interaction, discord.ManagePerms); errPerm != nil {
		return "", errPerm
	}

	if _, errEnable := h.guilds.Enable(ctx, interaction.GuildID); errEnable != nil {
		return "", errEnable
	}

	return enabledText, nil
}

func (h *DiscordHandler) onDisable(ctx context.Context, _ *discordgo.Session, interaction *discordgo.InteractionCreate) (string, error) {
	if errPerm := discord.RequirePermission(interaction, discord.ManagePerms); errPerm != nil {
		return "", errPerm
	}

	if errDisable := h.guilds.Disable(ctx, interaction.GuildID); errDisable != nil {
		return "", errDisable
	}

	return "Disabled cross-banning in this guild.", nil
}
