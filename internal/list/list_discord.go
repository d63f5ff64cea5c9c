package list

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/crossban/xban/internal/discord"
	"github.com/crossban/xban/internal/discord/message"
	"github.com/crossban/xban/internal/guild"
	"github.com/dustin/go-humanize"
	"github.com/gofrs/uuid/v5"
)

type DiscordHandler struct {
	lists  *Lists
	guilds *guild.Guilds
}

// RegisterDiscordCommands wires the /xlist command and its autocompletion
// into the bot.
func RegisterDiscordCommands(bot *discord.Bot, lists *Lists, guilds *guild.Guilds) error {
	handler := &DiscordHandler{lists: lists, guilds: guilds}

	if errCommand := bot.RegisterCommand(command(), handler.onXList); errCommand != nil {
		return errCommand
	}

	return bot.RegisterAutocomplete(discord.CmdXList, handler.onAutocomplete)
}

func command() *discordgo.ApplicationCommand {
	minNameLen := 1
	minSnowflakeLen := 17

	guildIDOption := func(description string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        discord.OptGuildID,
			Description: description,
			Required:    true,
			MinLength:   &minSnowflakeLen,
			MaxLength:   20,
		}
	}

	listOption := func(name string, description string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         name,
			Description:  description,
			Required:     true,
			Autocomplete: true,
		}
	}

	return &discordgo.ApplicationCommand{
		Name:                     string(discord.CmdXList),
		Description:              "Manage cross-ban lists.",
		DMPermission:             &discord.DmPerms,
		DefaultMemberPermissions: &discord.ManagePerms,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "create",
				Description: "Create a cross-ban list.",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        discord.OptName,
						Description: "The name of the list.",
						Required:    true,
						MinLength:   &minNameLen,
						MaxLength:   maxListNameLen,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "all",
				Description: "View all lists this guild participates in.",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "view",
				Description: "View a cross-ban list.",
				Options: []*discordgo.ApplicationCommandOption{
					listOption(discord.OptList, "The list to view."),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "delete",
				Description: "Delete a cross-ban list that you own.",
				Options: []*discordgo.ApplicationCommandOption{
					listOption(discord.OptOwnedList, "The list to delete."),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "invite",
				Description: "Invite a guild to your cross-ban list.",
				Options: []*discordgo.ApplicationCommandOption{
					listOption(discord.OptOwnedList, "The list to invite the guild to."),
					guildIDOption("The ID of the guild to invite."),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "join",
				Description: "Join a cross-ban list your guild was invited to.",
				Options: []*discordgo.ApplicationCommandOption{
					listOption(discord.OptInvitedList, "The list to join."),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "leave",
				Description: "Leave a cross-ban list.",
				Options: []*discordgo.ApplicationCommandOption{
					listOption(discord.OptJoinedList, "The list to leave."),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "kick",
				Description: "Kick (or uninvite) a guild from a cross-ban list.",
				Options: []*discordgo.ApplicationCommandOption{
					listOption(discord.OptOwnedList, "The list to kick from."),
					guildIDOption("The ID of the guild to kick."),
				},
			},
		},
	}
}

func confirm(text string) *discord.Response {
	return &discord.Response{Embed: message.Success("Lists", text)}
}

func parseListID(value string) (uuid.UUID, error) {
	listID, errParse := uuid.FromString(value)
	if errParse != nil {
		return uuid.UUID{}, ErrUnknownList
	}

	return listID, nil
}

func (h *DiscordHandler) onXList(ctx context.Context, _ *discordgo.Session, interaction *discordgo.InteractionCreate) (*discord.Response, error) {
	if errPerm := discord.RequirePermission(interaction, discord.ManagePerms); errPerm != nil {
		return nil, errPerm
	}

	if _, errEnabled := h.guilds.RequireEnabled(ctx, interaction.GuildID); errEnabled != nil {
		return nil, errEnabled
	}

	name, opts := discord.Subcommand(interaction.ApplicationCommandData())

	switch name {
	case "create":
		return h.onCreate(ctx, interaction, opts)
	case "all":
		return h.onAll(ctx, interaction)
	case "view":
		return h.onView(ctx, interaction, opts)
	case "delete":
		return h.onDelete(ctx, interaction, opts)
	case "invite":
		return h.onInvite(ctx, interaction, opts)
	case "join":
		return h.onJoin(ctx, interaction, opts)
	case "leave":
		return h.onLeave(ctx, interaction, opts)
	case "kick":
		return h.onKick(ctx, interaction, opts)
	default:
		return nil, discord.ErrCommandFailed
	}
}

func (h *DiscordHandler) onCreate(ctx context.Context, interaction *discordgo.InteractionCreate, opts discord.CommandOptions) (*discord.Response, error) {
	caller := interaction.Member.User

	created, errCreate := h.lists.Create(ctx, interaction.GuildID, User{
		UserID:        caller.ID,
		Username:      caller.Username,
		Discriminator: caller.Discriminator,
	}, opts.String(discord.OptName))
	if errCreate != nil {
		return nil, errCreate
	}

	return confirm(fmt.Sprintf("Created list %s.", created.ListName)), nil
}

func (h *DiscordHandler) onAll(ctx context.Context, interaction *discordgo.InteractionCreate) (*discord.Response, error) {
	overview, errOverview := h.lists.Overview(ctx, interaction.GuildID)
	if errOverview != nil {
		return nil, errOverview
	}

	var joined []string

	for _, summary := range overview.Joined {
		crown := ""
		if summary.Owned(interaction.GuildID) {
			crown = "👑 "
		}

		joined = append(joined, fmt.Sprintf("%s%s (%s guild[s])",
			crown, summary.ListName, humanize.Comma(int64(summary.Members))))
	}

	var invited []string

	for _, invite := range overview.Invited {
		invited = append(invited, fmt.Sprintf("%s (%s)", invite.ListName, invite.OwnerName))
	}

	embed := message.NewEmbed("Lists").Embed().
		SetColor(message.ColourInfo).
		AddField("Your lists", orNone(joined)).
		AddField("Lists that invited you", orNone(invited)).
		Truncate().MessageEmbed

	return &discord.Response{Embed: embed}, nil
}

func (h *DiscordHandler) onView(ctx context.Context, interaction *discordgo.InteractionCreate, opts discord.CommandOptions) (*discord.Response, error) {
	listID, errParse := parseListID(opts.String(discord.OptList))
	if errParse != nil {
		return nil, errParse
	}

	detail, errDetail := h.lists.Detail(ctx, interaction.GuildID, listID)
	if errDetail != nil {
		return nil, errDetail
	}

	lastBan := "*None*"
	if detail.LastBan != nil {
		lastBan = fmt.Sprintf("<t:%d:F>", detail.LastBan.Unix())
	}

	description := fmt.Sprintf("Owned by %s (%s)\nCreated on <t:%d:F>\nCreated by %s (%s)\n\nLast cross-ban: %s",
		detail.OwnerName, detail.OwnerID, detail.CreatedOn.Unix(), detail.Creator.Tag(), detail.CreatorID, lastBan)

	var members []string
	for _, member := range detail.Members {
		members = append(members, fmt.Sprintf("[`%s`] %s", member.GuildID, member.GuildName))
	}

	var invites []string
	for _, guildID := range detail.Invites {
		invites = append(invites, fmt.Sprintf("[`%s`]", guildID))
	}

	embed := message.NewEmbed(detail.ListName, description).Embed().
		SetColor(message.ColourInfo).
		AddField("Guilds", orNone(members)).
		AddField("Invites", orNone(invites)).
		Truncate().MessageEmbed

	return &discord.Response{Embed: embed}, nil
}

func (h *DiscordHandler) onDelete(ctx context.Context, interaction *discordgo.InteractionCreate, opts discord.CommandOptions) (*discord.Response, error) {
	listID, errParse := parseListID(opts.String(discord.OptOwnedList))
	if errParse != nil {
		return nil, errParse
	}

	deleted, errDelete := h.lists.Delete(ctx, interaction.GuildID, listID)
	if errDelete != nil {
		return nil, errDelete
	}

	return confirm(fmt.Sprintf("Deleted list %s.", deleted.ListName)), nil
}

func (h *DiscordHandler) onInvite(ctx context.Context, interaction *discordgo.InteractionCreate, opts discord.CommandOptions) (*discord.Response, error) {
	listID, errParse := parseListID(opts.String(discord.OptOwnedList))
	if errParse != nil {
		return nil, errParse
	}

	if errInvite := h.lists.Invite(ctx, interaction.GuildID, listID, opts.String(discord.OptGuildID)); errInvite != nil {
		return nil, errInvite
	}

	return confirm("Invited that guild to the list."), nil
}

func (h *DiscordHandler) onJoin(ctx context.Context, interaction *discordgo.InteractionCreate, opts discord.CommandOptions) (*discord.Response, error) {
	listID, errParse := parseListID(opts.String(discord.OptInvitedList))
	if errParse != nil {
		return nil, errParse
	}

	joined, errJoin := h.lists.Join(ctx, interaction.GuildID, listID)
	if errJoin != nil {
		return nil, errJoin
	}

	return confirm(fmt.Sprintf("Joined list %s.", joined.ListName)), nil
}

func (h *DiscordHandler) onLeave(ctx context.Context, interaction *discordgo.InteractionCreate, opts discord.CommandOptions) (*discord.Response, error) {
	listID, errParse := parseListID(opts.String(discord.OptJoinedList))
	if errParse != nil {
		return nil, errParse
	}

	left, errLeave := h.lists.Leave(ctx, interaction.GuildID, listID)
	if errLeave != nil {
		return nil, errLeave
	}

	return confirm(fmt.Sprintf("Left list %s.", left.ListName)), nil
}

func (h *DiscordHandler) onKick(ctx context.Context, interaction *discordgo.InteractionCreate, opts discord.CommandOptions) (*discord.Response, error) {
	listID, errParse := parseListID(opts.String(discord.OptOwnedList))
	if errParse != nil {
		return nil, errParse
	}

	result, errKick := h.lists.KickOrUninvite(ctx, interaction.GuildID, listID, opts.String(discord.OptGuildID))
	if errKick != nil {
		return nil, errKick
	}

	if result == KickedInvite {
		return confirm("Removed that guild's invite."), nil
	}

	return confirm("Kicked that guild from this list."), nil
}

func (h *DiscordHandler) onAutocomplete(ctx context.Context, _ *discordgo.Session, interaction *discordgo.InteractionCreate) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	if interaction.GuildID == "" {
		return nil, nil
	}

	option, query := discord.FocusedOption(interaction.ApplicationCommandData())

	return h.lists.Choices(ctx, interaction.GuildID, option, query)
}

func orNone(lines []string) string {
	if len(lines) == 0 {
		return "*None*"
	}

	return strings.Join(lines, "\n")
}
