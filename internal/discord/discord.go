// Package discord owns the gateway session and routes interactions to the
// per-domain command handlers.
package discord

import (
	"context"
	"errors"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrCommandFailed    = errors.New("command failed")
	ErrCommandSend      = errors.New("failed to send command response")
	ErrDiscordConfig    = errors.New("discord config is invalid, missing app_id or token")
	ErrDiscordCreate    = errors.New("failed to create discord session")
	ErrDiscordOpen      = errors.New("failed to open discord websocket connection")
	ErrDuplicateCommand = errors.New("duplicate command registration")
	ErrGuildOnly        = errors.New("this command can only be used in a guild")
)

var (
	DmPerms     = false                                   //nolint:gochecknoglobals
	ManagePerms = int64(discordgo.PermissionManageServer) //nolint:gochecknoglobals
	BanPerms    = int64(discordgo.PermissionBanMembers)   //nolint:gochecknoglobals
)

type Cmd string

const (
	CmdXBot   Cmd = "xbot"
	CmdXList  Cmd = "xlist"
	CmdXBanID Cmd = "xbanid"
)

const (
	OptName        = "name"
	OptList        = "list"
	OptOwnedList   = "owned_list"
	OptInvitedList = "invited_list"
	OptJoinedList  = "joined_list"
	OptGuildID     = "guild_id"
	OptUserID      = "user_id"
	OptReason      = "reason"
)

// Response is the payload edited into a deferred command response. Components
// are optional and carry the confirmation buttons for destructive flows.
type Response struct {
	Embed      *discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

// CommandHandler services a single slash command invocation. The interaction
// has already been deferred (ephemeral); the returned payload is edited into
// the deferred response.
type CommandHandler func(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) (*Response, error)

// AutocompleteHandler returns the choices for a focused autocomplete option.
type AutocompleteHandler func(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) ([]*discordgo.ApplicationCommandOptionChoice, error)

// ComponentHandler completes a button press. The returned content replaces
// the originating message and its components are cleared.
type ComponentHandler func(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) (string, error)
