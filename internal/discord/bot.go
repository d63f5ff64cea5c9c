package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/crossban/xban/internal/discord/message"
	"github.com/crossban/xban/internal/log"
	"github.com/crossban/xban/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const commandTimeout = time.Second * 30

// Bot wraps the gateway session along with the dispatch tables for slash
// commands, autocompletion and message components.
type Bot struct {
	session              *discordgo.Session
	isReady              atomic.Bool
	appID                string
	commands             []*discordgo.ApplicationCommand
	commandHandlers      map[Cmd]CommandHandler
	autocompleteHandlers map[Cmd]AutocompleteHandler
	componentHandlers    map[string]ComponentHandler
}

func New(appID string, token string) (*Bot, error) {
	if appID == "" || token == "" {
		return nil, ErrDiscordConfig
	}

	session, errNewSession := discordgo.New("Bot " + token)
	if errNewSession != nil {
		return nil, errors.Join(errNewSession, ErrDiscordCreate)
	}

	session.UserAgent = "xban (https://github.com/crossban/xban)"
	session.Identify.Intents = discordgo.IntentsGuilds

	bot := &Bot{
		session:              session,
		appID:                appID,
		commandHandlers:      map[Cmd]CommandHandler{},
		autocompleteHandlers: map[Cmd]AutocompleteHandler{},
		componentHandlers:    map[string]ComponentHandler{},
	}

	session.AddHandler(bot.onReady)
	session.AddHandler(bot.onConnect)
	session.AddHandler(bot.onDisconnect)
	session.AddHandler(bot.onInteractionCreate)

	return bot, nil
}

// Session exposes the raw session for REST clients that share it.
func (bot *Bot) Session() *discordgo.Session {
	return bot.session
}

// RegisterCommand adds a slash command definition along with its handler.
// Must be called before Start; commands are pushed to discord on connect.
func (bot *Bot) RegisterCommand(command *discordgo.ApplicationCommand, handler CommandHandler) error {
	name := Cmd(command.Name)
	if _, found := bot.commandHandlers[name]; found {
		return ErrDuplicateCommand
	}

	bot.commands = append(bot.commands, command)
	bot.commandHandlers[name] = handler

	return nil
}

func (bot *Bot) RegisterAutocomplete(name Cmd, handler AutocompleteHandler) error {
	if _, found := bot.autocompleteHandlers[name]; found {
		return ErrDuplicateCommand
	}

	bot.autocompleteHandlers[name] = handler

	return nil
}

func (bot *Bot) RegisterComponent(customID string, handler ComponentHandler) error {
	if _, found := bot.componentHandlers[customID]; found {
		return ErrDuplicateCommand
	}

	bot.componentHandlers[customID] = handler

	return nil
}

// Start opens the websocket connection and begins dispatching interactions.
func (bot *Bot) Start() error {
	if errSessionOpen := bot.session.Open(); errSessionOpen != nil {
		return errors.Join(errSessionOpen, ErrDiscordOpen)
	}

	return nil
}

func (bot *Bot) Shutdown() {
	if bot.session != nil {
		log.Closer(bot.session)
	}
}

func (bot *Bot) onReady(session *discordgo.Session, _ *discordgo.Ready) {
	slog.Info("Discord state changed", slog.String("state", "ready"), slog.String("username",
		fmt.Sprintf("%v#%v", session.State.User.Username, session.State.User.Discriminator)))
}

func (bot *Bot) onConnect(_ *discordgo.Session, _ *discordgo.Connect) {
	if _, errRegister := bot.session.ApplicationCommandBulkOverwrite(bot.appID, "", bot.commands); errRegister != nil {
		slog.Error("Failed to register discord slash commands", log.ErrAttr(errRegister))
	}

	slog.Info("Discord state changed", slog.String("state", "connected"))

	bot.isReady.Store(true)
}

func (bot *Bot) onDisconnect(_ *discordgo.Session, _ *discordgo.Disconnect) {
	bot.isReady.Store(false)

	slog.Info("Discord state changed", slog.String("state", "disconnected"))
}

// onInteractionCreate is the single entry point for every interaction the
// gateway delivers: slash commands, autocomplete queries and button presses.
func (bot *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	// Commands are not registered until the first connect; anything arriving
	// before that cannot be dispatched.
	if !bot.isReady.Load() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		bot.handleCommand(ctx, session, interaction)
	case discordgo.InteractionApplicationCommandAutocomplete:
		bot.handleAutocomplete(ctx, session, interaction)
	case discordgo.InteractionMessageComponent:
		bot.handleComponent(ctx, session, interaction)
	default:
	}
}

func (bot *Bot) handleCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	command := Cmd(interaction.ApplicationCommandData().Name)

	handler, found := bot.commandHandlers[command]
	if !found {
		return
	}

	metrics.Commands.With(prometheus.Labels{"command": string(command)}).Inc()

	// Commands hit the database and possibly remote guilds, so always defer.
	// Discord times out interactions that do not respond within a few
	// seconds. All responses are ephemeral.
	initialResponse := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}

	if errRespond := session.InteractionRespond(interaction.Interaction, initialResponse); errRespond != nil {
		slog.Error("Failed sending deferred response for interaction", log.ErrAttr(errRespond))

		return
	}

	response, errHandleCommand := handler(ctx, session, interaction)
	if errHandleCommand != nil || response == nil || response.Embed == nil {
		if errHandleCommand == nil {
			errHandleCommand = ErrCommandFailed
		}

		embeds := []*discordgo.MessageEmbed{message.ErrorMessage(string(command), errHandleCommand)}
		if _, errEdit := session.InteractionResponseEdit(interaction.Interaction, &discordgo.WebhookEdit{
			Embeds: &embeds,
		}); errEdit != nil {
			slog.Error("Failed sending error response for interaction", log.ErrAttr(errEdit))
		}

		return
	}

	embeds := []*discordgo.MessageEmbed{response.Embed}
	edit := &discordgo.WebhookEdit{Embeds: &embeds}

	if response.Components != nil {
		edit.Components = &response.Components
	}

	if _, errEdit := session.InteractionResponseEdit(interaction.Interaction, edit); errEdit != nil {
		slog.Error("Failed sending success response for interaction", log.ErrAttr(errEdit))
	}
}

func (bot *Bot) handleAutocomplete(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	command := Cmd(interaction.ApplicationCommandData().Name)

	handler, found := bot.autocompleteHandlers[command]
	if !found {
		return
	}

	choices, errChoices := handler(ctx, session, interaction)
	if errChoices != nil {
		slog.Error("Autocomplete handler failed", slog.String("command", string(command)), log.ErrAttr(errChoices))

		choices = nil
	}

	if errRespond := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}); errRespond != nil {
		slog.Error("Failed sending autocomplete response", log.ErrAttr(errRespond))
	}
}

func (bot *Bot) handleComponent(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	customID := interaction.MessageComponentData().CustomID

	handler, found := bot.componentHandlers[customID]
	if !found {
		return
	}

	content, errHandle := handler(ctx, session, interaction)
	if errHandle != nil {
		content = errHandle.Error()
	}

	// Replace the prompt message, dropping its buttons so the flow cannot be
	// completed twice from a stale message.
	if errRespond := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	}); errRespond != nil {
		slog.Error("Failed sending component response", log.ErrAttr(errRespond))
	}
}
