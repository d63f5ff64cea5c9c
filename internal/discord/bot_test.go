package discord

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func TestDispatchBeforeConnect(t *testing.T) {
	bot, errNew := New("123456789012345678", "token")
	require.NoError(t, errNew)

	invoked := false

	errRegister := bot.RegisterCommand(&discordgo.ApplicationCommand{Name: string(CmdXBanID)},
		func(context.Context, *discordgo.Session, *discordgo.InteractionCreate) (*Response, error) {
			invoked = true

			return nil, nil
		})
	require.NoError(t, errRegister)

	interaction := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: string(CmdXBanID)},
	}}

	// Interactions cannot arrive before the commands are registered on
	// connect, so dispatch drops them instead of answering.
	bot.onInteractionCreate(bot.session, interaction)
	require.False(t, invoked)
}

func TestRegisterDuplicateCommand(t *testing.T) {
	bot, errNew := New("123456789012345678", "token")
	require.NoError(t, errNew)

	handler := func(context.Context, *discordgo.Session, *discordgo.InteractionCreate) (*Response, error) {
		return nil, nil
	}

	require.NoError(t, bot.RegisterCommand(&discordgo.ApplicationCommand{Name: string(CmdXBot)}, handler))
	require.ErrorIs(t, bot.RegisterCommand(&discordgo.ApplicationCommand{Name: string(CmdXBot)}, handler),
		ErrDuplicateCommand)
}
