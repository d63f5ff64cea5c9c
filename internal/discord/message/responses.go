// Package message builds the embeds sent back in interaction responses.
package message

import (
	"github.com/bwmarrin/discordgo"
	embed "github.com/leighmacdonald/discordgo-embed"
)

const (
	ColourSuccess = 302673
	ColourInfo    = 3581519
	ColourWarn    = 14327864
	ColourError   = 13631488
)

const providerName = "xban"

// NewEmbed construct a new discord embed message. Accepts an optional title
// and description.
func NewEmbed(args ...string) *Embed {
	newEmbed := embed.
		NewEmbed().
		SetFooter(providerName)

	if len(args) == 2 {
		newEmbed = newEmbed.SetTitle(args[0]).
			SetDescription(args[1])
	} else if len(args) == 1 {
		newEmbed = newEmbed.SetTitle(args[0])
	}

	return &Embed{Emb: newEmbed}
}

type Embed struct {
	Emb *embed.Embed
}

func (e *Embed) Embed() *embed.Embed {
	return e.Emb
}

func (e *Embed) Message() *discordgo.MessageEmbed {
	return e.Emb.Truncate().MessageEmbed
}

func Success(title string, description string) *discordgo.MessageEmbed {
	return NewEmbed(title, description).Embed().
		SetColor(ColourSuccess).
		Truncate().MessageEmbed
}

func Info(title string, description string) *discordgo.MessageEmbed {
	return NewEmbed(title, description).Embed().
		SetColor(ColourInfo).
		Truncate().MessageEmbed
}

func Warn(title string, description string) *discordgo.MessageEmbed {
	return NewEmbed(title, description).Embed().
		SetColor(ColourWarn).
		Truncate().MessageEmbed
}

func ErrorMessage(command string, err error) *discordgo.MessageEmbed {
	return NewEmbed("Error Returned").Embed().
		SetColor(ColourError).
		AddField("command", command).
		SetDescription(err.Error()).MessageEmbed
}
