package discord

import (
	"github.com/bwmarrin/discordgo"
)

type CommandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

// OptionMap will take the recursive discord slash command options and flatten
// them into a simple map.
func OptionMap(options []*discordgo.ApplicationCommandInteractionDataOption) CommandOptions {
	optionM := make(CommandOptions, len(options))
	for _, opt := range options {
		optionM[opt.Name] = opt
	}

	return optionM
}

func (opts CommandOptions) String(key string) string {
	root, found := opts[key]
	if !found {
		return ""
	}

	val, ok := root.Value.(string)
	if !ok {
		return ""
	}

	return val
}

// Subcommand returns the invoked subcommand name and its flattened options.
// Returns an empty name for commands without subcommands.
func Subcommand(data discordgo.ApplicationCommandInteractionData) (string, CommandOptions) {
	if len(data.Options) == 0 || data.Options[0].Type != discordgo.ApplicationCommandOptionSubCommand {
		return "", OptionMap(data.Options)
	}

	return data.Options[0].Name, OptionMap(data.Options[0].Options)
}

// FocusedOption finds the option currently being autocompleted, descending
// into a subcommand when present.
func FocusedOption(data discordgo.ApplicationCommandInteractionData) (string, string) {
	options := data.Options
	if len(options) == 1 && options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		options = options[0].Options
	}

	for _, opt := range options {
		if opt.Focused {
			value, _ := opt.Value.(string)

			return opt.Name, value
		}
	}

	return "", ""
}
