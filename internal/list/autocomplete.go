package list

import (
	"context"
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/crossban/xban/internal/discord"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Discord caps autocomplete responses at 25 choices.
const maxChoices = 25

// scopeForOption maps an autocompleted option name to the list scope it
// queries. Unknown options yield no choices.
func scopeForOption(option string) (Scope, bool) {
	switch option {
	case discord.OptList:
		return ScopeJoined, true
	case discord.OptOwnedList:
		return ScopeOwned, true
	case discord.OptInvitedList:
		return ScopeInvited, true
	case discord.OptJoinedList:
		return ScopeJoinedNotOwned, true
	default:
		return 0, false
	}
}

// Choices resolves the autocomplete choices for a list option. Choice values
// carry the list ID while the displayed name is the list name. An empty
// query returns the scope's lists unranked.
func (l *Lists) Choices(ctx context.Context, guildID string, option string, query string) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	scope, known := scopeForOption(option)
	if !known {
		return nil, nil
	}

	lists, errLists := l.store.ListsByScope(ctx, guildID, scope)
	if errLists != nil {
		return nil, errLists
	}

	if query != "" && len(lists) > 0 {
		names := make([]string, len(lists))
		for i, current := range lists {
			names[i] = current.ListName
		}

		ranked := fuzzy.RankFindNormalizedFold(query, names)
		sort.Sort(ranked)

		matched := make([]List, 0, len(ranked))
		for _, rank := range ranked {
			matched = append(matched, lists[rank.OriginalIndex])
		}

		lists = matched
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, maxChoices)

	for _, current := range lists {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  current.ListName,
			Value: current.ListID.String(),
		})

		if len(choices) == maxChoices {
			break
		}
	}

	return choices, nil
}
