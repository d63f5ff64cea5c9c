package list_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/crossban/xban/internal/discord"
	"github.com/crossban/xban/internal/list"
	"github.com/stretchr/testify/require"
)

func TestChoicesScopes(t *testing.T) {
	store := newFakeStore()
	lists := newLists(store)
	ctx := context.Background()

	owned, errOwned := lists.Create(ctx, ownerGuild, creator, "dragonslayers")
	require.NoError(t, errOwned)

	foreign, errForeign := lists.Create(ctx, otherGuild, creator, "grand order")
	require.NoError(t, errForeign)

	require.NoError(t, lists.Invite(ctx, otherGuild, foreign.ListID, ownerGuild))

	// owned_list only shows lists this guild owns.
	choices, errChoices := lists.Choices(ctx, ownerGuild, discord.OptOwnedList, "")
	require.NoError(t, errChoices)
	require.Len(t, choices, 1)
	require.Equal(t, "dragonslayers", choices[0].Name)
	require.Equal(t, owned.ListID.String(), choices[0].Value)

	// invited_list shows the open invite.
	choices, errChoices = lists.Choices(ctx, ownerGuild, discord.OptInvitedList, "")
	require.NoError(t, errChoices)
	require.Len(t, choices, 1)
	require.Equal(t, "grand order", choices[0].Name)

	// joined_list excludes owned lists.
	choices, errChoices = lists.Choices(ctx, ownerGuild, discord.OptJoinedList, "")
	require.NoError(t, errChoices)
	require.Empty(t, choices)

	_, errJoin := lists.Join(ctx, ownerGuild, foreign.ListID)
	require.NoError(t, errJoin)

	choices, errChoices = lists.Choices(ctx, ownerGuild, discord.OptJoinedList, "")
	require.NoError(t, errChoices)
	require.Len(t, choices, 1)
	require.Equal(t, "grand order", choices[0].Name)

	// list covers everything the guild is paired with.
	choices, errChoices = lists.Choices(ctx, ownerGuild, discord.OptList, "")
	require.NoError(t, errChoices)
	require.Len(t, choices, 2)

	choices, errChoices = lists.Choices(ctx, ownerGuild, "unknown_option", "")
	require.NoError(t, errChoices)
	require.Empty(t, choices)
}

func TestChoicesQuery(t *testing.T) {
	store := newFakeStore()
	lists := newLists(store)
	ctx := context.Background()

	first, errFirst := lists.Create(ctx, ownerGuild, creator, "dragonslayers")
	require.NoError(t, errFirst)

	_, errSecond := lists.Create(ctx, ownerGuild, creator, "grand order")
	require.NoError(t, errSecond)

	choices, errChoices := lists.Choices(ctx, ownerGuild, discord.OptOwnedList, "drag")
	require.NoError(t, errChoices)
	require.Len(t, choices, 1)
	require.Equal(t, "dragonslayers", choices[0].Name)
	require.Equal(t, first.ListID.String(), choices[0].Value)

	choices, errChoices = lists.Choices(ctx, ownerGuild, discord.OptOwnedList, "zzzz")
	require.NoError(t, errChoices)
	require.Empty(t, choices)
}

func TestChoicesRanked(t *testing.T) {
	store := newFakeStore()

	prober := &fakeProber{reachable: map[string]bool{}}
	lists := list.NewLists(store, prober, list.Limits{MaxListParticipants: 25, MaxGuildLists: 10})

	ctx := context.Background()

	created := map[string]string{}

	for _, name := range []string{"dragonslayers", "friends", "dragons"} {
		newList, errCreate := lists.Create(ctx, ownerGuild, creator, name)
		require.NoError(t, errCreate)

		created[name] = newList.ListID.String()
	}

	// Both dragon lists match, closest name first; "friends" is excluded.
	// Each choice must keep its own list ID through the reordering.
	choices, errChoices := lists.Choices(ctx, ownerGuild, discord.OptOwnedList, "drag")
	require.NoError(t, errChoices)
	require.Len(t, choices, 2)
	require.Equal(t, "dragons", choices[0].Name)
	require.Equal(t, created["dragons"], choices[0].Value)
	require.Equal(t, "dragonslayers", choices[1].Name)
	require.Equal(t, created["dragonslayers"], choices[1].Value)
}

func TestChoicesCapped(t *testing.T) {
	store := newFakeStore()

	prober := &fakeProber{reachable: map[string]bool{}}
	lists := list.NewLists(store, prober, list.Limits{MaxListParticipants: 25, MaxGuildLists: 100})

	ctx := context.Background()

	for i := range 30 {
		_, errCreate := lists.Create(ctx, ownerGuild, creator, fmt.Sprintf("list %02d", i))
		require.NoError(t, errCreate)
	}

	choices, errChoices := lists.Choices(ctx, ownerGuild, discord.OptOwnedList, "")
	require.NoError(t, errChoices)
	require.Len(t, choices, 25)
}
