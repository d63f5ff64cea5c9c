package list

import (
	"context"

	"github.com/gofrs/uuid/v5"
)

// Summary is a list with its member count, as shown by the overview.
type Summary struct {
	List
	Members int
}

// Overview is everything a guild sees about its list participation: the
// lists it is paired with and the open invites waiting on it.
type Overview struct {
	Joined  []Summary
	Invited []List
}

func (l *Lists) Overview(ctx context.Context, guildID string) (Overview, error) {
	joined, errJoined := l.store.ListsByScope(ctx, guildID, ScopeJoined)
	if errJoined != nil {
		return Overview{}, errJoined
	}

	summaries := make([]Summary, 0, len(joined))

	for _, current := range joined {
		members, errMembers := l.store.ListMembers(ctx, current.ListID)
		if errMembers != nil {
			return Overview{}, errMembers
		}

		summaries = append(summaries, Summary{List: current, Members: len(members)})
	}

	invited, errInvited := l.store.ListsByScope(ctx, guildID, ScopeInvited)
	if errInvited != nil {
		return Overview{}, errInvited
	}

	return Overview{Joined: summaries, Invited: invited}, nil
}

// Detail is the full view of a single list for a paired guild.
type Detail struct {
	List
	Creator User
	Members []Member
	Invites []string
}

func (l *Lists) Detail(ctx context.Context, guildID string, listID uuid.UUID) (Detail, error) {
	existing, errAccess := l.Access(ctx, guildID, listID)
	if errAccess != nil {
		return Detail{}, errAccess
	}

	creator, errCreator := l.store.GetUser(ctx, existing.CreatorID)
	if errCreator != nil {
		return Detail{}, errCreator
	}

	members, errMembers := l.store.ListMembers(ctx, listID)
	if errMembers != nil {
		return Detail{}, errMembers
	}

	invites, errInvites := l.store.ListInvites(ctx, listID)
	if errInvites != nil {
		return Detail{}, errInvites
	}

	return Detail{List: existing, Creator: creator, Members: members, Invites: invites}, nil
}
