package list_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/crossban/xban/internal/database"
	"github.com/crossban/xban/internal/list"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
)

type pairKey struct {
	guildID string
	listID  uuid.UUID
}

type fakeStore struct {
	lists      map[uuid.UUID]list.List
	users      map[string]list.User
	pairs      map[pairKey]bool
	invites    map[pairKey]bool
	invited    map[string]bool
	guildNames map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lists:      map[uuid.UUID]list.List{},
		users:      map[string]list.User{},
		pairs:      map[pairKey]bool{},
		invites:    map[pairKey]bool{},
		invited:    map[string]bool{},
		guildNames: map[string]string{},
	}
}

func (s *fakeStore) GetList(_ context.Context, listID uuid.UUID) (list.List, error) {
	existing, found := s.lists[listID]
	if !found {
		return list.List{}, database.ErrNoResult
	}

	existing.OwnerName = s.guildNames[existing.OwnerID]

	return existing, nil
}

func (s *fakeStore) ListsByScope(_ context.Context, guildID string, scope list.Scope) ([]list.List, error) {
	var matched []list.List

	for _, current := range s.lists {
		var keep bool

		switch scope {
		case list.ScopeJoined:
			keep = s.pairs[pairKey{guildID, current.ListID}]
		case list.ScopeOwned:
			keep = current.OwnerID == guildID
		case list.ScopeInvited:
			keep = s.invites[pairKey{guildID, current.ListID}]
		case list.ScopeJoinedNotOwned:
			keep = s.pairs[pairKey{guildID, current.ListID}] && current.OwnerID != guildID
		}

		if keep {
			current.OwnerName = s.guildNames[current.OwnerID]
			matched = append(matched, current)
		}
	}

	return matched, nil
}

func (s *fakeStore) CreateList(_ context.Context, newList *list.List, creator list.User) error {
	newList.ListID = uuid.Must(uuid.NewV4())
	s.users[creator.UserID] = creator
	s.lists[newList.ListID] = *newList
	s.pairs[pairKey{newList.OwnerID, newList.ListID}] = true

	return nil
}

func (s *fakeStore) DeleteList(_ context.Context, listID uuid.UUID) error {
	delete(s.lists, listID)

	for key := range s.pairs {
		if key.listID == listID {
			delete(s.pairs, key)
		}
	}

	for key := range s.invites {
		if key.listID == listID {
			delete(s.invites, key)
		}
	}

	return nil
}

func (s *fakeStore) ParticipatingCount(_ context.Context, guildID string) (int64, error) {
	seen := map[uuid.UUID]bool{}

	for key := range s.pairs {
		if key.guildID == guildID {
			seen[key.listID] = true
		}
	}

	for key := range s.invites {
		if key.guildID == guildID {
			seen[key.listID] = true
		}
	}

	return int64(len(seen)), nil
}

func (s *fakeStore) ParticipantCount(_ context.Context, listID uuid.UUID) (int64, error) {
	var count int64

	for key := range s.pairs {
		if key.listID == listID {
			count++
		}
	}

	for key := range s.invites {
		if key.listID == listID {
			count++
		}
	}

	return count, nil
}

func (s *fakeStore) HasPair(_ context.Context, guildID string, listID uuid.UUID) (bool, error) {
	return s.pairs[pairKey{guildID, listID}], nil
}

func (s *fakeStore) HasInvite(_ context.Context, guildID string, listID uuid.UUID) (bool, error) {
	return s.invites[pairKey{guildID, listID}], nil
}

func (s *fakeStore) CreateInvite(_ context.Context, guildID string, listID uuid.UUID) error {
	key := pairKey{guildID, listID}
	if s.invites[key] {
		return database.ErrDuplicate
	}

	s.invites[key] = true

	return nil
}

func (s *fakeStore) DeleteInvite(_ context.Context, guildID string, listID uuid.UUID) error {
	delete(s.invites, pairKey{guildID, listID})

	return nil
}

func (s *fakeStore) DeletePair(_ context.Context, guildID string, listID uuid.UUID) error {
	delete(s.pairs, pairKey{guildID, listID})

	return nil
}

func (s *fakeStore) ConsumeInvite(_ context.Context, guildID string, listID uuid.UUID) error {
	key := pairKey{guildID, listID}
	if !s.invites[key] {
		return database.ErrNoResult
	}

	delete(s.invites, key)
	s.pairs[key] = true

	return nil
}

func (s *fakeStore) IsInvitedGuild(_ context.Context, guildID string) (bool, error) {
	return s.invited[guildID], nil
}

func (s *fakeStore) MarkInvitedGuild(_ context.Context, guildID string) error {
	s.invited[guildID] = true

	return nil
}

func (s *fakeStore) ListMembers(_ context.Context, listID uuid.UUID) ([]list.Member, error) {
	var members []list.Member

	for key := range s.pairs {
		if key.listID == listID {
			members = append(members, list.Member{GuildID: key.guildID, GuildName: s.guildNames[key.guildID]})
		}
	}

	return members, nil
}

func (s *fakeStore) ListInvites(_ context.Context, listID uuid.UUID) ([]string, error) {
	var guildIDs []string

	for key := range s.invites {
		if key.listID == listID {
			guildIDs = append(guildIDs, key.guildID)
		}
	}

	return guildIDs, nil
}

func (s *fakeStore) GetUser(_ context.Context, userID string) (list.User, error) {
	user, found := s.users[userID]
	if !found {
		return list.User{}, database.ErrNoResult
	}

	return user, nil
}

func (s *fakeStore) SetLastBan(_ context.Context, listID uuid.UUID, when time.Time) error {
	existing, found := s.lists[listID]
	if !found {
		return database.ErrNoResult
	}

	existing.LastBan = &when
	s.lists[listID] = existing

	return nil
}

type fakeProber struct {
	reachable map[string]bool
}

func (p *fakeProber) GuildName(_ context.Context, guildID string) (string, error) {
	if !p.reachable[guildID] {
		return "", fmt.Errorf("unknown guild %s", guildID)
	}

	return "Guild " + guildID, nil
}

const (
	ownerGuild  = "11111111111111111111"
	otherGuild  = "22222222222222222222"
	thirdGuild  = "33333333333333333333"
	unreachable = "44444444444444444444"
)

var creator = list.User{UserID: "55555555555555555555", Username: "mod", Discriminator: "0"}

func newLists(store *fakeStore) *list.Lists {
	store.guildNames[ownerGuild] = "Owner Guild"
	store.guildNames[otherGuild] = "Other Guild"

	prober := &fakeProber{reachable: map[string]bool{ownerGuild: true, otherGuild: true, thirdGuild: true}}

	return list.NewLists(store, prober, list.Limits{MaxListParticipants: 3, MaxGuildLists: 2})
}

func TestCreate(t *testing.T) {
	store := newFakeStore()
	lists := newLists(store)
	ctx := context.Background()

	created, errCreate := lists.Create(ctx, ownerGuild, creator, "naughty people")
	require.NoError(t, errCreate)
	require.False(t, created.ListID.IsNil())

	// The owner is paired with its own list immediately.
	paired, _ := store.HasPair(ctx, ownerGuild, created.ListID)
	require.True(t, paired)

	_, errEmpty := lists.Create(ctx, ownerGuild, creator, "")
	require.ErrorIs(t, errEmpty, list.ErrInvalidListName)

	_, errSecond := lists.Create(ctx, ownerGuild, creator, "second")
	require.NoError(t, errSecond)

	// MaxGuildLists is 2 in these tests.
	_, errThird := lists.Create(ctx, ownerGuild, creator, "third")
	require.ErrorIs(t, errThird, list.ErrTooManyLists)
}

func TestInviteAndJoin(t *testing.T) {
	store := newFakeStore()
	lists := newLists(store)
	ctx := context.Background()

	created, errCreate := lists.Create(ctx, ownerGuild, creator, "shared")
	require.NoError(t, errCreate)

	require.ErrorIs(t, lists.Invite(ctx, otherGuild, created.ListID, thirdGuild), list.ErrUnknownList)
	require.ErrorIs(t, lists.Invite(ctx, ownerGuild, created.ListID, "123"), list.ErrInvalidGuildID)
	require.ErrorIs(t, lists.Invite(ctx, ownerGuild, created.ListID, unreachable), list.ErrInaccessibleGuild)
	require.ErrorIs(t, lists.Invite(ctx, ownerGuild, created.ListID, ownerGuild), list.ErrAlreadyMember)

	require.NoError(t, lists.Invite(ctx, ownerGuild, created.ListID, otherGuild))
	require.ErrorIs(t, lists.Invite(ctx, ownerGuild, created.ListID, otherGuild), list.ErrAlreadyInvited)

	// Join from the invited guild.
	joined, errJoin := lists.Join(ctx, otherGuild, created.ListID)
	require.NoError(t, errJoin)
	require.Equal(t, "shared", joined.ListName)

	// The invite was consumed, a second join fails.
	_, errAgain := lists.Join(ctx, otherGuild, created.ListID)
	require.ErrorIs(t, errAgain, list.ErrUnknownList)

	_, errUninvited := lists.Join(ctx, thirdGuild, created.ListID)
	require.ErrorIs(t, errUninvited, list.ErrUnknownList)
}

func TestInviteCapacity(t *testing.T) {
	store := newFakeStore()
	lists := newLists(store)
	ctx := context.Background()

	created, errCreate := lists.Create(ctx, ownerGuild, creator, "full")
	require.NoError(t, errCreate)

	// Owner pair plus two invites hits MaxListParticipants of 3.
	require.NoError(t, lists.Invite(ctx, ownerGuild, created.ListID, otherGuild))
	require.NoError(t, lists.Invite(ctx, ownerGuild, created.ListID, thirdGuild))
	require.ErrorIs(t, lists.Invite(ctx, ownerGuild, created.ListID, "66666666666666666666"), list.ErrListFull)
}

func TestInviteBusyGuild(t *testing.T) {
	store := newFakeStore()
	lists := newLists(store)
	ctx := context.Background()

	first, errFirst := lists.Create(ctx, ownerGuild, creator, "first")
	require.NoError(t, errFirst)

	second, errSecond := lists.Create(ctx, ownerGuild, creator, "second")
	require.NoError(t, errSecond)

	// Open invites count toward the target guild's participation limit.
	third, errThird := lists.Create(ctx, otherGuild, creator, "third")
	require.NoError(t, errThird)

	require.NoError(t, lists.Invite(ctx, ownerGuild, first.ListID, thirdGuild))
	require.NoError(t, lists.Invite(ctx, ownerGuild, second.ListID, thirdGuild))
	require.ErrorIs(t, lists.Invite(ctx, otherGuild, third.ListID, thirdGuild), list.ErrGuildBusy)
}

func TestLeave(t *testing.T) {
	store := newFakeStore()
	lists := newLists(store)
	ctx := context.Background()

	created, errCreate := lists.Create(ctx, ownerGuild, creator, "shared")
	require.NoError(t, errCreate)

	require.NoError(t, lists.Invite(ctx, ownerGuild, created.ListID, otherGuild))

	_, errJoin := lists.Join(ctx, otherGuild, created.ListID)
	require.NoError(t, errJoin)

	// Owners cannot leave their own list.
	_, errOwner := lists.Leave(ctx, ownerGuild, created.ListID)
	require.ErrorIs(t, errOwner, list.ErrUnknownList)

	left, errLeave := lists.Leave(ctx, otherGuild, created.ListID)
	require.NoError(t, errLeave)
	require.Equal(t, "shared", left.ListName)

	_, errAgain := lists.Leave(ctx, otherGuild, created.ListID)
	require.ErrorIs(t, errAgain, list.ErrUnknownList)
}

func TestKickOrUninvite(t *testing.T) {
	store := newFakeStore()
	lists := newLists(store)
	ctx := context.Background()

	created, errCreate := lists.Create(ctx, ownerGuild, creator, "shared")
	require.NoError(t, errCreate)

	_, errSelf := lists.KickOrUninvite(ctx, ownerGuild, created.ListID, ownerGuild)
	require.ErrorIs(t, errSelf, list.ErrSelfKick)

	_, errStranger := lists.KickOrUninvite(ctx, ownerGuild, created.ListID, otherGuild)
	require.ErrorIs(t, errStranger, list.ErrNotParticipant)

	// An open invite is revoked first.
	require.NoError(t, lists.Invite(ctx, ownerGuild, created.ListID, otherGuild))

	result, errUninvite := lists.KickOrUninvite(ctx, ownerGuild, created.ListID, otherGuild)
	require.NoError(t, errUninvite)
	require.Equal(t, list.KickedInvite, result)

	// A joined member gets its pair removed.
	require.NoError(t, lists.Invite(ctx, ownerGuild, created.ListID, otherGuild))

	_, errJoin := lists.Join(ctx, otherGuild, created.ListID)
	require.NoError(t, errJoin)

	result, errKick := lists.KickOrUninvite(ctx, ownerGuild, created.ListID, otherGuild)
	require.NoError(t, errKick)
	require.Equal(t, list.KickedMember, result)
}

func TestDelete(t *testing.T) {
	store := newFakeStore()
	lists := newLists(store)
	ctx := context.Background()

	created, errCreate := lists.Create(ctx, ownerGuild, creator, "doomed")
	require.NoError(t, errCreate)

	_, errOther := lists.Delete(ctx, otherGuild, created.ListID)
	require.ErrorIs(t, errOther, list.ErrUnknownList)

	deleted, errDelete := lists.Delete(ctx, ownerGuild, created.ListID)
	require.NoError(t, errDelete)
	require.Equal(t, "doomed", deleted.ListName)

	_, errGone := lists.Delete(ctx, ownerGuild, created.ListID)
	require.ErrorIs(t, errGone, list.ErrUnknownList)
}

func TestOverviewAndDetail(t *testing.T) {
	store := newFakeStore()
	lists := newLists(store)
	ctx := context.Background()

	created, errCreate := lists.Create(ctx, ownerGuild, creator, "shared")
	require.NoError(t, errCreate)

	require.NoError(t, lists.Invite(ctx, ownerGuild, created.ListID, otherGuild))

	overview, errOverview := lists.Overview(ctx, otherGuild)
	require.NoError(t, errOverview)
	require.Empty(t, overview.Joined)
	require.Len(t, overview.Invited, 1)
	require.Equal(t, "Owner Guild", overview.Invited[0].OwnerName)

	// Detail requires membership, the invite alone is not enough.
	_, errDetail := lists.Detail(ctx, otherGuild, created.ListID)
	require.ErrorIs(t, errDetail, list.ErrUnknownList)

	_, errJoin := lists.Join(ctx, otherGuild, created.ListID)
	require.NoError(t, errJoin)

	detail, errJoinedDetail := lists.Detail(ctx, otherGuild, created.ListID)
	require.NoError(t, errJoinedDetail)
	require.Equal(t, "mod", detail.Creator.Tag())
	require.Len(t, detail.Members, 2)
	require.Empty(t, detail.Invites)

	overview, errOverview = lists.Overview(ctx, otherGuild)
	require.NoError(t, errOverview)
	require.Len(t, overview.Joined, 1)
	require.Equal(t, 2, overview.Joined[0].Members)
	require.Empty(t, overview.Invited)
}

func TestTouchLastBan(t *testing.T) {
	store := newFakeStore()
	lists := newLists(store)
	ctx := context.Background()

	created, errCreate := lists.Create(ctx, ownerGuild, creator, "shared")
	require.NoError(t, errCreate)
	require.Nil(t, created.LastBan)

	require.NoError(t, lists.TouchLastBan(ctx, created.ListID))

	updated, errGet := lists.Access(ctx, ownerGuild, created.ListID)
	require.NoError(t, errGet)
	require.NotNil(t, updated.LastBan)
}
