// Package list implements cross-ban list membership: creation, invites,
// joining, leaving and kicking guilds.
package list

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/crossban/xban/internal/database"
	"github.com/gofrs/uuid/v5"
)

// User-facing failures are returned verbatim inside the error embed.
var (
	ErrUnknownList       = errors.New("Invalid list.")                                     //nolint:staticcheck
	ErrTooManyLists      = errors.New("You are participating in too many lists.")          //nolint:staticcheck
	ErrListFull          = errors.New("This list has too many participants.")              //nolint:staticcheck
	ErrGuildBusy         = errors.New("This guild is participating in too many lists.")    //nolint:staticcheck
	ErrInvalidGuildID    = errors.New("Invalid guild ID.")                                 //nolint:staticcheck
	ErrInaccessibleGuild = errors.New("This bot cannot access the specified guild.")       //nolint:staticcheck
	ErrAlreadyInvited    = errors.New("That guild is already invited to this list.")       //nolint:staticcheck
	ErrAlreadyMember     = errors.New("That guild is already a member of this list.")      //nolint:staticcheck
	ErrSelfKick          = errors.New("Don't kick yourself.")                              //nolint:staticcheck
	ErrNotParticipant    = errors.New("That guild is not a part of this list.")            //nolint:staticcheck
	ErrInvalidListName   = errors.New("List names must be between 1 and 32 characters.")   //nolint:staticcheck
)

var reSnowflake = regexp.MustCompile(`^\d{17,20}$`)

const maxListNameLen = 32

type List struct {
	ListID    uuid.UUID
	ListName  string
	OwnerID   string
	OwnerName string
	CreatorID string
	CreatedOn time.Time
	LastBan   *time.Time
}

// Owned is true when the given guild owns the list.
func (l List) Owned(guildID string) bool {
	return l.OwnerID == guildID
}

// User is the snapshot of the discord user who created a list.
type User struct {
	UserID        string
	Username      string
	Discriminator string
}

// Tag renders the historical name#discriminator form, or the plain username
// for accounts migrated off discriminators.
func (u User) Tag() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}

	return u.Username + "#" + u.Discriminator
}

// Member is a guild currently paired with a list.
type Member struct {
	GuildID   string
	GuildName string
}

// Scope selects which relationship between a guild and its lists a query
// covers. The scopes map one to one onto the autocompleted command options.
type Scope int

const (
	// ScopeJoined covers every list the guild is paired with.
	ScopeJoined Scope = iota
	// ScopeOwned covers lists the guild owns.
	ScopeOwned
	// ScopeInvited covers lists holding an open invite for the guild.
	ScopeInvited
	// ScopeJoinedNotOwned covers paired lists owned by somebody else, the
	// ones the guild is able to leave.
	ScopeJoinedNotOwned
)

type Store interface {
	GetList(ctx context.Context, listID uuid.UUID) (List, error)
	ListsByScope(ctx context.Context, guildID string, scope Scope) ([]List, error)
	CreateList(ctx context.Context, list *List, creator User) error
	DeleteList(ctx context.Context, listID uuid.UUID) error
	ParticipatingCount(ctx context.Context, guildID string) (int64, error)
	ParticipantCount(ctx context.Context, listID uuid.UUID) (int64, error)
	HasPair(ctx context.Context, guildID string, listID uuid.UUID) (bool, error)
	HasInvite(ctx context.Context, guildID string, listID uuid.UUID) (bool, error)
	CreateInvite(ctx context.Context, guildID string, listID uuid.UUID) error
	DeleteInvite(ctx context.Context, guildID string, listID uuid.UUID) error
	DeletePair(ctx context.Context, guildID string, listID uuid.UUID) error
	ConsumeInvite(ctx context.Context, guildID string, listID uuid.UUID) error
	IsInvitedGuild(ctx context.Context, guildID string) (bool, error)
	MarkInvitedGuild(ctx context.Context, guildID string) error
	ListMembers(ctx context.Context, listID uuid.UUID) ([]Member, error)
	ListInvites(ctx context.Context, listID uuid.UUID) ([]string, error)
	GetUser(ctx context.Context, userID string) (User, error)
	SetLastBan(ctx context.Context, listID uuid.UUID, when time.Time) error
}

// Prober resolves guilds through discord. Used to verify that an invited
// guild actually exists and is reachable before recording the invite.
type Prober interface {
	GuildName(ctx context.Context, guildID string) (string, error)
}

// Limits come from config and bound list fan-out growth.
type Limits struct {
	// MaxListParticipants caps members plus open invites per list.
	MaxListParticipants int
	// MaxGuildLists caps how many lists a single guild may participate in,
	// counting open invites.
	MaxGuildLists int
}

type Lists struct {
	store  Store
	prober Prober
	limits Limits
}

func NewLists(store Store, prober Prober, limits Limits) *Lists {
	return &Lists{store: store, prober: prober, limits: limits}
}

// Create makes a new list owned by ownerGuildID with the owner paired as its
// first member. The creating user is snapshotted for display.
func (l *Lists) Create(ctx context.Context, ownerGuildID string, creator User, name string) (List, error) {
	if name == "" || len(name) > maxListNameLen {
		return List{}, ErrInvalidListName
	}

	participating, errCount := l.store.ParticipatingCount(ctx, ownerGuildID)
	if errCount != nil {
		return List{}, errCount
	}

	if participating >= int64(l.limits.MaxGuildLists) {
		return List{}, ErrTooManyLists
	}

	newList := List{
		ListName:  name,
		OwnerID:   ownerGuildID,
		CreatorID: creator.UserID,
		CreatedOn: time.Now(),
	}

	if errCreate := l.store.CreateList(ctx, &newList, creator); errCreate != nil {
		return List{}, errCreate
	}

	return newList, nil
}

// Delete removes a list the guild owns along with its pairs and invites.
// Non-owners get the same generic failure as a missing list so that list IDs
// are not probeable.
func (l *Lists) Delete(ctx context.Context, guildID string, listID uuid.UUID) (List, error) {
	existing, errAccess := l.requireOwned(ctx, guildID, listID)
	if errAccess != nil {
		return List{}, errAccess
	}

	if errDelete := l.store.DeleteList(ctx, listID); errDelete != nil {
		return List{}, errDelete
	}

	return existing, nil
}

// Invite records an open invite for targetGuildID on a list the calling
// guild owns. Capacity on both sides is enforced before the invite lands.
func (l *Lists) Invite(ctx context.Context, ownerGuildID string, listID uuid.UUID, targetGuildID string) error {
	if _, errAccess := l.requireOwned(ctx, ownerGuildID, listID); errAccess != nil {
		return errAccess
	}

	if !reSnowflake.MatchString(targetGuildID) {
		return ErrInvalidGuildID
	}

	participants, errParticipants := l.store.ParticipantCount(ctx, listID)
	if errParticipants != nil {
		return errParticipants
	}

	if participants >= int64(l.limits.MaxListParticipants) {
		return ErrListFull
	}

	participating, errParticipating := l.store.ParticipatingCount(ctx, targetGuildID)
	if errParticipating != nil {
		return errParticipating
	}

	if participating >= int64(l.limits.MaxGuildLists) {
		return ErrGuildBusy
	}

	isMember, errMember := l.store.HasPair(ctx, targetGuildID, listID)
	if errMember != nil {
		return errMember
	}

	if isMember {
		return ErrAlreadyMember
	}

	if errAccessible := l.requireAccessible(ctx, targetGuildID); errAccessible != nil {
		return errAccessible
	}

	if errInvite := l.store.CreateInvite(ctx, targetGuildID, listID); errInvite != nil {
		if errors.Is(errInvite, database.ErrDuplicate) {
			return ErrAlreadyInvited
		}

		return errInvite
	}

	return nil
}

// Join converts an open invite into membership. The invite row acts as the
// authorization token, so a concurrent join of the same invite fails with
// the generic unknown list error.
func (l *Lists) Join(ctx context.Context, guildID string, listID uuid.UUID) (List, error) {
	invited, errInvited := l.store.HasInvite(ctx, guildID, listID)
	if errInvited != nil {
		return List{}, errInvited
	}

	if !invited {
		return List{}, ErrUnknownList
	}

	joined, errGet := l.store.GetList(ctx, listID)
	if errGet != nil {
		if errors.Is(errGet, database.ErrNoResult) {
			return List{}, ErrUnknownList
		}

		return List{}, errGet
	}

	if errConsume := l.store.ConsumeInvite(ctx, guildID, listID); errConsume != nil {
		if errors.Is(errConsume, database.ErrNoResult) || errors.Is(errConsume, database.ErrDuplicate) {
			return List{}, ErrUnknownList
		}

		return List{}, errConsume
	}

	return joined, nil
}

// Leave detaches the guild from a list it joined. Owners cannot leave their
// own list, they delete it instead.
func (l *Lists) Leave(ctx context.Context, guildID string, listID uuid.UUID) (List, error) {
	existing, errGet := l.store.GetList(ctx, listID)
	if errGet != nil {
		if errors.Is(errGet, database.ErrNoResult) {
			return List{}, ErrUnknownList
		}

		return List{}, errGet
	}

	if existing.Owned(guildID) {
		return List{}, ErrUnknownList
	}

	paired, errPaired := l.store.HasPair(ctx, guildID, listID)
	if errPaired != nil {
		return List{}, errPaired
	}

	if !paired {
		return List{}, ErrUnknownList
	}

	if errDelete := l.store.DeletePair(ctx, guildID, listID); errDelete != nil {
		return List{}, errDelete
	}

	return existing, nil
}

// KickResult reports which relationship a kick removed.
type KickResult int

const (
	KickedInvite KickResult = iota
	KickedMember
)

// KickOrUninvite removes targetGuildID from a list the caller owns. An open
// invite is revoked in preference to membership, mirroring how a guild
// progresses through the two states.
func (l *Lists) KickOrUninvite(ctx context.Context, ownerGuildID string, listID uuid.UUID, targetGuildID string) (KickResult, error) {
	if _, errAccess := l.requireOwned(ctx, ownerGuildID, listID); errAccess != nil {
		return 0, errAccess
	}

	if !reSnowflake.MatchString(targetGuildID) {
		return 0, ErrInvalidGuildID
	}

	if targetGuildID == ownerGuildID {
		return 0, ErrSelfKick
	}

	invited, errInvited := l.store.HasInvite(ctx, targetGuildID, listID)
	if errInvited != nil {
		return 0, errInvited
	}

	if invited {
		if errDelete := l.store.DeleteInvite(ctx, targetGuildID, listID); errDelete != nil {
			return 0, errDelete
		}

		return KickedInvite, nil
	}

	paired, errPaired := l.store.HasPair(ctx, targetGuildID, listID)
	if errPaired != nil {
		return 0, errPaired
	}

	if paired {
		if errDelete := l.store.DeletePair(ctx, targetGuildID, listID); errDelete != nil {
			return 0, errDelete
		}

		return KickedMember, nil
	}

	return 0, ErrNotParticipant
}

// Access loads a list on behalf of a paired guild. Guilds that are not
// members get the same generic failure as a missing list.
func (l *Lists) Access(ctx context.Context, guildID string, listID uuid.UUID) (List, error) {
	existing, errGet := l.store.GetList(ctx, listID)
	if errGet != nil {
		if errors.Is(errGet, database.ErrNoResult) {
			return List{}, ErrUnknownList
		}

		return List{}, errGet
	}

	paired, errPaired := l.store.HasPair(ctx, guildID, listID)
	if errPaired != nil {
		return List{}, errPaired
	}

	if !paired {
		return List{}, ErrUnknownList
	}

	return existing, nil
}

// Members returns the guilds currently paired with the list.
func (l *Lists) Members(ctx context.Context, listID uuid.UUID) ([]Member, error) {
	return l.store.ListMembers(ctx, listID)
}

// TouchLastBan stamps the list with the time of its most recent cross-ban.
func (l *Lists) TouchLastBan(ctx context.Context, listID uuid.UUID) error {
	return l.store.SetLastBan(ctx, listID, time.Now())
}

func (l *Lists) requireOwned(ctx context.Context, guildID string, listID uuid.UUID) (List, error) {
	existing, errGet := l.store.GetList(ctx, listID)
	if errGet != nil {
		if errors.Is(errGet, database.ErrNoResult) {
			return List{}, ErrUnknownList
		}

		return List{}, errGet
	}

	if !existing.Owned(guildID) {
		return List{}, ErrUnknownList
	}

	return existing, nil
}

// requireAccessible checks that the bot can actually reach the target guild,
// caching successful probes so repeat invites skip the round trip.
func (l *Lists) requireAccessible(ctx context.Context, guildID string) error {
	known, errKnown := l.store.IsInvitedGuild(ctx, guildID)
	if errKnown != nil {
		return errKnown
	}

	if known {
		return nil
	}

	if _, errProbe := l.prober.GuildName(ctx, guildID); errProbe != nil {
		return ErrInaccessibleGuild
	}

	return l.store.MarkInvitedGuild(ctx, guildID)
}
