package list

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/crossban/xban/internal/database"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// guild_list_pair declares no column defaults, so the insert has to supply
// created_on itself or the statement dies with a not-null violation.
const insertPairQuery = `INSERT INTO guild_list_pair (guild_id, list_id, created_on) VALUES ($1, $2, $3)`

type listRepository struct {
	db database.Database
}

func NewRepository(db database.Database) Store {
	return &listRepository{db: db}
}

func (r *listRepository) listBuilder() sq.SelectBuilder {
	return r.db.
		Builder().
		Select("l.list_id", "l.list_name", "l.owner_id", "g.guild_name", "l.creator_id", "l.created_on", "l.last_ban").
		From("list l").
		Join("guild g ON g.guild_id = l.owner_id")
}

func (r *listRepository) GetList(ctx context.Context, listID uuid.UUID) (List, error) {
	var l List

	row, errQuery := r.db.QueryRowBuilder(ctx, r.listBuilder().Where(sq.Eq{"l.list_id": listID}))
	if errQuery != nil {
		return l, database.DBErr(errQuery)
	}

	if errScan := row.Scan(&l.ListID, &l.ListName, &l.OwnerID, &l.OwnerName, &l.CreatorID, &l.CreatedOn, &l.LastBan); errScan != nil {
		return l, database.DBErr(errScan)
	}

	return l, nil
}

func (r *listRepository) ListsByScope(ctx context.Context, guildID string, scope Scope) ([]List, error) {
	builder := r.listBuilder().OrderBy("l.list_name")

	switch scope {
	case ScopeJoined:
		builder = builder.
			Join("guild_list_pair p ON p.list_id = l.list_id").
			Where(sq.Eq{"p.guild_id": guildID})
	case ScopeOwned:
		builder = builder.Where(sq.Eq{"l.owner_id": guildID})
	case ScopeInvited:
		builder = builder.
			Join("list_invite i ON i.list_id = l.list_id").
			Where(sq.Eq{"i.guild_id": guildID})
	case ScopeJoinedNotOwned:
		builder = builder.
			Join("guild_list_pair p ON p.list_id = l.list_id").
			Where(sq.And{sq.Eq{"p.guild_id": guildID}, sq.NotEq{"l.owner_id": guildID}})
	}

	rows, errQuery := r.db.QueryBuilder(ctx, builder)
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	var lists []List

	for rows.Next() {
		var l List
		if errScan := rows.Scan(&l.ListID, &l.ListName, &l.OwnerID, &l.OwnerName, &l.CreatorID, &l.CreatedOn, &l.LastBan); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		lists = append(lists, l)
	}

	return lists, nil
}

// CreateList inserts the list, the creator snapshot and the owner's own
// membership pair in one transaction.
func (r *listRepository) CreateList(ctx context.Context, newList *List, creator User) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		const upsertUser = `
			INSERT INTO ban_user (user_id, username, discriminator)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username, discriminator = EXCLUDED.discriminator`

		if _, errUser := tx.Exec(ctx, upsertUser, creator.UserID, creator.Username, creator.Discriminator); errUser != nil {
			return database.DBErr(errUser)
		}

		const insertList = `
			INSERT INTO list (list_name, owner_id, creator_id, created_on)
			VALUES ($1, $2, $3, $4)
			RETURNING list_id`

		if errInsert := tx.
			QueryRow(ctx, insertList, newList.ListName, newList.OwnerID, newList.CreatorID, newList.CreatedOn).
			Scan(&newList.ListID); errInsert != nil {
			return database.DBErr(errInsert)
		}

		if _, errPair := tx.Exec(ctx, insertPairQuery, newList.OwnerID, newList.ListID, newList.CreatedOn); errPair != nil {
			return database.DBErr(errPair)
		}

		return nil
	})
}

// DeleteList relies on ON DELETE CASCADE to drop the pairs and invites.
func (r *listRepository) DeleteList(ctx context.Context, listID uuid.UUID) error {
	query := r.db.
		Builder().
		Delete("list").
		Where(sq.Eq{"list_id": listID})

	return database.DBErr(r.db.ExecDeleteBuilder(ctx, query))
}

// ParticipatingCount counts distinct lists the guild is paired with or holds
// an open invite to.
func (r *listRepository) ParticipatingCount(ctx context.Context, guildID string) (int64, error) {
	const query = `
		SELECT COUNT(*) FROM (
			SELECT list_id FROM guild_list_pair WHERE guild_id = $1
			UNION
			SELECT list_id FROM list_invite WHERE guild_id = $1
		) participating`

	var count int64
	if errScan := r.db.QueryRow(ctx, query, guildID).Scan(&count); errScan != nil {
		return 0, database.DBErr(errScan)
	}

	return count, nil
}

// ParticipantCount counts members plus open invites on a list.
func (r *listRepository) ParticipantCount(ctx context.Context, listID uuid.UUID) (int64, error) {
	const query = `
		SELECT (SELECT COUNT(*) FROM guild_list_pair WHERE list_id = $1)
		     + (SELECT COUNT(*) FROM list_invite WHERE list_id = $1)`

	var count int64
	if errScan := r.db.QueryRow(ctx, query, listID).Scan(&count); errScan != nil {
		return 0, database.DBErr(errScan)
	}

	return count, nil
}

func (r *listRepository) HasPair(ctx context.Context, guildID string, listID uuid.UUID) (bool, error) {
	count, errCount := r.db.GetCount(ctx, r.db.
		Builder().
		Select("COUNT(*)").
		From("guild_list_pair").
		Where(sq.Eq{"guild_id": guildID, "list_id": listID}))
	if errCount != nil {
		return false, database.DBErr(errCount)
	}

	return count > 0, nil
}

func (r *listRepository) HasInvite(ctx context.Context, guildID string, listID uuid.UUID) (bool, error) {
	count, errCount := r.db.GetCount(ctx, r.db.
		Builder().
		Select("COUNT(*)").
		From("list_invite").
		Where(sq.Eq{"guild_id": guildID, "list_id": listID}))
	if errCount != nil {
		return false, database.DBErr(errCount)
	}

	return count > 0, nil
}

func (r *listRepository) CreateInvite(ctx context.Context, guildID string, listID uuid.UUID) error {
	query := r.db.
		Builder().
		Insert("list_invite").
		Columns("guild_id", "list_id", "created_on").
		Values(guildID, listID, time.Now())

	return database.DBErr(r.db.ExecInsertBuilder(ctx, query))
}

func (r *listRepository) DeleteInvite(ctx context.Context, guildID string, listID uuid.UUID) error {
	query := r.db.
		Builder().
		Delete("list_invite").
		Where(sq.Eq{"guild_id": guildID, "list_id": listID})

	return database.DBErr(r.db.ExecDeleteBuilder(ctx, query))
}

func (r *listRepository) DeletePair(ctx context.Context, guildID string, listID uuid.UUID) error {
	query := r.db.
		Builder().
		Delete("guild_list_pair").
		Where(sq.Eq{"guild_id": guildID, "list_id": listID})

	return database.DBErr(r.db.ExecDeleteBuilder(ctx, query))
}

// ConsumeInvite atomically swaps an invite row for a membership pair. A
// vanished invite surfaces as ErrNoResult so concurrent joins of the same
// invite cannot both succeed.
func (r *listRepository) ConsumeInvite(ctx context.Context, guildID string, listID uuid.UUID) error {
	return r.db.WrapTx(ctx, func(tx pgx.Tx) error {
		const deleteInvite = `DELETE FROM list_invite WHERE guild_id = $1 AND list_id = $2`

		tag, errDelete := tx.Exec(ctx, deleteInvite, guildID, listID)
		if errDelete != nil {
			return database.DBErr(errDelete)
		}

		if tag.RowsAffected() == 0 {
			return database.ErrNoResult
		}

		if _, errInsert := tx.Exec(ctx, insertPairQuery, guildID, listID, time.Now()); errInsert != nil {
			return database.DBErr(errInsert)
		}

		return nil
	})
}

func (r *listRepository) IsInvitedGuild(ctx context.Context, guildID string) (bool, error) {
	count, errCount := r.db.GetCount(ctx, r.db.
		Builder().
		Select("COUNT(*)").
		From("invited_guild").
		Where(sq.Eq{"guild_id": guildID}))
	if errCount != nil {
		return false, database.DBErr(errCount)
	}

	return count > 0, nil
}

func (r *listRepository) MarkInvitedGuild(ctx context.Context, guildID string) error {
	query := r.db.
		Builder().
		Insert("invited_guild").
		Columns("guild_id", "created_on").
		Values(guildID, time.Now()).
		Suffix("ON CONFLICT (guild_id) DO NOTHING")

	return database.DBErr(r.db.ExecInsertBuilder(ctx, query))
}

func (r *listRepository) ListMembers(ctx context.Context, listID uuid.UUID) ([]Member, error) {
	builder := r.db.
		Builder().
		Select("g.guild_id", "g.guild_name").
		From("guild g").
		Join("guild_list_pair p ON p.guild_id = g.guild_id").
		Where(sq.Eq{"p.list_id": listID}).
		OrderBy("g.guild_id")

	rows, errQuery := r.db.QueryBuilder(ctx, builder)
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	var members []Member

	for rows.Next() {
		var member Member
		if errScan := rows.Scan(&member.GuildID, &member.GuildName); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		members = append(members, member)
	}

	return members, nil
}

func (r *listRepository) ListInvites(ctx context.Context, listID uuid.UUID) ([]string, error) {
	builder := r.db.
		Builder().
		Select("guild_id").
		From("list_invite").
		Where(sq.Eq{"list_id": listID}).
		OrderBy("guild_id")

	rows, errQuery := r.db.QueryBuilder(ctx, builder)
	if errQuery != nil {
		return nil, database.DBErr(errQuery)
	}

	defer rows.Close()

	var guildIDs []string

	for rows.Next() {
		var guildID string
		if errScan := rows.Scan(&guildID); errScan != nil {
			return nil, database.DBErr(errScan)
		}

		guildIDs = append(guildIDs, guildID)
	}

	return guildIDs, nil
}

func (r *listRepository) GetUser(ctx context.Context, userID string) (User, error) {
	var user User

	row, errQuery := r.db.QueryRowBuilder(ctx, r.db.
		Builder().
		Select("user_id", "username", "discriminator").
		From("ban_user").
		Where(sq.Eq{"user_id": userID}))
	if errQuery != nil {
		return user, database.DBErr(errQuery)
	}

	if errScan := row.Scan(&user.UserID, &user.Username, &user.Discriminator); errScan != nil {
		return user, database.DBErr(errScan)
	}

	return user, nil
}

func (r *listRepository) SetLastBan(ctx context.Context, listID uuid.UUID, when time.Time) error {
	query := r.db.
		Builder().
		Update("list").
		Set("last_ban", when).
		Where(sq.Eq{"list_id": listID})

	return database.DBErr(r.db.ExecUpdateBuilder(ctx, query))
}
