package guild

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/crossban/xban/internal/database"
)

type guildRepository struct {
	db database.Database
}

func NewRepository(db database.Database) Store {
	return &guildRepository{db: db}
}

func (r *guildRepository) GetGuild(ctx context.Context, guildID string) (Guild, error) {
	var g Guild

	query := r.db.
		Builder().
		Select("guild_id", "guild_name", "enabled", "created_on", "updated_on").
		From("guild").
		Where(sq.Eq{"guild_id": guildID})

	row, errQuery := r.db.QueryRowBuilder(ctx, query)
	if errQuery != nil {
		return g, database.DBErr(errQuery)
	}

	if errScan := row.Scan(&g.GuildID, &g.GuildName, &g.Enabled, &g.CreatedOn, &g.UpdatedOn); errScan != nil {
		return g, database.DBErr(errScan)
	}

	return g, nil
}

func (r *guildRepository) SaveGuild(ctx context.Context, guild *Guild) error {
	query := r.db.
		Builder().
		Insert("guild").
		Columns("guild_id", "guild_name", "enabled", "created_on", "updated_on").
		Values(guild.GuildID, guild.GuildName, guild.Enabled, guild.CreatedOn, guild.UpdatedOn).
		Suffix(`ON CONFLICT (guild_id) DO UPDATE SET
			guild_name = EXCLUDED.guild_name,
			enabled = EXCLUDED.enabled,
			updated_on = EXCLUDED.updated_on`)

	return database.DBErr(r.db.ExecInsertBuilder(ctx, query))
}
