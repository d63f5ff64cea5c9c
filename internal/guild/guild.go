// Package guild tracks which guilds have opted in to cross-banning.
package guild

import (
	"context"
	"errors"
	"time"

	"github.com/crossban/xban/internal/database"
)

var (
	ErrAlreadyEnabled  = errors.New("this guild already has cross-banning enabled")
	ErrAlreadyDisabled = errors.New("this guild already has cross-banning disabled")
	ErrNotEnabled      = errors.New("cross-banning is not enabled in this guild, run /xbot enable first")
	ErrGuildLookup     = errors.New("failed to look up the guild")
)

type Guild struct {
	GuildID   string
	GuildName string
	Enabled   bool
	CreatedOn time.Time
	UpdatedOn time.Time
}

// Store is the persistence surface the usecase needs.
type Store interface {
	GetGuild(ctx context.Context, guildID string) (Guild, error)
	SaveGuild(ctx context.Context, guild *Guild) error
}

// Prober resolves a guild's current display name from discord. Names are
// snapshotted at enable time so lists can show them without extra lookups.
type Prober interface {
	GuildName(ctx context.Context, guildID string) (string, error)
}

type Guilds struct {
	store  Store
	prober Prober
}

func NewGuilds(store Store, prober Prober) *Guilds {
	return &Guilds{store: store, prober: prober}
}

// Enabled reports whether the guild currently has cross-banning turned on.
func (g *Guilds) Enabled(ctx context.Context, guildID string) (bool, error) {
	existing, errGet := g.store.GetGuild(ctx, guildID)
	if errGet != nil {
		if errors.Is(errGet, database.ErrNoResult) {
			return false, nil
		}

		return false, errGet
	}

	return existing.Enabled, nil
}

// RequireEnabled loads the guild, failing with ErrNotEnabled when the guild
// has never opted in or has since disabled cross-banning.
func (g *Guilds) RequireEnabled(ctx context.Context, guildID string) (Guild, error) {
	existing, errGet := g.store.GetGuild(ctx, guildID)
	if errGet != nil {
		if errors.Is(errGet, database.ErrNoResult) {
			return Guild{}, ErrNotEnabled
		}

		return Guild{}, errGet
	}

	if !existing.Enabled {
		return Guild{}, ErrNotEnabled
	}

	return existing, nil
}

// Enable opts the guild in to cross-banning, refreshing the stored guild
// name from discord. The guild row is upserted since the guild may have
// previously enabled and disabled the bot.
func (g *Guilds) Enable(ctx context.Context, guildID string) (Guild, error) {
	existing, errGet := g.store.GetGuild(ctx, guildID)
	if errGet != nil && !errors.Is(errGet, database.ErrNoResult) {
		return Guild{}, errGet
	}

	if errGet == nil && existing.Enabled {
		return Guild{}, ErrAlreadyEnabled
	}

	name, errName := g.prober.GuildName(ctx, guildID)
	if errName != nil {
		return Guild{}, errors.Join(errName, ErrGuildLookup)
	}

	now := time.Now()

	updated := Guild{
		GuildID:   guildID,
		GuildName: name,
		Enabled:   true,
		CreatedOn: now,
		UpdatedOn: now,
	}

	if errGet == nil {
		updated.CreatedOn = existing.CreatedOn
	}

	if errSave := g.store.SaveGuild(ctx, &updated); errSave != nil {
		return Guild{}, errSave
	}

	return updated, nil
}

// Disable turns cross-banning off. The guild row is kept so list ownership
// and pairings survive a temporary opt-out.
func (g *Guilds) Disable(ctx context.Context, guildID string) error {
	existing, errGet := g.store.GetGuild(ctx, guildID)
	if errGet != nil {
		if errors.Is(errGet, database.ErrNoResult) {
			return ErrAlreadyDisabled
		}

		return errGet
	}

	if !existing.Enabled {
		return ErrAlreadyDisabled
	}

	existing.Enabled = false
	existing.UpdatedOn = time.Now()

	return g.store.SaveGuild(ctx, &existing)
}
