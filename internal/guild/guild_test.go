package guild_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crossban/xban/internal/database"
	"github.com/crossban/xban/internal/guild"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	guilds map[string]guild.Guild
}

func newFakeStore() *fakeStore {
	return &fakeStore{guilds: map[string]guild.Guild{}}
}

func (s *fakeStore) GetGuild(_ context.Context, guildID string) (guild.Guild, error) {
	existing, found := s.guilds[guildID]
	if !found {
		return guild.Guild{}, database.ErrNoResult
	}

	return existing, nil
}

func (s *fakeStore) SaveGuild(_ context.Context, g *guild.Guild) error {
	s.guilds[g.GuildID] = *g

	return nil
}

type fakeProber struct {
	names map[string]string
	err   error
}

func (p *fakeProber) GuildName(_ context.Context, guildID string) (string, error) {
	if p.err != nil {
		return "", p.err
	}

	return p.names[guildID], nil
}

func TestEnable(t *testing.T) {
	store := newFakeStore()
	guilds := guild.NewGuilds(store, &fakeProber{names: map[string]string{"100": "Test Guild"}})

	enabled, errEnable := guilds.Enable(context.Background(), "100")
	require.NoError(t, errEnable)
	require.True(t, enabled.Enabled)
	require.Equal(t, "Test Guild", enabled.GuildName)

	_, errAgain := guilds.Enable(context.Background(), "100")
	require.ErrorIs(t, errAgain, guild.ErrAlreadyEnabled)
}

func TestEnableProbeFailure(t *testing.T) {
	store := newFakeStore()
	guilds := guild.NewGuilds(store, &fakeProber{err: errors.New("unknown guild")})

	_, errEnable := guilds.Enable(context.Background(), "100")
	require.ErrorIs(t, errEnable, guild.ErrGuildLookup)
	require.Empty(t, store.guilds)
}

func TestDisable(t *testing.T) {
	store := newFakeStore()
	guilds := guild.NewGuilds(store, &fakeProber{names: map[string]string{"100": "Test Guild"}})

	require.ErrorIs(t, guilds.Disable(context.Background(), "100"), guild.ErrAlreadyDisabled)

	_, errEnable := guilds.Enable(context.Background(), "100")
	require.NoError(t, errEnable)

	require.NoError(t, guilds.Disable(context.Background(), "100"))
	require.ErrorIs(t, guilds.Disable(context.Background(), "100"), guild.ErrAlreadyDisabled)

	// Row survives the opt-out.
	saved, found := store.guilds["100"]
	require.True(t, found)
	require.False(t, saved.Enabled)
}

func TestReEnableKeepsCreatedOn(t *testing.T) {
	store := newFakeStore()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.guilds["100"] = guild.Guild{GuildID: "100", GuildName: "Old Name", Enabled: false, CreatedOn: created, UpdatedOn: created}

	guilds := guild.NewGuilds(store, &fakeProber{names: map[string]string{"100": "New Name"}})

	enabled, errEnable := guilds.Enable(context.Background(), "100")
	require.NoError(t, errEnable)
	require.Equal(t, created, enabled.CreatedOn)
	require.Equal(t, "New Name", enabled.GuildName)
}

func TestRequireEnabled(t *testing.T) {
	store := newFakeStore()
	guilds := guild.NewGuilds(store, &fakeProber{names: map[string]string{"100": "Test Guild"}})

	_, errMissing := guilds.RequireEnabled(context.Background(), "100")
	require.ErrorIs(t, errMissing, guild.ErrNotEnabled)

	_, errEnable := guilds.Enable(context.Background(), "100")
	require.NoError(t, errEnable)

	current, errRequire := guilds.RequireEnabled(context.Background(), "100")
	require.NoError(t, errRequire)
	require.Equal(t, "Test Guild", current.GuildName)

	require.NoError(t, guilds.Disable(context.Background(), "100"))

	_, errDisabled := guilds.RequireEnabled(context.Background(), "100")
	require.ErrorIs(t, errDisabled, guild.ErrNotEnabled)
}
