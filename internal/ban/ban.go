// Package ban implements cross-ban execution: banning a user locally, then
// fanning the ban out to every other guild paired with the chosen list.
package ban

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/crossban/xban/internal/list"
	"github.com/crossban/xban/internal/log"
	"github.com/crossban/xban/internal/metrics"
	"github.com/crossban/xban/pkg/stringutil"
	"github.com/dustin/go-humanize"
	"github.com/gofrs/uuid/v5"
)

var (
	ErrInvalidUserID = errors.New("Invalid user ID.")                          //nolint:staticcheck
	ErrSelfBan       = errors.New("Banning yourself is not allowed.")          //nolint:staticcheck
	ErrBotUser       = errors.New("Banning bots is not allowed.")              //nolint:staticcheck
	ErrUserLookup    = errors.New("Failed to fetch user, does that user exist?") //nolint:staticcheck
)

var reSnowflake = regexp.MustCompile(`^\d{17,20}$`)

// Audit log reasons are capped by discord.
const maxReasonLen = 512

// Banner is the slice of the REST client the orchestrator needs.
type Banner interface {
	Ban(ctx context.Context, guildID string, userID string, deleteMessageSeconds int, reason string) *BanError
	User(ctx context.Context, userID string) (Target, error)
}

// ListProvider resolves list access and membership for the fan-out.
type ListProvider interface {
	Access(ctx context.Context, guildID string, listID uuid.UUID) (list.List, error)
	Members(ctx context.Context, listID uuid.UUID) ([]list.Member, error)
	TouchLastBan(ctx context.Context, listID uuid.UUID) error
}

// Opts are the inputs to a single cross-ban.
type Opts struct {
	GuildID              string
	CallerID             string
	ListID               uuid.UUID
	UserID               string
	Reason               string
	DeleteMessageSeconds int
}

// Failure records one remote guild the ban did not land in.
type Failure struct {
	GuildID   string
	GuildName string
	Err       *BanError
}

// Report is the outcome of a cross-ban. When Local is set the ban failed in
// the invoking guild and nothing else was attempted.
type Report struct {
	Username string
	ListName string
	Total    int
	Banned   int
	Local    *BanError
	Failures []Failure
}

// Message renders the report the way it is shown to the moderator.
func (r Report) Message() string {
	if r.Local != nil {
		return fmt.Sprintf("Failed to ban %s from this guild: %s", r.Username, r.Local.String())
	}

	if len(r.Failures) > 0 {
		var builder strings.Builder

		builder.WriteString(fmt.Sprintf("Banned %s in %s guild(s), but could not ban in %s guild(s).\n\n",
			r.Username, humanize.Comma(int64(r.Banned)), humanize.Comma(int64(len(r.Failures)))))

		for i, failure := range r.Failures {
			if i > 0 {
				builder.WriteString("\n")
			}

			builder.WriteString(fmt.Sprintf("%s: %s", failure.GuildName, failure.Err.String()))
		}

		return builder.String()
	}

	return fmt.Sprintf("Banned %s across %s guilds.", r.Username, humanize.Comma(int64(r.Total)))
}

// Ok is true when the ban landed everywhere.
func (r Report) Ok() bool {
	return r.Local == nil && len(r.Failures) == 0
}

type Bans struct {
	client Banner
	lists  ListProvider
}

func NewBans(client Banner, lists ListProvider) *Bans {
	return &Bans{client: client, lists: lists}
}

// Execute runs a full cross-ban. The ban is attempted in the invoking guild
// first and the fan-out is skipped entirely when that fails, so a moderator
// can never ban someone remotely that they could not ban at home. Remote
// failures do not stop the fan-out, they are collected into the report.
func (b *Bans) Execute(ctx context.Context, opts Opts) (Report, error) {
	if !reSnowflake.MatchString(opts.UserID) {
		return Report{}, ErrInvalidUserID
	}

	if opts.UserID == opts.CallerID {
		return Report{}, ErrSelfBan
	}

	banList, errAccess := b.lists.Access(ctx, opts.GuildID, opts.ListID)
	if errAccess != nil {
		return Report{}, errAccess
	}

	target, errTarget := b.client.User(ctx, opts.UserID)
	if errTarget != nil {
		return Report{}, ErrUserLookup
	}

	if target.Bot {
		return Report{}, ErrBotUser
	}

	members, errMembers := b.lists.Members(ctx, opts.ListID)
	if errMembers != nil {
		return Report{}, errMembers
	}

	reason := banReason(opts.CallerID, opts.GuildID, banList.ListName, opts.Reason)
	report := Report{Username: target.Tag(), ListName: banList.ListName, Total: len(members)}

	metrics.CrossBans.Inc()

	if localErr := b.client.Ban(ctx, opts.GuildID, opts.UserID, opts.DeleteMessageSeconds, reason); localErr != nil {
		slog.Warn("Local ban failed, skipping fan-out",
			slog.String("guild_id", opts.GuildID), slog.String("user_id", opts.UserID),
			slog.String("error", localErr.String()))

		metrics.CrossBanFailures.Inc()

		report.Local = localErr

		return report, nil
	}

	report.Banned = 1

	for _, member := range members {
		if member.GuildID == opts.GuildID {
			continue
		}

		if remoteErr := b.client.Ban(ctx, member.GuildID, opts.UserID, opts.DeleteMessageSeconds, reason); remoteErr != nil {
			metrics.CrossBanFailures.Inc()

			report.Failures = append(report.Failures, Failure{
				GuildID:   member.GuildID,
				GuildName: member.GuildName,
				Err:       remoteErr,
			})

			continue
		}

		report.Banned++
	}

	if errTouch := b.lists.TouchLastBan(ctx, opts.ListID); errTouch != nil {
		slog.Error("Failed to update last ban time",
			slog.String("list_id", opts.ListID.String()), log.ErrAttr(errTouch))
	}

	slog.Info("Cross-ban executed",
		slog.String("list", banList.ListName), slog.String("user_id", opts.UserID),
		slog.Int("banned", report.Banned), slog.Int("failed", len(report.Failures)))

	return report, nil
}

// banReason builds the audit log reason, tagging the ban with enough context
// for remote moderators to trace it back. Control characters are stripped
// since discord rejects them in the audit log header.
func banReason(callerID string, guildID string, listName string, reason string) string {
	full := strings.TrimSpace(fmt.Sprintf("[ crossban by %s in guild %s in list %s ] %s",
		callerID, guildID, listName, reason))

	return stringutil.Truncate(stringutil.ScrubPrintable(full), maxReasonLen)
}
