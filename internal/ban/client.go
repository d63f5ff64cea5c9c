package ban

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// BanError captures a failed ban request in a renderable form. Message and
// Code come from discord's structured error body when one was returned.
type BanError struct {
	HTTPCode int
	Code     int
	Message  string
}

func (e *BanError) String() string {
	if e.Message == "" {
		return fmt.Sprintf("Request failed with %d", e.HTTPCode)
	}

	if e.Code == 0 {
		return e.Message
	}

	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// Target is the resolved discord user a ban is aimed at.
type Target struct {
	UserID        string
	Username      string
	Discriminator string
	Bot           bool
}

func (t Target) Tag() string {
	if t.Discriminator == "" || t.Discriminator == "0" {
		return t.Username
	}

	return t.Username + "#" + t.Discriminator
}

// Client issues the REST calls backing cross-bans over the shared gateway
// session. Bans go through a raw request so the audit log reason and message
// deletion window can both be set.
type Client struct {
	session *discordgo.Session
}

func NewClient(session *discordgo.Session) *Client {
	return &Client{session: session}
}

// Ban bans userID from guildID. A nil return means the ban landed. Failures
// never come back as an error since the caller aggregates them per guild
// rather than aborting.
func (c *Client) Ban(ctx context.Context, guildID string, userID string, deleteMessageSeconds int, reason string) *BanError {
	data := struct {
		DeleteMessageSeconds int `json:"delete_message_seconds"`
	}{DeleteMessageSeconds: deleteMessageSeconds}

	options := []discordgo.RequestOption{discordgo.WithContext(ctx)}
	if reason != "" {
		options = append(options, discordgo.WithAuditLogReason(reason))
	}

	_, errRequest := c.session.RequestWithBucketID("PUT",
		discordgo.EndpointGuildBan(guildID, userID),
		data,
		discordgo.EndpointGuildBan(guildID, ""),
		options...)
	if errRequest == nil {
		return nil
	}

	var restErr *discordgo.RESTError
	if errors.As(errRequest, &restErr) {
		banErr := &BanError{}
		if restErr.Response != nil {
			banErr.HTTPCode = restErr.Response.StatusCode
		}

		if restErr.Message != nil {
			banErr.Code = int(restErr.Message.Code)
			banErr.Message = restErr.Message.Message
		}

		return banErr
	}

	return &BanError{Message: errRequest.Error()}
}

// User resolves the ban target by ID.
func (c *Client) User(ctx context.Context, userID string) (Target, error) {
	user, errUser := c.session.User(userID, discordgo.WithContext(ctx))
	if errUser != nil {
		return Target{}, errUser
	}

	return Target{
		UserID:        user.ID,
		Username:      user.Username,
		Discriminator: user.Discriminator,
		Bot:           user.Bot,
	}, nil
}

// GuildName resolves a guild's name, probing through the REST API rather
// than gateway state so guilds the bot shares no channels with still work.
func (c *Client) GuildName(ctx context.Context, guildID string) (string, error) {
	resolved, errGuild := c.session.Guild(guildID, discordgo.WithContext(ctx))
	if errGuild != nil {
		return "", errGuild
	}

	return resolved.Name, nil
}
