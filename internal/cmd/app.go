package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/crossban/xban/internal/ban"
	"github.com/crossban/xban/internal/config"
	"github.com/crossban/xban/internal/database"
	"github.com/crossban/xban/internal/discord"
	"github.com/crossban/xban/internal/guild"
	"github.com/crossban/xban/internal/httphelper"
	"github.com/crossban/xban/internal/list"
	"github.com/crossban/xban/internal/log"
	"github.com/getsentry/sentry-go"
)

//nolint:gochecknoglobals
var (
	// BuildVersion holds the current git revision, as of build time.
	BuildVersion = "master"
	BuildCommit  = ""
	BuildDate    = ""
	SentryDSN    = ""
)

type XBan struct {
	staticConfig config.Static
	database     database.Database
	bot          *discord.Bot
	guilds       *guild.Guilds
	lists        *list.Lists
	bans         *ban.Bans
	httpServer   *http.Server
	sentry       *sentry.Client
	logCloser    func()
}

func NewXBan() (*XBan, error) {
	staticConfig, errStatic := config.ReadStatic(cfgFile)
	if errStatic != nil {
		slog.Error("Failed to read static config", log.ErrAttr(errStatic))

		return nil, errStatic
	}

	return &XBan{staticConfig: staticConfig}, nil
}

func (x *XBan) Init(ctx context.Context) error {
	conf := x.staticConfig

	// Normally set by build time flags, but can be overwritten by the env
	// var or the config file.
	if SentryDSN == "" {
		if value, found := os.LookupEnv("SENTRY_DSN"); found && value != "" {
			SentryDSN = value
		} else {
			SentryDSN = conf.SentryDSN
		}
	}

	x.setupSentry()

	x.logCloser = log.MustCreateLogger(ctx, conf.LogFile, conf.LogLevel, SentryDSN != "", BuildVersion)

	slog.Info("Starting xban...",
		slog.String("version", BuildVersion),
		slog.String("commit", BuildCommit),
		slog.String("date", BuildDate))

	dbConn := database.New(conf.DatabaseDSN, conf.DatabaseAutoMigrate, conf.DatabaseLogQueries)
	if errConnect := dbConn.Connect(ctx); errConnect != nil {
		slog.Error("Cannot initialize database", log.ErrAttr(errConnect))

		return errConnect
	}

	x.database = dbConn

	bot, errBot := discord.New(conf.DiscordAppID, conf.DiscordBotToken)
	if errBot != nil {
		return errBot
	}

	x.bot = bot

	client := ban.NewClient(bot.Session())

	x.guilds = guild.NewGuilds(guild.NewRepository(x.database), client)
	x.lists = list.NewLists(list.NewRepository(x.database), client, list.Limits{
		MaxListParticipants: conf.MaxListParticipants,
		MaxGuildLists:       conf.MaxGuildLists,
	})
	x.bans = ban.NewBans(client, x.lists)

	if errGuild := guild.RegisterDiscordCommands(x.bot, x.guilds); errGuild != nil {
		return errGuild
	}

	if errList := list.RegisterDiscordCommands(x.bot, x.lists, x.guilds); errList != nil {
		return errList
	}

	if errBan := ban.RegisterDiscordCommands(x.bot, x.bans, x.lists, x.guilds); errBan != nil {
		return errBan
	}

	x.httpServer = httphelper.New(conf, x.database, BuildVersion)

	return nil
}

// Serve opens the gateway connection and the operational HTTP listener, then
// blocks until ctx is cancelled.
func (x *XBan) Serve(ctx context.Context) error {
	if errStart := x.bot.Start(); errStart != nil {
		return errStart
	}

	go func() {
		slog.Info("Starting HTTP server", slog.String("addr", x.httpServer.Addr))

		if errServe := x.httpServer.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			slog.Error("HTTP server returned error", log.ErrAttr(errServe))
		}
	}()

	<-ctx.Done()

	return nil
}

// Close tears everything down in reverse start order. The signal context is
// already cancelled by the time this runs, so shutdown gets its own deadline.
func (x *XBan) Close() {
	if x.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()

		if errShutdown := x.httpServer.Shutdown(shutdownCtx); errShutdown != nil {
			slog.Error("Failed to shutdown HTTP server cleanly", log.ErrAttr(errShutdown))
		}
	}

	if x.bot != nil {
		x.bot.Shutdown()
	}

	if x.database != nil {
		if errClose := x.database.Close(); errClose != nil {
			slog.Error("Failed to close database", log.ErrAttr(errClose))
		}
	}

	if x.sentry != nil {
		x.sentry.Flush(time.Second * 5)
	}

	if x.logCloser != nil {
		x.logCloser()
	}
}

func (x *XBan) setupSentry() {
	if SentryDSN == "" {
		slog.Info("Sentry.io support is disabled. To enable at runtime, set SENTRY_DSN.")

		return
	}

	sentryClient, errSentry := log.NewSentryClient(SentryDSN, true, 0.25, BuildVersion)
	if errSentry != nil {
		slog.Error("Failed to setup sentry client")

		return
	}

	x.sentry = sentryClient
}
