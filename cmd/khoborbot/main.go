// Command khoborbot is a Telegram bot that answers /search and /publisher
// commands with the latest Datanews headlines.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/khobor-bot/internal/bot"
	"github.com/Adda-Baaj/khobor-bot/internal/config"
	"github.com/Adda-Baaj/khobor-bot/internal/logger"
	"github.com/Adda-Baaj/khobor-bot/internal/session"
	"github.com/Adda-Baaj/khobor-bot/internal/telegram"
	"github.com/Adda-Baaj/khobor-bot/pkg/datanews"
	"github.com/Adda-Baaj/khobor-bot/pkg/httpclient"
	"github.com/Adda-Baaj/khobor-bot/pkg/publishers"
)

const usageLine = "Usage: khoborbot <api key> <telegram token>"

var errUsage = errors.New(usageLine)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "khoborbot [<api key> <telegram token>]",
		Short: "Telegram front end for Datanews headline search",
		Long: "khoborbot answers /search and /publisher commands with Datanews headlines.\n" +
			"The API key and bot token may also come from the config file, a .env file\n" +
			"or KHOBOR_DATANEWS_API_KEY and KHOBOR_TELEGRAM_TOKEN.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				fmt.Fprintln(stderr, usageLine)
				return errUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var creds config.Credentials
			if len(args) == 2 {
				creds = config.Credentials{APIKey: args[0], Token: args[1]}
			}

			cfg, err := config.Load(cfgFile, creds)
			if err != nil {
				fmt.Fprintln(stderr, err)
				if errors.Is(err, config.ErrMissingAPIKey) || errors.Is(err, config.ErrMissingToken) {
					fmt.Fprintln(stderr, usageLine)
				}
				return err
			}
			if err := run(cmd.Context(), cfg); err != nil {
				fmt.Fprintln(stderr, err)
				return err
			}
			return nil
		},
	}
	cmd.SetErr(stderr)
	cmd.Flags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintln(stderr, err)
		fmt.Fprintln(stderr, usageLine)
		return errUsage
	})
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	if err := telegram.InstallLogger(log); err != nil {
		return err
	}

	news := datanews.New(datanews.Config{
		APIKey:  cfg.Datanews.APIKey,
		BaseURL: cfg.Datanews.BaseURL,
		HTTP:    httpclient.NewRestyClient(cfg.Datanews.Timeout),
	})

	opts := []bot.Option{bot.WithLogger(log)}
	sinks, err := buildSinks(ctx, cfg.Publishers.File, log)
	if err != nil {
		log.ErrorObj("audit sinks unavailable", "startup_error", map[string]any{"error": err.Error()})
		return err
	}
	if sinks.Len() > 0 {
		opts = append(opts, bot.WithEvents(sinks))
	}
	router := bot.New(news, opts...)

	store, err := session.Open(cfg.Session.Path)
	if err != nil {
		log.ErrorObj("session store unavailable", "startup_error", map[string]any{"error": err.Error()})
		return err
	}
	defer store.Close()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.ErrorObj("telegram login failed", "startup_error", map[string]any{"error": err.Error()})
		return fmt.Errorf("telegram login: %w", err)
	}
	api.Debug = cfg.Telegram.Debug

	log.InfoObj("bot started", "startup", map[string]any{
		"bot_user": api.Self.UserName,
		"commands": router.Commands(),
		"sinks":    sinks.Len(),
		"session":  cfg.Session.Path,
	})

	return telegram.New(api, router, store, telegram.Options{
		PollTimeout: cfg.Telegram.PollTimeout,
		PollPause:   cfg.Telegram.PollPause,
		Log:         log,
	}).Run(ctx)
}

// buildSinks loads the optional publishers file. No file means no sinks.
func buildSinks(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(log), nil
	}

	reg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, err
	}
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), reg.Enabled(), log)
	if err != nil {
		return nil, err
	}
	return publishers.NewFanout(log, pubs...), nil
}
