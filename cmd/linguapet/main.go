package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/linguapet/internal/logging"
	"github.com/hrygo/linguapet/internal/profile"
	"github.com/hrygo/linguapet/internal/version"
	"github.com/hrygo/linguapet/plugin/chat_apps/channels"
	"github.com/hrygo/linguapet/plugin/chat_apps/channels/telegram"
	"github.com/hrygo/linguapet/server"
	"github.com/hrygo/linguapet/store"
)

var (
	rootCmd = &cobra.Command{
		Use:   "linguapet",
		Short: `A local language-learning pet that chats, learns new phrases, and keeps notes.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Systemd services get their environment from the unit file.
			if !isRunningAsSystemdService() {
				_ = godotenv.Load()
			}
			slog.SetDefault(logging.New(viper.GetString("mode"), os.Stderr))
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
)

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 28090)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver (sqlite, postgres, memory)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().String("pet-name", "", "name the pet answers to")
	rootCmd.PersistentFlags().String("favorite-topic", "", "topic the pet suggests practicing")
	rootCmd.PersistentFlags().String("rules", "", "YAML file with extra fallback rules")
	rootCmd.PersistentFlags().Int64("seed", 0, "random seed for fallback replies, 0 for time-based")
	rootCmd.Flags().String("addr", "", "address of server")
	rootCmd.Flags().Int("port", 28090, "port of server")
	rootCmd.Flags().Float64("rate-limit", 10, "requests per second per client, 0 disables limiting")
	rootCmd.Flags().String("telegram-token", "", "Telegram bot token, enables the Telegram channel")

	for _, name := range []string{"mode", "data", "driver", "dsn", "pet-name", "favorite-topic", "rules", "seed"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
	for _, name := range []string{"addr", "port", "rate-limit", "telegram-token"} {
		if err := viper.BindPFlag(name, rootCmd.Flags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("linguapet")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd.Version = version.String()
	rootCmd.AddCommand(chatCmd, noteCmd, dumpCmd, versionCmd)
}

// loadProfile builds and validates the instance profile from flags and env.
func loadProfile() (*profile.Profile, error) {
	instanceProfile := &profile.Profile{
		Mode:             viper.GetString("mode"),
		Addr:             viper.GetString("addr"),
		Port:             viper.GetInt("port"),
		RateLimit:        viper.GetFloat64("rate-limit"),
		Data:             viper.GetString("data"),
		Driver:           viper.GetString("driver"),
		DSN:              viper.GetString("dsn"),
		PetName:          viper.GetString("pet-name"),
		FavoriteTopic:    viper.GetString("favorite-topic"),
		RulesFile:        viper.GetString("rules"),
		Seed:             viper.GetInt64("seed"),
		TelegramBotToken: viper.GetString("telegram-token"),
		Version:          version.GetCurrentVersion(viper.GetString("mode")),
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, err
	}
	return instanceProfile, nil
}

func serve(parent context.Context) error {
	instanceProfile, err := loadProfile()
	if err != nil {
		return err
	}

	// Trigger graceful shutdown on SIGINT or SIGTERM.
	ctx, stop := signal.NotifyContext(parent, terminationSignals...)
	defer stop()

	app, err := newApp(ctx, instanceProfile)
	if err != nil {
		printDatabaseError(err, instanceProfile)
		return err
	}
	defer app.Close()

	s, err := server.NewServer(ctx, instanceProfile, app.engine, app.exporter.Handler())
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.Start(gctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.Shutdown(context.Background())
		return nil
	})

	if instanceProfile.IsTelegramEnabled() {
		channel, err := telegram.NewTelegramChannel(&telegram.TelegramConfig{
			BotToken: instanceProfile.TelegramBotToken,
			Debug:    instanceProfile.Mode == "dev",
		})
		if err != nil {
			slog.Error("telegram channel disabled", "error", err)
		} else {
			dispatcher := channels.NewDispatcher(app.engine, instanceProfile.PetName, instanceProfile.FavoriteTopic, slog.Default())
			slog.Info("chat channel enabled", "platform", channel.Name())
			g.Go(func() error {
				defer channel.Close()
				return channel.Run(gctx, dispatcher.Handle)
			})
		}
	}

	printGreetings(instanceProfile)

	if err := g.Wait(); err != nil {
		slog.Error("server stopped with error", "error", err)
		return err
	}
	return nil
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("LinguaPet %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Pet: %s (favorite topic: %s)\n", profile.PetName, profile.FavoriteTopic)
	fmt.Printf("Database driver: %s\n", profile.Driver)
	fmt.Printf("Mode: %s\n", profile.Mode)
	if profile.IsTelegramEnabled() {
		fmt.Println("Telegram channel: enabled")
	}

	if len(profile.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", profile.Port)
		fmt.Printf("Chat at: http://localhost:%d/api/v1/brain/reply\n", profile.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", profile.Addr, profile.Port)
		fmt.Printf("Chat at: http://%s:%d/api/v1/brain/reply\n", profile.Addr, profile.Port)
	}
}

// isRunningAsSystemdService detects if the process is running under systemd
func isRunningAsSystemdService() bool {
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

// printDatabaseError provides user-friendly error messages for database connection issues
func printDatabaseError(err error, profile *profile.Profile) {
	fmt.Fprintln(os.Stderr, "\nFailed to open the pet's memory")

	errMsg := err.Error()
	switch {
	case errors.Is(err, store.ErrNewerSchema):
		fmt.Fprintln(os.Stderr, "The database was written by a newer LinguaPet release.")
		fmt.Fprintln(os.Stderr, "Upgrade the binary, or point --data at a different directory.")
	case strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host"):
		fmt.Fprintln(os.Stderr, "PostgreSQL is not reachable.")
		fmt.Fprintln(os.Stderr, "Use SQLite instead: linguapet --driver=sqlite --data=./data")
	case strings.Contains(errMsg, "SSL is not enabled") || strings.Contains(errMsg, "sslmode"):
		fmt.Fprintln(os.Stderr, "Add ?sslmode=disable to your DSN.")
	case strings.Contains(errMsg, "password authentication failed"):
		fmt.Fprintln(os.Stderr, "Check the credentials in LINGUAPET_DSN or your .env file.")
	case strings.Contains(errMsg, "rules file"):
		fmt.Fprintf(os.Stderr, "Fix or remove the rules file %s.\n", profile.RulesFile)
	default:
		fmt.Fprintln(os.Stderr, "Error:", errMsg)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
