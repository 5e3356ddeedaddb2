// Package config wires the cockatriced server's command-line flags and
// COCKATRICED_* environment overrides, grounded on the cobra/pflag/viper
// stack Seednode-partybox uses for its own server config.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const releaseVersion = "0.1.0"

// Config holds every flag/env-overridable knob the server needs at
// startup. RunE below validates it and hands it to RunServer, which
// unpacks it into plain values for the packages it wires.
type Config struct {
	bind            string
	port            int
	deckDir         string
	maxGamesPerRoom int
	chatHistorySize int
	verbose         bool

	// RunServer is invoked once flags are parsed and validated. Set by
	// the caller (cmd/cockatriced) so config stays free of an import on
	// the server package.
	RunServer func(cfg *Config) error
}

func (c *Config) Bind() string         { return c.bind }
func (c *Config) Port() int            { return c.port }
func (c *Config) DeckDir() string      { return c.deckDir }
func (c *Config) MaxGamesPerRoom() int { return c.maxGamesPerRoom }
func (c *Config) ChatHistorySize() int { return c.chatHistorySize }
func (c *Config) Verbose() bool        { return c.verbose }

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.deckDir == "" {
		return errors.New("--deck-dir must not be empty")
	}
	if c.maxGamesPerRoom < 0 {
		return errors.New("--max-games-per-room must not be negative")
	}
	if c.chatHistorySize < 0 {
		return errors.New("--chat-history-size must not be negative")
	}
	return nil
}

// NewCommand builds the root cobra command. run is invoked with a
// validated Config once flags/env vars have been parsed.
func NewCommand(run func(cfg *Config) error) *cobra.Command {
	cfg := &Config{RunServer: run}

	v := viper.New()
	v.SetEnvPrefix("COCKATRICED")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "cockatriced",
		Short:         "Server for networked multiplayer card-table games.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return cfg.RunServer(cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: COCKATRICED_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 4747, "port to listen on (env: COCKATRICED_PORT)")
	fs.StringVar(&cfg.deckDir, "deck-dir", "./decks", "directory decks are persisted under (env: COCKATRICED_DECK_DIR)")
	fs.IntVar(&cfg.maxGamesPerRoom, "max-games-per-room", 0, "maximum simultaneously open games, 0 for unbounded (env: COCKATRICED_MAX_GAMES_PER_ROOM)")
	fs.IntVar(&cfg.chatHistorySize, "chat-history-size", 50, "recent chat messages replayed to a new joiner per channel (env: COCKATRICED_CHAT_HISTORY_SIZE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: COCKATRICED_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("cockatriced v{{.Version}}\n")
	cmd.SilenceUsage = true

	return cmd
}
