package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	allowedOrigins []string
	bind           string
	logFile        string
	pongWait       time.Duration
	port           int
	publicURL      string
	sendBuffer     int
	spawnMin       int
	spawnSpan      int
	staticDir      string
	verbose        bool
	version        bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sendBuffer < 1 {
		return fmt.Errorf("invalid send buffer (must be positive): %d", c.sendBuffer)
	}
	if c.spawnSpan < 1 {
		return fmt.Errorf("invalid spawn span (must be positive): %d", c.spawnSpan)
	}
	if c.pongWait < time.Second {
		return errors.New("pong wait must be at least 1s")
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("PRESENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "presencehub",
		Short:         "Relay server for a browser-based multiplayer presence demo.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origins", nil, "CORS origins for the admin endpoints, default any (env: PRESENCE_ALLOWED_ORIGINS)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: PRESENCE_BIND)")
	fs.StringVar(&cfg.logFile, "log-file", "", "rolling log file, stderr if empty (env: PRESENCE_LOG_FILE)")
	fs.DurationVar(&cfg.pongWait, "pong-wait", 60*time.Second, "time without a pong before a client is dropped (env: PRESENCE_PONG_WAIT)")
	fs.IntVarP(&cfg.port, "port", "p", 3000, "port to listen on (env: PRESENCE_PORT or PORT)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "URL encoded in the join QR code, derived from the request if empty (env: PRESENCE_PUBLIC_URL)")
	fs.IntVar(&cfg.sendBuffer, "send-buffer", 64, "outbound messages queued per client before dropping (env: PRESENCE_SEND_BUFFER)")
	fs.IntVar(&cfg.spawnMin, "spawn-min", 100, "lower bound of the spawn box on both axes (env: PRESENCE_SPAWN_MIN)")
	fs.IntVar(&cfg.spawnSpan, "spawn-span", 200, "size of the spawn box on both axes (env: PRESENCE_SPAWN_SPAN)")
	fs.StringVar(&cfg.staticDir, "static", "public", "directory with the browser client, empty to disable (env: PRESENCE_STATIC)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log at debug level (env: PRESENCE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: PRESENCE_VERSION)")

	// 兼容原部署方式：裸 PORT 环境变量
	_ = v.BindEnv("port", "PRESENCE_PORT", "PORT")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("presencehub v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
