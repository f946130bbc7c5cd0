// Package cli implements the teamname operator command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/teamnames/pkg/config"
	"github.com/dmitrymomot/teamnames/pkg/lexicon"
	"github.com/dmitrymomot/teamnames/pkg/lexicon/source"
	"github.com/dmitrymomot/teamnames/pkg/logger"
	"github.com/dmitrymomot/teamnames/pkg/teamname"
)

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL"`
}

type commandKey struct{}

// Option customizes Execute.
type Option func(*options)

type options struct {
	out     io.Writer
	errOut  io.Writer
	store   teamname.Store
	lexicon *lexicon.Lexicon
}

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithErrorOutput redirects errors and logs.
func WithErrorOutput(w io.Writer) Option {
	return func(o *options) { o.errOut = w }
}

// WithStore bypasses TEAMNAME_STORE and uses store directly.
func WithStore(store teamname.Store) Option {
	return func(o *options) { o.store = store }
}

// WithLexicon bypasses TEAMNAME_LEXICON.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(o *options) { o.lexicon = lex }
}

type rootFlags struct {
	envFiles []string
	store    string
	lexicon  string
	ttl      time.Duration
	output   string
}

type app struct {
	opts    options
	flags   rootFlags
	log     *slog.Logger
	print   printer
	backend *backend
	svc     *teamname.Service
}

// Execute runs the command line with args and releases store connections
// before returning.
func Execute(ctx context.Context, args []string, opts ...Option) error {
	a := &app{opts: options{out: os.Stdout, errOut: os.Stderr}}
	for _, opt := range opts {
		opt(&a.opts)
	}
	defer a.close()

	cmd := a.rootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func (a *app) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "teamname",
		Short:             "Reserve and manage team names for quiz events",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	cmd.SetOut(a.opts.out)
	cmd.SetErr(a.opts.errOut)

	pf := cmd.PersistentFlags()
	pf.StringSliceVar(&a.flags.envFiles, "env-file", nil, ".env files to load before reading configuration")
	pf.StringVar(&a.flags.store, "store", "", "store backend: memory, sqlite, postgres, redis or mongo (overrides TEAMNAME_STORE)")
	pf.StringVar(&a.flags.lexicon, "lexicon", "", "lexicon file or s3://bucket/key (overrides TEAMNAME_LEXICON)")
	pf.DurationVar(&a.flags.ttl, "ttl", 0, "reservation TTL (overrides TEAMNAME_RESERVATION_TTL)")
	pf.StringVarP(&a.flags.output, "output", "o", formatTable, "output format: table or json")

	cmd.AddCommand(
		a.lexiconCommand(),
		a.reserveCommand(),
		a.confirmCommand(),
		a.releaseCommand(),
		a.releaseNameCommand(),
		a.historyCommand(),
		a.inventoryCommand(),
		a.resetCommand(),
		a.migrateCommand(),
		a.healthCommand(),
	)
	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	switch a.flags.output {
	case formatTable, formatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, a.flags.output)
	}
	a.print = printer{out: a.opts.out, format: a.flags.output}

	if len(a.flags.envFiles) > 0 {
		if err := config.LoadEnv(a.flags.envFiles...); err != nil {
			return err
		}
	}

	var appCfg appConfig
	if err := config.Load(&appCfg); err != nil {
		return err
	}
	var cfg teamname.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if a.flags.store != "" {
		cfg.Store = a.flags.store
	}
	if a.flags.lexicon != "" {
		cfg.Lexicon = a.flags.lexicon
	}
	if a.flags.ttl > 0 {
		cfg.ReservationTTL = a.flags.ttl
	}

	logOpts := []logger.Option{
		logger.WithOutput(a.opts.errOut),
		logger.WithEnvironment(appCfg.Env, "teamname"),
		logger.WithContextValue("command", commandKey{}),
	}
	if appCfg.LogLevel != "" {
		logOpts = append(logOpts, logger.WithLevelName(appCfg.LogLevel))
	}
	a.log = logger.New(logOpts...)

	ctx := context.WithValue(cmd.Context(), commandKey{}, cmd.Name())
	cmd.SetContext(ctx)

	lex, err := a.loadLexicon(ctx, cfg)
	if err != nil {
		return err
	}

	if a.opts.store != nil {
		a.backend = staticBackend("custom", a.opts.store)
	} else {
		b, err := openBackend(ctx, cfg.Store, a.log)
		if err != nil {
			return err
		}
		a.backend = b
	}
	if a.backend.name == "memory" && needsPersistence(cmd.Name()) {
		a.log.WarnContext(ctx, "memory store does not persist between invocations", logger.Store(a.backend.name))
	}

	a.svc = teamname.New(lex, a.backend.store,
		teamname.WithConfig(cfg),
		teamname.WithLogger(a.log),
	)
	return nil
}

func (a *app) loadLexicon(ctx context.Context, cfg teamname.Config) (*lexicon.Lexicon, error) {
	if a.opts.lexicon != nil {
		return a.opts.lexicon, nil
	}

	opts := []lexicon.Option{lexicon.WithCacheSize(cfg.SelectionCacheSize)}
	uri := strings.TrimSpace(cfg.Lexicon)
	if uri == "" {
		return lexicon.Builtin(opts...), nil
	}

	var s3cfg source.S3Config
	if err := config.Load(&s3cfg); err != nil {
		return nil, err
	}
	src, err := source.Parse(ctx, uri, s3cfg)
	if err != nil {
		return nil, err
	}
	lex, err := lexicon.LoadSource(ctx, src, opts...)
	if err != nil {
		return nil, err
	}
	a.log.DebugContext(ctx, "lexicon loaded",
		slog.String("source", src.String()),
		logger.LexiconVersion(lex.Version()),
		slog.Int("total", lex.TotalCombinations()),
	)
	return lex, nil
}

func (a *app) close() {
	if a.backend == nil {
		return
	}
	if err := a.backend.close(); err != nil && a.log != nil {
		a.log.Error("failed to close store", logger.Store(a.backend.name), logger.Error(err))
	}
}

func needsPersistence(command string) bool {
	switch command {
	case "lexicon", "health", "migrate":
		return false
	}
	return true
}
