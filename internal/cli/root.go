package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tgienger/tasktracker/internal/api"
	"github.com/tgienger/tasktracker/internal/auth"
	"github.com/tgienger/tasktracker/internal/config"
	"github.com/tgienger/tasktracker/internal/db"
	"github.com/tgienger/tasktracker/internal/errs"
	"github.com/tgienger/tasktracker/internal/logging"
	"github.com/tgienger/tasktracker/internal/tracker"
	"github.com/tgienger/tasktracker/internal/ui"
)

// BuildInfo is set via ldflags
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type Options struct {
	Build  BuildInfo
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// RunTUI runs the interactive program. Defaults to a full screen bubbletea program.
	RunTUI func(m tea.Model) error
}

// deps are the wired components behind every command
type deps struct {
	cfg      config.Config
	log      *zap.Logger
	closeLog func()
	db       *db.DB
	tasks    *tracker.Service
	gate     *auth.Gate
}

func openDeps(configPath string) (*deps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logging.New(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DBPath, log)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("%w: failed to open database: %w", errs.ErrStorage, err)
	}

	hasher, err := auth.HasherFor(cfg.PasswordHashing)
	if err != nil {
		database.Close()
		closeLog()
		return nil, err
	}
	store, err := auth.OpenFileStore(cfg.CredentialsPath, hasher, log)
	if err != nil {
		database.Close()
		closeLog()
		return nil, err
	}

	mailer := auth.MailerFor(auth.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Timeout:  cfg.SMTP.Timeout,
	})

	return &deps{
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		db:       database,
		tasks:    tracker.NewService(database, log, tracker.WithArchiveCleared(cfg.ArchiveCleared)),
		gate:     auth.NewGate(store, mailer, log),
	}, nil
}

func (d *deps) Close() {
	d.db.Close()
	_ = d.log.Sync()
	d.closeLog()
}

// runner opens the dependencies on first use and closes them after the command
type runner struct {
	opts       Options
	configPath string
	d          *deps
}

func (r *runner) deps() (*deps, error) {
	if r.d != nil {
		return r.d, nil
	}
	d, err := openDeps(r.configPath)
	if err != nil {
		return nil, err
	}
	r.d = d
	return d, nil
}

func (r *runner) close() {
	if r.d != nil {
		r.d.Close()
		r.d = nil
	}
}

// Execute runs the CLI and returns the process exit code
func Execute(args []string, opts Options) int {
	r := &runner{opts: withDefaults(opts)}
	defer r.close()

	root := newRootCmd(r)
	root.SetArgs(args)
	root.SetIn(r.opts.Stdin)
	root.SetOut(r.opts.Stdout)
	root.SetErr(r.opts.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(r.opts.Stderr, "Error: %s: %v\n", errs.Title(err), err)
		return 1
	}
	return 0
}

func withDefaults(opts Options) Options {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.RunTUI == nil {
		opts.RunTUI = func(m tea.Model) error {
			_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		}
	}
	return opts
}

func newRootCmd(r *runner) *cobra.Command {
	b := r.opts.Build
	cmd := &cobra.Command{
		Use:           "tasktracker",
		Short:         "A single-user task tracker",
		Long:          "tasktracker keeps tasks with due dates, priorities and statuses in a local SQLite database.\nRun without arguments for the interactive interface.",
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", b.Version, b.Commit, b.Date),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := r.deps()
			if err != nil {
				return err
			}
			app := ui.NewApp(d.tasks, d.gate, d.db, d.log)
			if err := r.opts.RunTUI(app); err != nil {
				return fmt.Errorf("error running application: %w", err)
			}
			return nil
		},
	}
	cmd.SetVersionTemplate("tasktracker {{.Version}}\n")
	cmd.PersistentFlags().StringVar(&r.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/tasktracker/config.yaml)")

	cmd.AddCommand(
		newUserCmd(r),
		newTaskCmd(r),
		newServeCmd(r),
	)
	return cmd
}

func newServeCmd(r *runner) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := r.deps()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = d.cfg.APIAddress
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", addr)
			return api.New(d.tasks, d.gate, d.log).ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config api_address)")
	return cmd
}
