package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/icco/movies/handlers"
	"github.com/icco/movies/lib/config"
	"github.com/icco/movies/models"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
)

type rootOptions struct {
	envFile   string
	dbPath    string
	staticDir string
	logLevel  string
	user      string
	noColor   bool
}

// NewRootCommand builds the movies command tree. Without a subcommand it
// starts the interactive menu.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "movies",
		Short: "Personal movie collection manager",
		Long: `movies keeps a per-user list of films with metadata from OMDb,
personal notes, statistics, search and a generated static webpage.

Run without a command for the interactive menu.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App, out *Printer) error {
				menu := NewMenu(app, surveyPrompter{}, out)
				if opts.user != "" {
					user, created, err := app.Store.EnsureUser(ctx, opts.user)
					if err != nil {
						return err
					}
					if created {
						out.Success("User '%s' created and selected", user.Name)
					}
					menu.SetUser(user)
				}
				return menu.Run(ctx)
			})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.envFile, "env-file", ".env", "Environment file to load")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides DB_PATH)")
	flags.StringVar(&opts.staticDir, "static-dir", "", "Output directory for generated pages (overrides STATIC_DIR)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flags.StringVarP(&opts.user, "user", "u", "", "User profile to act as")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newUsersCommand(opts),
		newListCommand(opts),
		newAddCommand(opts),
		newDeleteCommand(opts),
		newUpdateCommand(opts),
		newStatsCommand(opts),
		newRandomCommand(opts),
		newSearchCommand(opts),
		newSortedCommand(opts),
		newGenerateCommand(opts),
		newServeCommand(opts),
		newVersionCommand(),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", describe(err))
		return err
	}
	return nil
}

func (o *rootOptions) config() (*config.Config, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	if o.staticDir != "" {
		cfg.StaticDir = o.staticDir
	}
	if o.logLevel != "" {
		level, err := config.ParseLevel(o.logLevel)
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

// withApp builds the App for one command invocation and closes it afterwards.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App, out *Printer) error) error {
	cfg, err := o.config()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Failed to close database", slog.Any("error", err))
		}
	}()

	return fn(ctx, app, NewPrinter(cmd.OutOrStdout(), o.noColor))
}

// withUser is withApp for commands that act on an existing profile.
func (o *rootOptions) withUser(cmd *cobra.Command, fn func(ctx context.Context, app *App, out *Printer, user *models.User) error) error {
	if o.user == "" {
		return errors.New("--user is required")
	}
	return o.withApp(cmd, func(ctx context.Context, app *App, out *Printer) error {
		user, err := app.Store.UserByName(ctx, o.user)
		if err != nil {
			return err
		}
		return fn(ctx, app, out, user)
	})
}

func newUsersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List user profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App, out *Printer) error {
				users, err := app.Store.Users(ctx)
				if err != nil {
					return err
				}
				if len(users) == 0 {
					out.Line("No users yet")
					return nil
				}
				for _, u := range users {
					out.Line("%s", u.Name)
				}
				return nil
			})
		},
	}
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the movies in a collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUser(cmd, func(ctx context.Context, app *App, out *Printer, user *models.User) error {
				movies, err := app.Store.List(ctx, user.ID)
				if err != nil {
					return err
				}
				if len(movies) == 0 {
					out.Line("No movies yet")
					return nil
				}
				out.Movies(movies)
				return nil
			})
		},
	}
}

func newAddCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title>",
		Short: "Look a movie up on OMDb and add it",
		Long:  "Look a movie up on OMDb and add it. The user profile is created if it does not exist yet.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.user == "" {
				return errors.New("--user is required")
			}
			return opts.withApp(cmd, func(ctx context.Context, app *App, out *Printer) error {
				user, _, err := app.Store.EnsureUser(ctx, opts.user)
				if err != nil {
					return err
				}
				movie, err := app.Store.Add(ctx, args[0], user.ID)
				if err != nil {
					return err
				}
				out.Success("Movie '%s' added successfully.", movie.Title)
				return nil
			})
		},
	}
}

func newDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <title>",
		Short: "Delete a movie by its exact title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUser(cmd, func(ctx context.Context, app *App, out *Printer, user *models.User) error {
				removed, err := app.Store.Delete(ctx, args[0], user.ID)
				if err != nil {
					return err
				}
				if removed == 0 {
					out.Warn("No movie found with title '%s'.", args[0])
					return nil
				}
				out.Success("Movie '%s' deleted successfully.", args[0])
				return nil
			})
		},
	}
}

func newUpdateCommand(opts *rootOptions) *cobra.Command {
	var note string
	cmd := &cobra.Command{
		Use:   "update <title>",
		Short: "Set the note on a movie",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUser(cmd, func(ctx context.Context, app *App, out *Printer, user *models.User) error {
				updated, err := app.Store.Update(ctx, args[0], note, user.ID)
				if err != nil {
					return err
				}
				if updated == 0 {
					out.Warn("No movie found with title '%s'.", args[0])
					return nil
				}
				out.Success("Movie '%s' updated successfully", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&note, "note", "n", "", "Note to store on the movie")
	_ = cmd.MarkFlagRequired("note")
	return cmd
}

func newStatsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show average, median, best and worst ratings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUser(cmd, func(ctx context.Context, app *App, out *Printer, user *models.User) error {
				stats, err := app.Engine.Statistics(ctx, user.ID)
				if err != nil {
					return err
				}
				out.Stats(stats)
				return nil
			})
		},
	}
}

func newRandomCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Pick a random movie",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUser(cmd, func(ctx context.Context, app *App, out *Printer, user *models.User) error {
				movie, err := app.Engine.RandomPick(ctx, user.ID)
				if err != nil {
					return err
				}
				out.Movie(*movie)
				return nil
			})
		},
	}
}

func newSearchCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find movies whose title contains query, ignoring case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUser(cmd, func(ctx context.Context, app *App, out *Printer, user *models.User) error {
				matches, err := app.Engine.Search(ctx, user.ID, args[0])
				if err != nil {
					return err
				}
				out.Movies(matches)
				return nil
			})
		},
	}
}

func newSortedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sorted",
		Short: "List movies by rating, highest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUser(cmd, func(ctx context.Context, app *App, out *Printer, user *models.User) error {
				movies, err := app.Engine.SortedByRating(ctx, user.ID)
				if err != nil {
					return err
				}
				out.Movies(movies)
				return nil
			})
		},
	}
}

func newGenerateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Write the collection as a static webpage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withUser(cmd, func(ctx context.Context, app *App, out *Printer, user *models.User) error {
				movies, err := app.Store.List(ctx, user.ID)
				if err != nil {
					return err
				}
				path, err := app.Renderer.Generate(user.Name, movies)
				if err != nil {
					return err
				}
				out.Success("Website for %s was generated successfully: %s", user.Name, path)
				return nil
			})
		},
	}
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve every collection page locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, app *App, out *Printer) error {
				if addr == "" {
					addr = ":" + app.Config.Port
				}

				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				srv := &http.Server{
					Addr:              addr,
					Handler:           handlers.NewRouter(app.DB, app.Store),
					ReadHeaderTimeout: 10 * time.Second,
				}

				errCh := make(chan error, 1)
				go func() {
					errCh <- srv.ListenAndServe()
				}()
				out.Info("Serving collections on %s", addr)

				select {
				case err := <-errCh:
					if errors.Is(err, http.ErrServerClosed) {
						return nil
					}
					return fmt.Errorf("server failed: %w", err)
				case <-ctx.Done():
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default \":$PORT\")")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			titleColor := color.New(color.FgCyan, color.Bold)
			w := cmd.OutOrStdout()

			titleColor.Fprint(w, "movies version: ")
			fmt.Fprintln(w, Version)
			titleColor.Fprint(w, "Git commit: ")
			fmt.Fprintln(w, GitCommit)
			titleColor.Fprint(w, "Go version: ")
			fmt.Fprintln(w, runtime.Version())
		},
	}
}
