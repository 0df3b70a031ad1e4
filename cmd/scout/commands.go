package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/prospect-scout/internal/config"
	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
	"github.com/preston-bernstein/prospect-scout/internal/logging"
	"github.com/preston-bernstein/prospect-scout/internal/metrics"
	"github.com/preston-bernstein/prospect-scout/internal/query"
	"github.com/preston-bernstein/prospect-scout/internal/repository"
	"github.com/preston-bernstein/prospect-scout/internal/server"
)

const suggestionLimit = 3

type cli struct {
	out      io.Writer
	errOut   io.Writer
	envFiles []string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}
	root := &cobra.Command{
		Use:           "scout",
		Short:         "Basketball prospect scouting service",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context())
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", nil, "env files to read before the environment (default .env)")

	root.AddCommand(c.serveCmd())
	root.AddCommand(c.playersCmd())
	root.AddCommand(c.playerCmd())
	root.AddCommand(c.savedCmd())
	return root
}

// --------------------------------------------------------------------------
// serve
// --------------------------------------------------------------------------

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context())
		},
	}
}

func (c *cli) serve(ctx context.Context) error {
	cfg, err := config.Load(c.envFiles...)
	if err != nil {
		return err
	}
	logger := c.newLogger(cfg, c.out)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}
	srv.Run(ctx, stop)
	return nil
}

// --------------------------------------------------------------------------
// players / player
// --------------------------------------------------------------------------

type playersOutput struct {
	query.Page
	Origin repository.Origin `json:"origin"`
}

func (c *cli) playersCmd() *cobra.Command {
	var (
		view                   query.View
		minPPG, minRPG, minAPG float64
	)
	cmd := &cobra.Command{
		Use:   "players",
		Short: "Search, filter and rank prospects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("min-ppg") {
				view.Criteria.MinPPG = &minPPG
			}
			if flags.Changed("min-rpg") {
				view.Criteria.MinRPG = &minRPG
			}
			if flags.Changed("min-apg") {
				view.Criteria.MinAPG = &minAPG
			}
			return c.withComponents(cmd.Context(), func(ctx context.Context, comps *server.Components) error {
				collection := comps.Repository.FetchAll(ctx)
				page := query.Apply(collection.Players, view, comps.Saved.IsSaved)
				return c.print(playersOutput{Page: page, Origin: collection.Origin})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&view.Query, "q", "", "Search name, school, position or archetype")
	f.StringVar(&view.Criteria.School, "school", "", "Exact school (\"all\" disables)")
	f.StringVar(&view.Criteria.Position, "position", "", "Exact position (\"all\" disables)")
	f.Float64Var(&minPPG, "min-ppg", 0, "Minimum points per game")
	f.Float64Var(&minRPG, "min-rpg", 0, "Minimum rebounds per game")
	f.Float64Var(&minAPG, "min-apg", 0, "Minimum assists per game")
	f.BoolVar(&view.SavedOnly, "saved", false, "Only saved players")
	f.IntVar(&view.Page, "page", 1, "Page number")
	f.IntVar(&view.PageSize, "page-size", query.DefaultPageSize, "Page size")
	return cmd
}

func (c *cli) playerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "player <id>",
		Short: "Show one prospect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return c.withComponents(cmd.Context(), func(ctx context.Context, comps *server.Components) error {
				p, err := comps.Repository.FetchByID(ctx, id)
				if errors.Is(err, repository.ErrNotFound) {
					return notFoundError(err, id, query.Suggest(comps.Repository.FetchAll(ctx).Players, id, suggestionLimit))
				}
				if err != nil {
					return err
				}
				return c.print(p)
			})
		},
	}
}

func notFoundError(err error, id string, suggestions []query.Suggestion) error {
	if len(suggestions) == 0 {
		return fmt.Errorf("%q: %w", id, err)
	}
	ids := make([]string, len(suggestions))
	for i, s := range suggestions {
		ids[i] = s.ID
	}
	return fmt.Errorf("%q: %w (did you mean %s?)", id, err, strings.Join(ids, ", "))
}

// --------------------------------------------------------------------------
// saved
// --------------------------------------------------------------------------

type savedOutput struct {
	IDs     []string         `json:"ids"`
	Players []players.Player `json:"players"`
	Missing []string         `json:"missing"`
}

type toggleOutput struct {
	ID    string `json:"id"`
	Saved bool   `json:"saved"`
}

func (c *cli) savedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "List saved prospects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withComponents(cmd.Context(), func(ctx context.Context, comps *server.Components) error {
				ids := comps.Saved.List()
				found, missing := []players.Player{}, []string{}
				if len(ids) > 0 {
					found, missing = query.Resolve(comps.Repository.FetchAll(ctx).Players, ids)
				}
				return c.print(savedOutput{IDs: ids, Players: found, Missing: missing})
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <id>",
		Short: "Save or unsave a prospect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			if id == "" {
				return errors.New("player id must not be blank")
			}
			return c.withComponents(cmd.Context(), func(_ context.Context, comps *server.Components) error {
				return c.print(toggleOutput{ID: id, Saved: comps.Saved.Toggle(id)})
			})
		},
	})
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// withComponents loads configuration and builds the repository and saved
// set for one command. Logs go to errOut so stdout stays JSON.
func (c *cli) withComponents(ctx context.Context, fn func(ctx context.Context, comps *server.Components) error) error {
	cfg, err := config.Load(c.envFiles...)
	if err != nil {
		return err
	}
	logger := c.newLogger(cfg, c.errOut)

	comps, err := server.NewComponents(cfg, logger, metrics.NewRecorder())
	if err != nil {
		return err
	}
	defer func() {
		if err := comps.Close(); err != nil {
			logging.Warn(logger, "close failed", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return fn(ctx, comps)
}

func (c *cli) newLogger(cfg config.Config, out io.Writer) *slog.Logger {
	return logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: appName,
		Version: appVersion,
		Output:  out,
	})
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
