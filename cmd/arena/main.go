package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/arena-dashboard/pkg/api"
	"github.com/arena-dashboard/pkg/config"
	"github.com/arena-dashboard/pkg/credstore"
	"github.com/arena-dashboard/pkg/poller"
	"github.com/arena-dashboard/pkg/session"
	"github.com/arena-dashboard/pkg/ui"
	"github.com/arena-dashboard/pkg/view"
)

func main() {
	once := flag.Bool("once", false, "print the leaderboard once and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load failed:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	closeLog := setupLogging(cfg, *once)
	defer closeLog()

	store, err := credstore.Open(cfg.CredDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("credential store init failed")
	}
	defer store.Close()

	sess := session.New(store)
	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, sess)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("shutting down...")
		cancel()
	}()

	if *once {
		if err := printLeaderboard(ctx, client); err != nil {
			log.Fatal().Err(err).Msg("leaderboard fetch failed")
		}
		return
	}

	// A stored token may have expired server-side; the 401 path clears it
	// and we carry on as a guest.
	if sess.IsAuthenticated() {
		restoreAccount(ctx, client, sess)
	}

	relay := ui.NewRelay()
	pol := poller.New(client, sess, relay, cfg.PollInterval)

	model := ui.NewModel(cfg, sess, client, pol, store)
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithReportFocus())
	relay.Attach(prog.Send)

	if err := pol.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("poller start failed")
	}
	defer pol.Stop()

	go func() {
		<-ctx.Done()
		prog.Quit()
	}()

	if _, err := prog.Run(); err != nil {
		log.Fatal().Err(err).Msg("terminal program failed")
	}
	log.Info().Msg("goodbye")
}

// setupLogging routes zerolog away from the terminal while the TUI owns it:
// to the configured file when set, otherwise discarded.
func setupLogging(cfg *config.Config, once bool) func() {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if once {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
		return func() {}
	}

	if cfg.LogFile == "" {
		log.Logger = zerolog.New(io.Discard)
		return func() {}
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintln(os.Stderr, "log file open failed:", err)
		os.Exit(1)
	}
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() { f.Close() }
}

// restoreAccount loads the profile and agent list for a returning user. Both
// fetches run concurrently; either failing just means starting as a guest.
func restoreAccount(ctx context.Context, client *api.Client, sess *session.Session) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		user, err := client.GetMe(gctx)
		if err != nil {
			return err
		}
		sess.SetCurrentUser(user)
		return nil
	})
	g.Go(func() error {
		_, err := client.ListMyAgents(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		var ae *api.APIError
		if errors.As(err, &ae) && ae.Status == 401 {
			log.Info().Msg("stored session expired, continuing as guest")
		} else {
			log.Warn().Err(err).Msg("account restore failed")
		}
	}
}

// printLeaderboard is the non-interactive mode: one snapshot, one table.
func printLeaderboard(ctx context.Context, client *api.Client) error {
	agents, err := client.ListPublicAgents(ctx)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Agent", "Owner", "Equity", "Change"})
	table.SetBorder(false)
	for _, row := range view.BuildLeaderboard(agents) {
		change := red(row.Change)
		if row.Positive {
			change = green(row.Change)
		}
		table.Append([]string{
			fmt.Sprintf("%d", row.Rank), row.Name, row.Owner, row.Equity, change,
		})
	}
	table.Render()
	return nil
}
