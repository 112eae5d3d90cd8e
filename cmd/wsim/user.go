package main

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/wsim/internal/config"
	"github.com/verte-zerg/wsim/internal/discovery"
	"github.com/verte-zerg/wsim/internal/link"
	"github.com/verte-zerg/wsim/internal/params"
	"github.com/verte-zerg/wsim/internal/printer"
	"github.com/verte-zerg/wsim/internal/sim"
	"github.com/verte-zerg/wsim/internal/sound"
	"github.com/verte-zerg/wsim/internal/user"
	"github.com/verte-zerg/wsim/internal/userui"
)

var (
	userConnect       string
	userDiscoveryPort int
	userSeed          int64
	userSoundsDir     string
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Run the User station",
		Args:  cobra.NoArgs,
		RunE:  runUserCmd,
	}
	cmd.Flags().StringVar(&userConnect, "connect", "", "Observer address host:port (skips discovery)")
	cmd.Flags().IntVar(&userDiscoveryPort, "discovery-port", discovery.DefaultPort, "UDP discovery port")
	cmd.Flags().Int64Var(&userSeed, "seed", 0, "simulation seed (0 picks one from the clock)")
	cmd.Flags().StringVar(&userSoundsDir, "sounds-dir", config.DefaultSoundsDir(), "directory holding the cue wav files")
	return cmd
}

func runUserCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "connect", &userConnect, fileCfg.User.Connect)
	applyIntConfig(cmd, "discovery-port", &userDiscoveryPort, fileCfg.User.DiscoveryPort)
	applyInt64Config(cmd, "seed", &userSeed, fileCfg.User.Seed)
	applyStringConfig(cmd, "sounds-dir", &userSoundsDir, fileCfg.User.SoundsDir)

	if userConnect != "" {
		if _, _, err := net.SplitHostPort(userConnect); err != nil {
			return printer.Error("Invalid --connect address", err.Error(), "Use host:port, for example 192.168.1.10:5000")
		}
	}
	if err := validatePort("--discovery-port", userDiscoveryPort, false); err != nil {
		return err
	}
	seed := userSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	sounds := sound.NewBoard(userSoundsDir, params.DefaultSounds())
	if missing := sounds.Missing(); len(missing) > 0 {
		printer.Warning("%d sound files missing under %s; cues will be silent", len(missing), userSoundsDir)
	}

	var listener *discovery.Listener
	if userConnect == "" {
		listener, err = discovery.Listen(net.JoinHostPort("", strconv.Itoa(userDiscoveryPort)))
		if err != nil {
			return printer.Error("Cannot listen for the Observer", err.Error(),
				"Pass the address directly with --connect host:port")
		}
		defer func() { _ = listener.Close() }()
		printer.Step("Looking for an Observer on UDP port %d", userDiscoveryPort)
	}

	client := link.NewClient(userConnect)
	station := user.NewStation(sim.NewEngine(seed), client, sounds)

	restore, err := redirectLogs(config.DefaultDiagLogPath())
	if err != nil {
		return err
	}
	defer restore()
	slog.Info("user: starting", "seed", seed, "connect", userConnect)

	ui := userui.New(station)
	program := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithMouseCellMotion())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	targets := make(chan string, 1)
	if userConnect != "" {
		targets <- userConnect
	}

	g.Go(guard("tui", func() error { return runProgram(program, cancel) }))
	g.Go(func() error {
		<-gctx.Done()
		program.Quit()
		return nil
	})
	g.Go(background(gctx, "link", func() error { return client.Run(gctx) }))
	g.Go(background(gctx, "pump", func() error { return pumpUser(gctx, client.Peer, targets, program) }))
	if listener != nil {
		g.Go(background(gctx, "discovery", func() error {
			return listener.Run(gctx, func(a discovery.Announcement) {
				addr := a.Addr()
				if addr == client.Target() {
					return
				}
				slog.Info("user: observer found", "addr", addr)
				client.SetTarget(addr)
				select {
				case targets <- addr:
				default:
				}
			})
		}))
	}

	return g.Wait()
}

// pumpUser forwards link traffic and discovery results into the UI
// goroutine. It owns the last known link state so a new target does not
// reset the badge.
func pumpUser(ctx context.Context, peer *link.Peer, targets <-chan string, program *tea.Program) error {
	connected := false
	target := ""
	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-peer.Incoming():
			program.Send(userui.MessageMsg{Message: m})
		case s := <-peer.Status():
			slog.Info("user: link status", "status", s)
			connected = s == link.Connected
			program.Send(userui.StatusMsg{Connected: connected, Target: target})
		case t := <-targets:
			target = t
			program.Send(userui.StatusMsg{Connected: connected, Target: target})
		}
	}
}
