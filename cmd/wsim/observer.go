package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/wsim/internal/config"
	"github.com/verte-zerg/wsim/internal/discovery"
	"github.com/verte-zerg/wsim/internal/link"
	"github.com/verte-zerg/wsim/internal/observer"
	"github.com/verte-zerg/wsim/internal/observerui"
	"github.com/verte-zerg/wsim/internal/printer"
	"github.com/verte-zerg/wsim/internal/scenario"
	"github.com/verte-zerg/wsim/internal/session"
	"github.com/verte-zerg/wsim/internal/store"
)

var (
	observerScenario      string
	observerPort          int
	observerDiscoveryPort int
	observerBroadcastAddr string
	observerLogDir        string
	observerWatch         bool
	observerNoBroadcast   bool
)

func newObserverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "observer",
		Short: "Run the Observer station",
		Args:  cobra.NoArgs,
		RunE:  runObserverCmd,
	}
	cmd.Flags().StringVar(&observerScenario, "scenario", "", "scenario file (.json, .yaml or .yml)")
	cmd.Flags().IntVar(&observerPort, "port", link.DefaultPort, "TCP port the User connects to")
	cmd.Flags().IntVar(&observerDiscoveryPort, "discovery-port", discovery.DefaultPort, "UDP discovery port")
	cmd.Flags().StringVar(&observerBroadcastAddr, "broadcast-addr", "", "announcement target (default 255.255.255.255:<discovery-port>)")
	cmd.Flags().StringVar(&observerLogDir, "log-dir", config.DefaultLogDir(), "directory for session CSV logs")
	cmd.Flags().BoolVar(&observerWatch, "watch", false, "reload the scenario file when it changes")
	cmd.Flags().BoolVar(&observerNoBroadcast, "no-broadcast", false, "do not announce the Observer on the LAN")
	return cmd
}

func runObserverCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig()
	if err != nil {
		return err
	}
	applyStringConfig(cmd, "scenario", &observerScenario, fileCfg.Observer.Scenario)
	applyIntConfig(cmd, "port", &observerPort, fileCfg.Observer.Port)
	applyIntConfig(cmd, "discovery-port", &observerDiscoveryPort, fileCfg.Observer.DiscoveryPort)
	applyStringConfig(cmd, "broadcast-addr", &observerBroadcastAddr, fileCfg.Observer.BroadcastAddr)
	applyStringConfig(cmd, "log-dir", &observerLogDir, fileCfg.Observer.LogDir)
	applyBoolConfig(cmd, "watch", &observerWatch, fileCfg.Observer.Watch)
	applyBoolConfig(cmd, "no-broadcast", &observerNoBroadcast, fileCfg.Observer.NoBroadcast)

	if err := validatePort("--port", observerPort, true); err != nil {
		return err
	}
	if err := validatePort("--discovery-port", observerDiscoveryPort, false); err != nil {
		return err
	}

	sc, err := loadScenario(observerScenario)
	if err != nil {
		return printer.Error("Cannot load scenario", err.Error(),
			"Check the file syntax, or write a fresh one with: wsim scenario init "+observerScenario)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	srv, err := link.Listen(net.JoinHostPort("", strconv.Itoa(observerPort)))
	if err != nil {
		return printer.Error("Cannot start the Observer", err.Error(),
			"Another Observer may already be running; pick another --port")
	}
	defer func() { _ = srv.Close() }()

	station := observer.NewStation(observer.NewControl(sc), session.NewController(observerLogDir), srv, st)
	srv.SetGreeting(station.Greeting)

	address := net.JoinHostPort(discovery.LocalIP(), strconv.Itoa(srv.Port()))
	printer.Step("Observer listening on %s", address)

	restore, err := redirectLogs(config.DefaultDiagLogPath())
	if err != nil {
		return err
	}
	defer restore()

	ui := observerui.New(station, observerui.Options{
		ScenarioPath: observerScenario,
		History:      st,
		Address:      address,
	})
	program := tea.NewProgram(ui, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(guard("tui", func() error { return runProgram(program, cancel) }))
	g.Go(func() error {
		<-gctx.Done()
		program.Quit()
		return nil
	})
	g.Go(background(gctx, "link", func() error { return srv.Run(gctx) }))
	g.Go(background(gctx, "pump", func() error { return pumpObserver(gctx, srv.Peer, program) }))
	if !observerNoBroadcast {
		target := observerBroadcastAddr
		if target == "" {
			target = discovery.BroadcastAddr(observerDiscoveryPort)
		}
		b := discovery.NewBroadcaster(target, srv.Port())
		g.Go(background(gctx, "discovery", func() error { return b.Run(gctx) }))
		slog.Info("observer: announcing", "target", target, "port", srv.Port())
	}
	if observerWatch && observerScenario != "" {
		g.Go(background(gctx, "watch", func() error {
			return scenario.Watch(gctx, observerScenario, func(s scenario.Scenario, err error) {
				program.Send(observerui.ScenarioMsg{Scenario: s, Err: err})
			})
		}))
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := station.Err(); err != nil {
		printer.Warning("%v", err)
	}
	if notice := station.Notice(); notice != "" {
		printer.Info("%s", notice)
	}
	return nil
}

// pumpObserver forwards link traffic into the UI goroutine.
func pumpObserver(ctx context.Context, peer *link.Peer, program *tea.Program) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case m := <-peer.Incoming():
			program.Send(observerui.MessageMsg{Message: m})
		case s := <-peer.Status():
			slog.Info("observer: link status", "status", s)
			program.Send(observerui.StatusMsg{Connected: s == link.Connected})
		}
	}
}

// loadScenario returns the built-in scenario for an empty path or a file
// that does not exist yet; ctrl+s creates it.
func loadScenario(path string) (scenario.Scenario, error) {
	if path == "" {
		return scenario.Default(), nil
	}
	sc, err := scenario.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		printer.Warning("Scenario %s not found; starting from the defaults", path)
		return scenario.Default(), nil
	}
	return sc, err
}

func validatePort(flag string, port int, allowZero bool) error {
	if port == 0 && allowZero {
		return nil
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be between 1 and 65535", flag)
	}
	return nil
}
