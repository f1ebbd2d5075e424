package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/phanxgames/vmix"
	"github.com/phanxgames/vmix/metrics"
	"github.com/phanxgames/vmix/sessionfile"
)

var playCmd = &cobra.Command{
	Use:   "play <session.yaml>",
	Short: "Play a session in a window",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().String("view", "rendering", "View shown in the window (rendering, geometry, layer, mixing)")
	playCmd.Flags().String("record", "", "Record the output as PNG frames into this directory")
	playCmd.Flags().Int("frames", 0, "Quit after this many frames (0 plays until the window closes)")
	playCmd.Flags().String("cues", "", "Cue list played on the session")
	playCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	viewName, _ := cmd.Flags().GetString("view")
	mode, ok := vmix.ParseViewMode(viewName)
	if !ok {
		return fmt.Errorf("unknown view %q", viewName)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	session, err := sessionfile.Load(ctx, args[0], vmix.WithSettings(settings))
	if err != nil {
		return err
	}
	defer session.Close()

	g := newPlayer(session, mode, settings)

	if dir, _ := cmd.Flags().GetString("record"); dir != "" {
		r := vmix.NewPNGRecorder(dir, session.Filename())
		r.MaxFrames = settings.RecordFrames
		session.AddRecorder(r)
		g.recorders = append(g.recorders, r)
	}
	g.maxFrames, _ = cmd.Flags().GetInt("frames")
	if path, _ := cmd.Flags().GetString("cues"); path != "" {
		if g.cues, err = vmix.LoadCues(path); err != nil {
			return err
		}
	}

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		srv := serveMetrics(addr, session)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ebiten.SetWindowTitle("vmix - " + session.Filename())
	ebiten.SetWindowSize(settings.Width, settings.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}

	session.StopRecorders()
	for _, r := range g.recorders {
		r.Wait()
		if err := r.Err(); err != nil {
			return err
		}
	}
	return nil
}

func serveMetrics(addr string, s *vmix.Session) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics.NewCollector(s, s.Filename()))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		vmix.Logger().Info("serving metrics", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			vmix.Logger().Error("metrics server failed", "error", err)
		}
	}()
	return srv
}
