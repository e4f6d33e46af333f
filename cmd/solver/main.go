// Command solver runs the autonomous crossword solving agent, with a
// terminal renderer and an optional browser front end.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"solver/pkg/config"
	"solver/pkg/eventlog"
	"solver/pkg/logx"
	"solver/pkg/metrics"
	"solver/pkg/oracle/factory"
	"solver/pkg/solver"
	"solver/pkg/tui"
	"solver/pkg/webui"
)

// version is set at build time via -ldflags.
//
//nolint:gochecknoglobals // Build-time version stamp
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		puzzleName  string
		model       string
		listen      string
		workDir     string
		noWebUI     bool
		showVersion bool
	)
	flag.StringVar(&puzzleName, "puzzle", "", "Puzzle file or name to solve immediately")
	flag.StringVar(&model, "model", "", "Oracle model name (default from config)")
	flag.StringVar(&listen, "listen", "", "Web UI listen address (default from config)")
	flag.StringVar(&workDir, "workdir", "", "Working directory (default: current directory)")
	flag.BoolVar(&noWebUI, "nowebui", false, "Disable the web UI server")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("solver %s\n", version)
		return 0
	}

	logger := logx.NewLogger("main")

	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	if err := config.LoadConfig(workDir); err != nil {
		logger.Error("failed to load config: %v", err)
		return 1
	}
	cfg, err := config.GetConfig()
	if err != nil {
		logger.Error("failed to read config: %v", err)
		return 1
	}

	if model == "" {
		model = cfg.OracleModel
	}
	if listen == "" {
		listen = cfg.WebUI.Listen
	}
	if puzzleName == "" && noWebUI {
		logger.Error("nothing to do: no -puzzle given and web UI disabled")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logWriter, err := eventlog.NewWriter(cfg.EventLogDir)
	if err != nil {
		logger.Error("failed to open event log: %v", err)
		return 1
	}
	defer logWriter.Close()

	recorder := metrics.NewPrometheusRecorder()
	manager := solver.NewManager(factory.NewClientForModel, logWriter, recorder)

	var wg sync.WaitGroup
	if !noWebUI && cfg.WebUI.Enabled {
		server := webui.NewServer(manager, cfg.PuzzleDir)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if serveErr := server.Start(ctx, listen); serveErr != nil {
				logger.Error("web UI server error: %v", serveErr)
			}
		}()
	}

	exitCode := 0
	if puzzleName != "" {
		puzzlePath, pathErr := resolvePuzzle(puzzleName, cfg.PuzzleDir)
		if pathErr != nil {
			logger.Error("%v", pathErr)
			stop()
			wg.Wait()
			return 1
		}
		exitCode = solveOnce(ctx, manager, puzzlePath, model, logger)
		stop()
	} else {
		logger.Info("waiting for sessions via web UI on %s", listen)
		<-ctx.Done()
		manager.Stop()
	}

	wg.Wait()
	return exitCode
}

// resolvePuzzle accepts either a direct file path or a file name inside
// the configured puzzle directory.
func resolvePuzzle(name, puzzleDir string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}
	candidate := filepath.Join(puzzleDir, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("puzzle %q not found (also tried %s)", name, candidate)
}

// solveOnce runs a single session to completion, rendering events to
// the terminal. Returns the process exit code.
func solveOnce(ctx context.Context, manager *solver.Manager, puzzlePath, model string, logger *logx.Logger) int {
	session, err := manager.StartSession(ctx, puzzlePath, model)
	if err != nil {
		logger.Error("failed to start session: %v", err)
		return 1
	}

	renderer := tui.NewRenderer(os.Stdout)
	ch, unsubscribe := manager.Bus().Subscribe(true)
	defer unsubscribe()

	renderDone := make(chan struct{})
	go func() {
		defer close(renderDone)
		renderer.Run(ch)
	}()

	manager.Wait()
	<-renderDone

	if session.State() != solver.StateCompleted {
		return 1
	}
	return 0
}
