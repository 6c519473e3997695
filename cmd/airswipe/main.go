package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/ayusman/airswipe/internal/app"
	"github.com/ayusman/airswipe/internal/config"
	"github.com/ayusman/airswipe/internal/log"
	"github.com/ayusman/airswipe/internal/plugin"
	"github.com/ayusman/airswipe/internal/server"
	"github.com/ayusman/airswipe/internal/store"
	"github.com/ayusman/airswipe/internal/tray"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	withTray := flag.Bool("tray", false, "show the system tray menu")
	autostart := flag.Bool("autostart", false, "start a swipe session on launch")
	flag.Parse()

	if err := run(*configPath, *addr, *withTray, *autostart); err != nil {
		fmt.Fprintf(os.Stderr, "airswipe: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr string, withTray, autostart bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.ListenAddr = addr
	}

	log.Init(cfg.LogLevel)
	logger := log.With("component", "main")

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	plugins := plugin.NewManager(cfg.PluginPath())
	plugins.SetLogger(log.With("component", "plugins"))
	if err := plugins.Discover(); err != nil {
		logger.Warn("plugin discovery failed", "dir", cfg.PluginPath(), "error", err)
	}
	logger.Info("plugins loaded", "count", len(plugins.List()))

	hub := server.NewHub(log.With("component", "hub"))

	a, err := app.FromConfig(cfg, st, plugins, hub)
	if err != nil {
		return err
	}
	defer a.Close()

	webDir := findWebDir(cfg.DataDir)
	if webDir != "" {
		logger.Info("serving static files", "dir", webDir)
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Controller: a,
		Plugins:    plugins,
		Hub:        hub,
		Logger:     log.With("component", "server"),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if autostart {
		if err := a.StartSession(); err != nil {
			logger.Error("autostart failed", "error", err)
		}
	}

	logger.Info("starting server", "addr", cfg.ListenAddr)

	if !withTray {
		return srv.ListenAndServe(ctx, cfg.ListenAddr)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe(ctx, cfg.ListenAddr)
		stop()
	}()

	t := newTray(a, stop, settingsURL(cfg.ListenAddr))
	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()

	stop()
	return <-serveErr
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newTray builds the tray menu and mirrors the session state in it.
func newTray(a *app.App, quit context.CancelFunc, url string) *tray.Tray {
	logger := log.With("component", "tray")

	t := tray.New(a.Status().Running)
	t.OnToggle(func(enabled bool) {
		if !enabled {
			a.StopSession()
			return
		}
		if err := a.StartSession(); err != nil {
			logger.Error("failed to start session", "error", err)
			t.SetEnabled(false)
		}
	})
	t.OnSettings(func() {
		if err := openBrowser(url); err != nil {
			logger.Warn("failed to open settings", "url", url, "error", err)
		}
	})
	t.OnQuit(quit)

	a.SetNotifier(t)
	return t
}

func settingsURL(addr string) string {
	host := addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host + "/"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", url)
	default:
		return errors.New("unsupported platform")
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <dataDir>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
