package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"classfree/internal/capture"
	"classfree/internal/config"
	appLog "classfree/internal/log"
	"classfree/internal/roster"
	"classfree/internal/web"
)

// flagConfig holds CLI flag values; flags override the config file.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
}

func main() {
	appLog.Info("classfree starting", "version", "0.1.0")

	flags := parseFlags()

	// .env is optional; it carries overrides for containerized deploys.
	_ = godotenv.Load()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	applyEnvOverrides(conf)
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"source", conf.Source.ID,
		"cache_dir", conf.CacheDir,
		"preview_room", conf.PreviewRoom,
		"once", flags.once,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetcher := roster.NewFetcher(filepath.Join(conf.CacheDir, "roster-cache"))
	server := web.NewServer(conf, fetcher)

	// Initial load. A failure is not fatal: the fetcher falls back to its
	// disk cache, and the next cron tick retries against the network.
	if err := server.Reload(ctx); err != nil {
		appLog.Error("initial timetable load failed", err)
	}

	httpServer := &http.Server{
		Addr:              conf.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLog.Info("HTTP server listening", "listen", "http://"+conf.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Error("http server error", err)
			stop()
		}
	}()

	if flags.once {
		runRefreshCycle(ctx, conf, server)
		shutdown(httpServer)
		appLog.Info("classfree exiting (once)")
		return
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(conf.RefreshCron, func() {
		runRefreshCycle(ctx, conf, server)
	}); err != nil {
		appLog.Error("invalid refresh cron expression", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Capture the initial preview once the server is up.
	runCapture(ctx, conf, server)

	<-ctx.Done()
	appLog.Info("signal received, shutting down")
	shutdown(httpServer)
	appLog.Info("classfree exiting")
}

// runRefreshCycle reloads the timetable and recaptures the preview PNG.
// Errors are logged, never fatal: the previous snapshot keeps serving.
func runRefreshCycle(ctx context.Context, conf *config.Config, server *web.Server) {
	if err := server.Reload(ctx); err != nil {
		appLog.Error("scheduled refresh failed", err)
		return
	}
	runCapture(ctx, conf, server)
}

func runCapture(ctx context.Context, conf *config.Config, server *web.Server) {
	if conf.PreviewRoom == "" {
		return
	}
	opts := capture.Options{
		URL:        captureURL(conf.Listen, conf.PreviewRoom),
		OutputPath: server.PreviewPath(),
	}
	if err := capture.GridPNG(ctx, opts); err != nil {
		appLog.Error("grid capture failed", err, "room", conf.PreviewRoom)
		return
	}
	appLog.Info("grid preview captured", "room", conf.PreviewRoom, "path", opts.OutputPath)
}

// captureURL builds the kiosk URL for the local grid page. Wildcard listen
// addresses are rewritten to loopback for the headless browser.
func captureURL(listen, room string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		host, port = "127.0.0.1", "8080"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/?room=" + url.QueryEscape(room)
}

func shutdown(httpServer *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLog.Error("http shutdown error", err)
	}
}

// applyEnvOverrides layers environment variables (possibly from .env) over
// the file config, for deployments where the YAML is baked into an image.
func applyEnvOverrides(conf *config.Config) {
	if v := os.Getenv("CLASSFREE_LISTEN"); v != "" {
		conf.Listen = v
	}
	if v := os.Getenv("CLASSFREE_DATA_URL"); v != "" {
		conf.Source.URL = v
	}
	if v := os.Getenv("CLASSFREE_LOG_LEVEL"); v != "" {
		conf.LogLevel = v
	}
	conf.Normalize()
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/classfree/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one fetch+index(+capture) cycle and exit")

	flag.Parse()

	return cfg
}
