package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/1broseidon/wintile/internal/arrange"
	"github.com/1broseidon/wintile/internal/config"
	"github.com/1broseidon/wintile/internal/daemon"
	"github.com/1broseidon/wintile/internal/hotkeys"
	"github.com/1broseidon/wintile/internal/ipc"
	"github.com/1broseidon/wintile/internal/launcher"
	"github.com/1broseidon/wintile/internal/platform"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wintile daemon [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run in the foreground: listen for hotkeys, serve IPC and keep undo history.")
	}
	configPath := fs.String("config", "", "Config file path (default: ~/.config/wintile/config.yaml)")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		return 1
	}
	log.Printf("Configuration loaded (default layout: %s, hotkeys: %d)", cfg.DefaultLayout, len(cfg.Hotkeys))

	applyDisplayEnv(cfg)
	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		log.Printf("Failed to connect to display: %v", err)
		return 1
	}
	defer backend.Disconnect()

	logger := daemon.NewLogger(os.Stderr, cfg.LogLevel)

	organizer := arrange.NewOrganizer(backend, nil, cfg)
	log.Printf("Organizer initialized (layouts: %v)", organizer.Engine().Names())

	source, err := hotkeys.NewX11Source(backend)
	if err != nil {
		log.Printf("Failed to create key source: %v", err)
		return 1
	}
	engine := hotkeys.NewEngine(source)
	dispatcher := daemon.NewDispatcher(organizer, nil, logger)

	var bindMu sync.Mutex
	rebind := func(cfg *config.Config) {
		bindMu.Lock()
		defer bindMu.Unlock()

		if err := engine.Stop(); err != nil {
			log.Printf("Warning: failed to release hotkeys: %v", err)
		}
		chooser, err := launcher.New(cfg.Launcher)
		if err != nil {
			log.Printf("Warning: menu hotkey unavailable: %v", err)
		}
		dispatcher.SetChooser(chooser)

		n, err := daemon.BindHotkeys(engine, cfg, dispatcher)
		if err != nil {
			log.Printf("Warning: hotkeys not registered: %v", err)
			return
		}
		if n == 0 {
			log.Println("Hotkeys disabled")
			return
		}
		if err := engine.Start(); err != nil {
			log.Printf("Warning: failed to grab hotkeys: %v", err)
			return
		}
		log.Printf("Registered %d hotkey(s): %v", n, engine.Bindings())
	}
	rebind(cfg)
	defer engine.Stop()

	reloadChan := make(chan struct{}, 1)

	ipcServer, err := ipc.NewServer(organizer, backend, reloadChan)
	if err != nil {
		log.Printf("Failed to create IPC server: %v", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		log.Printf("Failed to start IPC server: %v", err)
		return 1
	}
	defer ipcServer.Stop()

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: 10 * time.Second,
		Logger:   logger,
	}, organizer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reconciler.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					newCfg, err := loadConfig(organizer.Config().Path())
					if err != nil {
						log.Printf("Config reload failed: %v", err)
						continue
					}
					organizer.UpdateConfig(newCfg)
					rebind(newCfg)
					log.Println("Config reloaded successfully")

				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down wintile daemon...")
					cancel()
					backend.StopEventLoop()
					return
				}

			case <-reloadChan:
				// Config was reloaded via IPC.
				newCfg := organizer.Config()
				logger.Info("config reloaded via IPC", "path", newCfg.Path())
				rebind(newCfg)
			}
		}
	}()

	logger.Info("wintile daemon started", "socket", ipcServer.SocketPath(), "log_level", daemon.ParseLevel(cfg.LogLevel))
	log.Println("Entering event loop...")
	backend.EventLoop()
	return 0
}
