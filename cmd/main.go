package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/browser"

	"github.com/tracklab/posefilter/internal/api"
	"github.com/tracklab/posefilter/internal/config"
)

func main() {
	useApi := flag.Bool("api", false, "run the HTTP control server")
	configPath := flag.String("config", "", "config file path (default path is used when empty)")
	port := flag.Int("port", 8080, "control server port")
	open := flag.Bool("open", false, "open the control page in a browser (implies -api)")
	flag.Parse()

	// Resolve the config file path.
	cfgPath := *configPath
	if cfgPath == "" {
		configDir, err := config.GetDefaultConfigDir()
		if err == nil {
			cfgPath = filepath.Join(configDir, "config.toml")
		}
	}

	var cfg *config.Config
	if cfgPath != "" {
		var err error
		cfg, err = config.LoadConfig(cfgPath)
		if err != nil {
			fmt.Printf("failed to load config: %v\nfalling back to defaults\n", err)
			cfg = config.DefaultConfig()
		} else {
			fmt.Printf("loaded config: %s\n", cfgPath)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	store := config.NewStore(cfg)

	// Pick up external edits of the config file while running.
	if cfgPath != "" {
		watcher, err := config.WatchConfig(cfgPath, store)
		if err != nil {
			log.Printf("config watching disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	handleSignals()

	if *useApi || *open {
		runControlServer(store, cfgPath, *port, *open)
	} else {
		runHeadless(store)
	}
}

// runControlServer starts the tracking service and serves the control
// API until the process is terminated.
func runControlServer(store *config.Store, cfgPath string, port int, open bool) {
	server := api.NewServer(store, cfgPath, port)

	if err := server.Service().Start(); err != nil {
		log.Printf("tracking service not started: %v", err)
	}

	if open {
		url := fmt.Sprintf("http://localhost:%d/", port)
		if err := browser.OpenURL(url); err != nil {
			log.Printf("failed to open %s: %v", url, err)
		}
	}

	if err := server.Start(); err != nil {
		log.Fatalf("control server failed: %v", err)
	}
}

// runHeadless runs the tracking service without the control API.
func runHeadless(store *config.Store) {
	service := api.NewTrackingService(store)

	if err := service.Start(); err != nil {
		fmt.Printf("failed to start tracking service: %v\n", err)
		os.Exit(1)
	}

	// Block until a signal terminates the process.
	select {}
}

func handleSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("shutting down...")
		os.Exit(0)
	}()
}
