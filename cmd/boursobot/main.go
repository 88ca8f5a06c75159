package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/epasquet/boursobot/internal/cli"
	"github.com/epasquet/boursobot/internal/config"
	"github.com/epasquet/boursobot/internal/notify"
	"github.com/epasquet/boursobot/internal/scraper"
	"github.com/epasquet/boursobot/internal/store"
	"github.com/epasquet/boursobot/internal/trace"
	"github.com/fatih/color"
)

func main() {
	var (
		configFile = flag.String("config", "configs/config.yaml", "Configuration file path")
		testMode   = flag.Bool("test", false, "Use the test stock list and test data directory")
		logLevel   = flag.String("loglevel", "", "Log level: debug, info or warning")
		runFlag    = flag.Bool("run", false, "Run one forum cycle and exit")
		newsFlag   = flag.Bool("news", false, "Run one news cycle and exit")
		watchFlag  = flag.Bool("watch", false, "Run forum cycles on the configured schedule")
		exportFlag = flag.String("export", "", "Export a ticker's forum history and exit")
		listFlag   = flag.Bool("list", false, "List configured stocks")
	)
	flag.Parse()

	if err := loadConfig(*configFile); err != nil {
		log.Printf("Warning: Could not load config file %s: %v", *configFile, err)
		log.Println("Using default configuration")
		config.LoadDefault()
	}

	cfg := config.Get()
	if *testMode {
		cfg.App.TestMode = true
	}
	if *logLevel != "" {
		cfg.App.LogLevel = *logLevel
	}
	trace.SetLevel(trace.ParseLevel(cfg.App.LogLevel))

	if closeLog := setupLogFile(cfg); closeLog != nil {
		defer closeLog()
	}

	historyStore, err := store.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage: ", err)
	}
	defer historyStore.Close()

	fetcher := scraper.NewHTTPFetcher(cfg.Scrape)
	runner := scraper.NewRunner(cfg, fetcher, historyStore)
	mailer := notify.NewMailer(cfg.Mail)
	commander := cli.NewCommander(cfg, runner, historyStore, mailer)

	switch {
	case *listFlag:
		commander.ExecuteCommand("stocks", nil)
	case *exportFlag != "":
		commander.ExecuteCommand("export", []string{*exportFlag})
	case *runFlag:
		// an unsendable alert mail is fatal; the next scheduled run recovers
		if err := commander.RunCycleOnce(time.Now()); err != nil {
			log.Fatal("Failed to send alerts: ", err)
		}
	case *newsFlag:
		if err := commander.RunNewsOnce(time.Now()); err != nil {
			log.Fatal("Failed to send news mail: ", err)
		}
	case *watchFlag:
		commander.ExecuteCommand("watch", nil)
		select {}
	default:
		printWelcome(cfg)
		startInteractiveMode(commander)
	}
}

func loadConfig(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		execPath, _ := os.Executable()
		execDir := filepath.Dir(execPath)
		altPath := filepath.Join(execDir, path)

		if _, err := os.Stat(altPath); err == nil {
			path = altPath
		} else {
			return fmt.Errorf("config file not found: %s", path)
		}
	}

	return config.Load(path)
}

// setupLogFile sends the standard logger to a per-run file under the base
// directory, keeping stderr for interactive feedback.
func setupLogFile(cfg *config.Config) func() {
	logDir := filepath.Join(cfg.App.BaseDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Printf("Warning: could not create log directory: %v", err)
		return nil
	}
	name := filepath.Join(logDir, fmt.Sprintf("boursobot_%s.log", time.Now().Format("20060102_150405")))
	file, err := os.Create(name)
	if err != nil {
		log.Printf("Warning: could not create log file: %v", err)
		return nil
	}
	log.SetOutput(io.MultiWriter(os.Stderr, file))
	return func() { file.Close() }
}

func printWelcome(cfg *config.Config) {
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Println(cyan("╔══════════════════════════════════════════╗"))
	fmt.Println(cyan("║       Boursorama Forum Watcher           ║"))
	fmt.Println(cyan("╚══════════════════════════════════════════╝"))
	fmt.Println()
	fmt.Printf("Watching %d stocks\n", len(cfg.ActiveStocks()))
	fmt.Println("Type 'help' for available commands")
}

func startInteractiveMode(commander *cli.Commander) {
	scanner := bufio.NewScanner(os.Stdin)
	yellow := color.New(color.FgYellow).SprintFunc()

	for {
		fmt.Print(yellow("\n➜ "))
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		command := strings.ToLower(parts[0])
		args := parts[1:]

		commander.ExecuteCommand(command, args)
	}
}
