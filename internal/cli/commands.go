package cli

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/epasquet/boursobot/internal/analyzer"
	"github.com/epasquet/boursobot/internal/config"
	"github.com/epasquet/boursobot/internal/notify"
	"github.com/epasquet/boursobot/internal/scraper"
	"github.com/epasquet/boursobot/internal/store"
	"github.com/fatih/color"
)

type Commander struct {
	cfg       *config.Config
	runner    *scraper.Runner
	store     store.HistoryStore
	mailer    *notify.Mailer
	scheduler *scraper.Scheduler

	// color
	green  func(a ...interface{}) string
	red    func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	blue   func(a ...interface{}) string
}

func NewCommander(cfg *config.Config, runner *scraper.Runner, st store.HistoryStore, mailer *notify.Mailer) *Commander {
	return &Commander{
		cfg:       cfg,
		runner:    runner,
		store:     st,
		mailer:    mailer,
		scheduler: scraper.NewScheduler(),
		green:     color.New(color.FgGreen).SprintFunc(),
		red:       color.New(color.FgRed).SprintFunc(),
		yellow:    color.New(color.FgYellow).SprintFunc(),
		cyan:      color.New(color.FgCyan).SprintFunc(),
		blue:      color.New(color.FgBlue).SprintFunc(),
	}
}

func (c *Commander) ExecuteCommand(command string, args []string) {
	switch command {
	case "help", "h":
		c.showHelp()
	case "run", "r":
		c.runCycle()
	case "news", "n":
		c.runNews()
	case "watch":
		c.startWatching()
	case "stop":
		c.stopWatching()
	case "status":
		c.showStatus()
	case "history":
		if len(args) == 0 {
			fmt.Printf("%s Usage: history <ticker>\n", c.red("✗"))
			return
		}
		c.showHistory(args[0])
	case "baseline":
		if len(args) == 0 {
			fmt.Printf("%s Usage: baseline <ticker>\n", c.red("✗"))
			return
		}
		c.showBaseline(args[0])
	case "export":
		if len(args) == 0 {
			fmt.Printf("%s Usage: export <ticker>\n", c.red("✗"))
			return
		}
		c.exportHistory(args[0])
	case "stocks":
		c.listStocks()
	case "clear":
		c.clearScreen()
	case "quit", "exit", "q":
		c.quit()
	default:
		fmt.Printf("%s Unknown command: %s\n", c.red("✗"), command)
		fmt.Println("Type 'help' for available commands")
	}
}

func (c *Commander) showHelp() {
	fmt.Println(c.blue("\nAvailable Commands:"))
	fmt.Println("\n" + c.cyan("Basic:"))
	fmt.Println("  help              - Show this help message")
	fmt.Println("  status            - Show current status")
	fmt.Println("  quit              - Exit program")

	fmt.Println("\n" + c.cyan("Scraping:"))
	fmt.Println("  run               - Run one forum cycle and mail alerts")
	fmt.Println("  news              - Run one news cycle and mail headlines")
	fmt.Println("  watch/stop        - Start/stop the scheduled cycle")

	fmt.Println("\n" + c.cyan("Data:"))
	fmt.Println("  history <ticker>  - Show recent history rows")
	fmt.Println("  baseline <ticker> - Show baseline vs current for this hour")
	fmt.Println("  export <ticker>   - Copy a ticker's history to exports/")
	fmt.Println("  stocks            - List configured stocks")
	fmt.Println()
}

// RunCycleOnce runs one forum cycle and sends the alert mails. A mail
// delivery failure is returned so batch mode can treat it as fatal.
func (c *Commander) RunCycleOnce(ref time.Time) error {
	report := c.runner.RunForumCycle(ref)
	crawled := len(c.cfg.ActiveStocks())

	if err := c.mailer.Send(c.cfg.Mail.Recipients,
		notify.ForumSubject(ref), notify.ForumBody(crawled, report.ForumAlerts)); err != nil {
		return err
	}
	if ref.Hour() == c.cfg.Thresholds.PreopenHour {
		if err := c.mailer.Send(c.cfg.Mail.Recipients,
			notify.PreopenSubject(ref), notify.PreopenBody(crawled, report.PreopenAlerts)); err != nil {
			return err
		}
	}
	return nil
}

// RunNewsOnce runs one news cycle and mails the fresh headlines.
func (c *Commander) RunNewsOnce(ref time.Time) error {
	alerts := c.runner.RunNewsCycle(ref)
	crawled := len(c.cfg.ActiveStocks())
	return c.mailer.Send(c.cfg.Mail.Recipients,
		notify.NewsSubject(ref), notify.NewsBody(crawled, alerts))
}

func (c *Commander) runCycle() {
	fmt.Printf("%s Running forum cycle over %d stocks...\n", c.cyan("→"), len(c.cfg.ActiveStocks()))
	if err := c.RunCycleOnce(time.Now()); err != nil {
		fmt.Printf("%s %v\n", c.red("✗"), err)
		return
	}
	fmt.Printf("%s Cycle complete, alerts mailed\n", c.green("✓"))
}

func (c *Commander) runNews() {
	fmt.Printf("%s Running news cycle over %d stocks...\n", c.cyan("→"), len(c.cfg.ActiveStocks()))
	if err := c.RunNewsOnce(time.Now()); err != nil {
		fmt.Printf("%s %v\n", c.red("✗"), err)
		return
	}
	fmt.Printf("%s News cycle complete\n", c.green("✓"))
}

func (c *Commander) startWatching() {
	if c.scheduler.IsActive() {
		fmt.Printf("%s Already watching\n", c.yellow("!"))
		return
	}
	err := c.scheduler.Start(c.cfg.Scrape.Schedule, func() {
		if err := c.RunCycleOnce(time.Now()); err != nil {
			fmt.Printf("\n%s Scheduled cycle: %v\n➜ ", c.red("✗"), err)
		} else {
			fmt.Printf("\n%s Scheduled cycle complete\n➜ ", c.green("✓"))
		}
	})
	if err != nil {
		fmt.Printf("%s %v\n", c.red("✗"), err)
		return
	}
	fmt.Printf("%s Watching on schedule %q\n", c.green("✓"), c.cfg.Scrape.Schedule)
}

func (c *Commander) stopWatching() {
	if !c.scheduler.IsActive() {
		fmt.Printf("%s Not watching\n", c.yellow("!"))
		return
	}
	c.scheduler.Stop()
	fmt.Printf("%s Stopped watching\n", c.green("✓"))
}

func (c *Commander) showStatus() {
	mode := "prod"
	if c.cfg.App.TestMode {
		mode = "test"
	}
	fmt.Println(c.blue("\nStatus:"))
	fmt.Printf("  Mode:     %s\n", mode)
	fmt.Printf("  Stocks:   %d\n", len(c.cfg.ActiveStocks()))
	fmt.Printf("  Storage:  %s\n", c.cfg.Storage.Backend)
	fmt.Printf("  Data dir: %s\n", c.cfg.DataDir())
	if c.scheduler.IsActive() {
		fmt.Printf("  Watching: %s on %q\n", c.green("yes"), c.cfg.Scrape.Schedule)
	} else {
		fmt.Printf("  Watching: %s\n", c.yellow("no"))
	}
	fmt.Println()
}

func (c *Commander) showHistory(ticker string) {
	rows, err := c.store.LoadForum(ticker)
	if err != nil {
		fmt.Printf("%s %v\n", c.red("✗"), err)
		return
	}
	if len(rows) == 0 {
		fmt.Printf("%s No history for %s yet\n", c.yellow("!"), ticker)
		return
	}

	fmt.Println(c.blue(fmt.Sprintf("\nForum history for %s (last %d rows):", ticker, min(len(rows), 20))))
	fmt.Println("  date        hour  new  answers  answered  posts")
	start := len(rows) - 20
	if start < 0 {
		start = 0
	}
	for _, row := range rows[start:] {
		fmt.Printf("  %s  %4d  %3d  %7d  %8d  %5d\n",
			row.Date.Format("2006-01-02"), row.Hour,
			row.NewTopics, row.NewTopicsAnswers, row.TopicsAnsweredToday, row.Posts)
	}
	fmt.Println()
}

func (c *Commander) showBaseline(ticker string) {
	rows, err := c.store.LoadForum(ticker)
	if err != nil {
		fmt.Printf("%s %v\n", c.red("✗"), err)
		return
	}
	now := time.Now()
	baseline, current := analyzer.ForumBaseline(rows, now.Hour(), now, c.cfg.Thresholds.WindowDays)
	fmt.Printf("\n%s hour %02d: baseline %.2f posts, current %.2f posts\n", ticker, now.Hour(), baseline, current)
	if analyzer.IsForumAnomalous(baseline, current, c.cfg.Thresholds.ForumMultiplier) {
		fmt.Printf("%s Above threshold (x%.2f)\n\n", c.red("!"), c.cfg.Thresholds.ForumMultiplier)
	} else {
		fmt.Printf("%s Within normal range\n\n", c.green("✓"))
	}
}

func (c *Commander) exportHistory(ticker string) {
	rows, err := c.store.LoadForum(ticker)
	if err != nil {
		fmt.Printf("%s %v\n", c.red("✗"), err)
		return
	}
	filename, err := exportForumCSV(ticker, rows)
	if err != nil {
		fmt.Printf("%s Export failed: %v\n", c.red("✗"), err)
		return
	}
	fmt.Printf("%s Exported %d rows to %s\n", c.green("✓"), len(rows), filename)
}

func (c *Commander) listStocks() {
	stocks := c.cfg.ActiveStocks()
	fmt.Println(c.blue(fmt.Sprintf("\nConfigured stocks (%d):", len(stocks))))
	for ticker, name := range stocks {
		fmt.Printf("  %-8s %s\n", c.cyan(ticker), name)
	}
	fmt.Println()
}

func (c *Commander) clearScreen() {
	cmd := exec.Command("clear")
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/c", "cls")
	}
	cmd.Stdout = os.Stdout
	cmd.Run()
}

func (c *Commander) quit() {
	c.scheduler.Stop()
	fmt.Println(c.green("Goodbye!"))
	os.Exit(0)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
