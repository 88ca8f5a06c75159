package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig         `yaml:"app"`
	Scrape     ScrapeConfig      `yaml:"scrape"`
	Selectors  SelectorConfig    `yaml:"selectors"`
	Thresholds ThresholdConfig   `yaml:"thresholds"`
	Storage    StorageConfig     `yaml:"storage"`
	Mail       MailConfig        `yaml:"mail"`
	Stocks     map[string]string `yaml:"stocks"`
	StocksTest map[string]string `yaml:"stocks_test"`
}

type AppConfig struct {
	BaseDir  string `yaml:"base_dir"`
	LogLevel string `yaml:"log_level"`
	TestMode bool   `yaml:"test_mode"`
}

type ScrapeConfig struct {
	ForumURLTemplate string        `yaml:"forum_url_template"`
	NewsURLTemplate  string        `yaml:"news_url_template"`
	TickerPrefix     string        `yaml:"ticker_prefix"`
	AlternatePrefix  string        `yaml:"alternate_prefix"`
	AlternateTickers []string      `yaml:"alternate_prefix_tickers"`
	UserAgent        string        `yaml:"user_agent"`
	Timeout          time.Duration `yaml:"timeout"`
	MaxDelay         time.Duration `yaml:"max_delay"`
	Schedule         string        `yaml:"schedule"`
}

// SelectorConfig carries the exact class attribute values of the page
// elements the extractor reads. The markup uses long multi-class strings;
// matching is on the full attribute value, not individual classes.
type SelectorConfig struct {
	Topic      string `yaml:"topic"`
	LastAnswer string `yaml:"last_answer"`
	Answers    string `yaml:"answers"`
	Close      string `yaml:"close"`
	Preopen    string `yaml:"preopen"`
	NewsAuthor string `yaml:"news_author"`
	NewsTime   string `yaml:"news_time"`
	NewsTitle  string `yaml:"news_title"`
}

type ThresholdConfig struct {
	ForumMultiplier  float64 `yaml:"forum_multiplier"`
	PreopenLow       float64 `yaml:"preopen_low"`
	PreopenHigh      float64 `yaml:"preopen_high"`
	WindowDays       int     `yaml:"window_days"`
	PreopenHour      int     `yaml:"preopen_hour"`
	NewsRecencyHours int     `yaml:"news_recency_hours"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend"`
	PostgresURL string `yaml:"postgres_url"`
}

type MailConfig struct {
	Host       string   `yaml:"host"`
	Port       int      `yaml:"port"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	From       string   `yaml:"from"`
	Recipients []string `yaml:"recipients"`
}

var cfg *Config

func Load(path string) error {
	// .env may carry SMTP credentials; a missing file is fine
	_ = godotenv.Load()

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg = &Config{}
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	setDefaults()
	applyEnv()

	return nil
}

func Get() *Config {
	if cfg == nil {
		LoadDefault()
	}
	return cfg
}

// ActiveStocks returns the ticker list the run should iterate, honouring
// test mode.
func (c *Config) ActiveStocks() map[string]string {
	if c.App.TestMode {
		return c.StocksTest
	}
	return c.Stocks
}

// DataDir is the storage root for the current mode. Test mode writes to a
// sibling directory so test runs never touch production history.
func (c *Config) DataDir() string {
	suffix := ""
	if c.App.TestMode {
		suffix = "_test"
	}
	return filepath.Join(c.App.BaseDir, "data"+suffix)
}

// ForumURL maps a ticker to its board page. A handful of Euronext Growth
// tickers live under an alternate symbol prefix.
func (c *Config) ForumURL(ticker string) string {
	return fmt.Sprintf(c.Scrape.ForumURLTemplate, c.symbolPrefix(ticker)+ticker)
}

func (c *Config) NewsURL(ticker string) string {
	return fmt.Sprintf(c.Scrape.NewsURLTemplate, c.symbolPrefix(ticker)+ticker)
}

func (c *Config) symbolPrefix(ticker string) string {
	for _, t := range c.Scrape.AlternateTickers {
		if t == ticker {
			return c.Scrape.AlternatePrefix
		}
	}
	return c.Scrape.TickerPrefix
}

func LoadDefault() {
	_ = godotenv.Load()

	cfg = &Config{
		Stocks:     map[string]string{},
		StocksTest: map[string]string{},
	}
	setDefaults()
	applyEnv()
}

func setDefaults() {
	if cfg.App.BaseDir == "" {
		cfg.App.BaseDir = "."
	}
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.Scrape.ForumURLTemplate == "" {
		cfg.Scrape.ForumURLTemplate = "https://www.boursorama.com/bourse/forum/%s/"
	}
	if cfg.Scrape.NewsURLTemplate == "" {
		cfg.Scrape.NewsURLTemplate = "https://www.boursorama.com/cours/actualites/%s/"
	}
	if cfg.Scrape.TickerPrefix == "" {
		cfg.Scrape.TickerPrefix = "1rP"
	}
	if cfg.Scrape.AlternatePrefix == "" {
		cfg.Scrape.AlternatePrefix = "1rEP"
	}
	if cfg.Scrape.AlternateTickers == nil {
		cfg.Scrape.AlternateTickers = []string{"ALCLS", "ALGEN"}
	}
	if cfg.Scrape.UserAgent == "" {
		cfg.Scrape.UserAgent = "boursobot/1.0"
	}
	if cfg.Scrape.Timeout == 0 {
		cfg.Scrape.Timeout = 30 * time.Second
	}
	if cfg.Scrape.MaxDelay == 0 {
		cfg.Scrape.MaxDelay = 12 * time.Second
	}
	if cfg.Scrape.Schedule == "" {
		cfg.Scrape.Schedule = "0 * * * *"
	}
	if cfg.Selectors.Topic == "" {
		cfg.Selectors.Topic = "c-table__cell c-table__cell--v-medium c-table__cell--dotted c-table__cell--wrap"
	}
	if cfg.Selectors.LastAnswer == "" {
		cfg.Selectors.LastAnswer = "c-table__cell c-table__cell--v-medium c-table__cell--dotted c-table__cell--wrap c-my-list__title u-text-left"
	}
	if cfg.Selectors.Answers == "" {
		cfg.Selectors.Answers = "c-table__cell c-table__cell--v-medium c-table__cell--dotted c-table__cell--wrap u-text-right c-table__comments"
	}
	if cfg.Selectors.Close == "" {
		cfg.Selectors.Close = "c-instrument c-instrument--last"
	}
	if cfg.Selectors.Preopen == "" {
		cfg.Selectors.Preopen = "c-faceplate__indicative-value"
	}
	if cfg.Selectors.NewsAuthor == "" {
		cfg.Selectors.NewsAuthor = "c-list-details-news__author"
	}
	if cfg.Selectors.NewsTime == "" {
		cfg.Selectors.NewsTime = "c-source__time"
	}
	if cfg.Selectors.NewsTitle == "" {
		cfg.Selectors.NewsTitle = "c-list-details-news__title"
	}
	if cfg.Thresholds.ForumMultiplier == 0 {
		cfg.Thresholds.ForumMultiplier = 1.1
	}
	if cfg.Thresholds.PreopenLow == 0 {
		cfg.Thresholds.PreopenLow = 0.9
	}
	if cfg.Thresholds.PreopenHigh == 0 {
		cfg.Thresholds.PreopenHigh = 1.1
	}
	if cfg.Thresholds.WindowDays == 0 {
		cfg.Thresholds.WindowDays = 60
	}
	if cfg.Thresholds.PreopenHour == 0 {
		cfg.Thresholds.PreopenHour = 8
	}
	if cfg.Thresholds.NewsRecencyHours == 0 {
		cfg.Thresholds.NewsRecencyHours = 14
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "csv"
	}
	if cfg.Mail.Host == "" {
		cfg.Mail.Host = "localhost"
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 25
	}
}

// applyEnv lets SMTP and database credentials come from the environment
// (or .env) so they never have to live in the YAML file.
func applyEnv() {
	if v := os.Getenv("BOURSOBOT_SMTP_HOST"); v != "" {
		cfg.Mail.Host = v
	}
	if v := os.Getenv("BOURSOBOT_SMTP_USERNAME"); v != "" {
		cfg.Mail.Username = v
	}
	if v := os.Getenv("BOURSOBOT_SMTP_PASSWORD"); v != "" {
		cfg.Mail.Password = v
	}
	if v := os.Getenv("BOURSOBOT_SMTP_FROM"); v != "" {
		cfg.Mail.From = v
	}
	if v := os.Getenv("BOURSOBOT_POSTGRES_URL"); v != "" {
		cfg.Storage.PostgresURL = v
	}
}
