package config

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36"

type Config struct {
	DataDir    string
	ChromePath string
	UserAgent  string
	ProxyURL   string

	PollInterval        time.Duration
	GraceCheckpoints    int
	ExtractionTimeout   time.Duration
	SettleQuiet         time.Duration
	ClaimTimeout        time.Duration
	ItemPause           time.Duration
	SourceCheckTimeout  time.Duration
	LoginResolveTimeout time.Duration

	NtfyServer string
	NtfyTopic  string
}

func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using default values")
	}

	dataDir := strings.TrimSpace(os.Getenv("AUTOCLAIMER_DATA_DIR"))
	if dataDir == "" {
		dataDir = "data"
	}

	userAgent := strings.TrimSpace(os.Getenv("BROWSER_USER_AGENT"))
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	ntfyServer := strings.TrimRight(strings.TrimSpace(os.Getenv("NTFY_SERVER")), "/")
	if ntfyServer == "" {
		ntfyServer = "https://ntfy.sh"
	}

	return Config{
		DataDir:    dataDir,
		ChromePath: strings.TrimSpace(os.Getenv("CHROME_PATH")),
		UserAgent:  userAgent,
		ProxyURL:   strings.TrimSpace(os.Getenv("HTTP_PROXY_URL")),

		PollInterval:        seconds(os.Getenv("POLL_INTERVAL_SECONDS"), 90),
		GraceCheckpoints:    parseIntWithDefault(os.Getenv("GRACE_CHECKPOINTS"), 2),
		ExtractionTimeout:   seconds(os.Getenv("EXTRACTION_TIMEOUT_SECONDS"), 60),
		SettleQuiet:         time.Duration(parseIntWithDefault(os.Getenv("SETTLE_QUIET_MS"), 1000)) * time.Millisecond,
		ClaimTimeout:        seconds(os.Getenv("CLAIM_TIMEOUT_SECONDS"), 7),
		ItemPause:           seconds(os.Getenv("ITEM_PAUSE_SECONDS"), 2),
		SourceCheckTimeout:  seconds(os.Getenv("SOURCE_CHECK_TIMEOUT_SECONDS"), 30),
		LoginResolveTimeout: seconds(os.Getenv("LOGIN_RESOLVE_TIMEOUT_SECONDS"), 30),

		NtfyServer: ntfyServer,
		NtfyTopic:  strings.TrimSpace(os.Getenv("NTFY_TOPIC")),
	}
}

func seconds(value string, defaultVal int) time.Duration {
	return time.Duration(parseIntWithDefault(value, defaultVal)) * time.Second
}

func parseIntWithDefault(value string, defaultVal int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultVal
	}
	if v, err := strconv.Atoi(value); err == nil && v >= 0 {
		return v
	}
	return defaultVal
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("data directory required (AUTOCLAIMER_DATA_DIR)")
	}
	if c.PollInterval < 10*time.Second {
		return errors.New("POLL_INTERVAL_SECONDS must be at least 10")
	}
	if c.ExtractionTimeout <= c.SettleQuiet {
		return errors.New("EXTRACTION_TIMEOUT_SECONDS must exceed the settle quiet period")
	}
	if c.ClaimTimeout <= 0 || c.SourceCheckTimeout <= 0 || c.LoginResolveTimeout <= 0 {
		return errors.New("claim, source check and login resolve timeouts must be positive")
	}
	return nil
}

func (c Config) LogPath() string       { return filepath.Join("logs", "app.log") }
func (c Config) CredentialPath() string { return filepath.Join(c.DataDir, "cookies", "credentials.json") }
func (c Config) HistoryPath() string    { return filepath.Join(c.DataDir, "autoclaimer.db") }
func (c Config) SettingsPath() string {
	return filepath.Join(c.DataDir, "AutoClaimer Settings", "settings.json")
}
