package config

import (
	"errors"
	"flag"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration. Flags win over environment
// variables, which win over defaults.
type Config struct {
	Addr        string
	Env         string
	DBType      string
	DBURL       string
	ContentFile string
	StaticDir   string

	CSRFKey   string
	IPSalt    string
	IPEchoURL string

	// TrustedProxies are the reverse proxies allowed to set X-Forwarded-For.
	TrustedProxies []netip.Prefix

	SubmissionBackend string // kv | sheets
	StatusSource      string // static | sheets
	SheetsID          string
	SheetsCredentials string
	StatusCacheTTL    time.Duration

	VotingStatus string
	VotingStart  time.Time
	VotingEnd    time.Time
	VotingNotice string

	ResendKey  string
	ResendFrom string

	TelegramToken  string
	TelegramChatID int64

	AdminPasswordHash string

	SlowQuery   time.Duration
	SlowRequest time.Duration

	LogLevel  string
	LogFormat string
}

// IsProduction reports whether UKCCU_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// LoadDotEnv reads .env into the environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load parses flags from args with environment fallback.
// PRE: LoadDotEnv has run if a .env file should be honoured
// POST: Returns a validated Config or the first problem found
func Load(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("ukccu", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", "", "listen address (UKCCU_ADDR)")
	fs.StringVar(&cfg.DBType, "db-type", "", "sqlite or postgres (UKCCU_DB_TYPE)")
	fs.StringVar(&cfg.DBURL, "db", "", "database path or DSN (UKCCU_DB_URL)")
	fs.StringVar(&cfg.ContentFile, "content", "", "YAML content catalog (UKCCU_CONTENT_FILE)")
	fs.StringVar(&cfg.StaticDir, "static", "", "static asset directory (UKCCU_STATIC_DIR)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Addr = firstNonEmpty(cfg.Addr, os.Getenv("UKCCU_ADDR"), ":8080")
	cfg.Env = firstNonEmpty(os.Getenv("UKCCU_ENV"), "development")
	cfg.DBType = firstNonEmpty(cfg.DBType, os.Getenv("UKCCU_DB_TYPE"), "sqlite")
	cfg.DBURL = firstNonEmpty(cfg.DBURL, os.Getenv("UKCCU_DB_URL"), "ukccu.db")
	cfg.ContentFile = firstNonEmpty(cfg.ContentFile, os.Getenv("UKCCU_CONTENT_FILE"))
	cfg.StaticDir = firstNonEmpty(cfg.StaticDir, os.Getenv("UKCCU_STATIC_DIR"), "static")

	cfg.CSRFKey = os.Getenv("UKCCU_CSRF_KEY")
	cfg.IPSalt = os.Getenv("UKCCU_IP_SALT")
	cfg.IPEchoURL = os.Getenv("UKCCU_IP_ECHO_URL")

	cfg.SubmissionBackend = strings.ToLower(firstNonEmpty(os.Getenv("UKCCU_SUBMISSION_BACKEND"), "kv"))
	cfg.StatusSource = strings.ToLower(firstNonEmpty(os.Getenv("UKCCU_STATUS_SOURCE"), "static"))
	cfg.SheetsID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	cfg.SheetsCredentials = os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")

	cfg.VotingStatus = strings.ToUpper(firstNonEmpty(os.Getenv("UKCCU_VOTING_STATUS"), "OPEN"))
	cfg.VotingNotice = firstNonEmpty(os.Getenv("UKCCU_VOTING_NOTICE"), "Nominations are currently open for all executive positions.")

	cfg.ResendKey = os.Getenv("UKCCU_RESEND_KEY")
	cfg.ResendFrom = firstNonEmpty(os.Getenv("UKCCU_RESEND_FROM"), "UKCCU <noreply@ukccu.org>")
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.AdminPasswordHash = os.Getenv("UKCCU_ADMIN_PASSWORD_HASH")

	cfg.LogLevel = strings.ToLower(firstNonEmpty(os.Getenv("UKCCU_LOG_LEVEL"), "info"))
	cfg.LogFormat = strings.ToLower(firstNonEmpty(os.Getenv("UKCCU_LOG_FORMAT"), "text"))

	var err error
	if cfg.VotingStart, err = envTime("UKCCU_VOTING_START", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		return Config{}, err
	}
	if cfg.VotingEnd, err = envTime("UKCCU_VOTING_END", time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC)); err != nil {
		return Config{}, err
	}
	if cfg.SlowQuery, err = envMillis("UKCCU_SLOW_QUERY_MS", 50); err != nil {
		return Config{}, err
	}
	if cfg.SlowRequest, err = envMillis("UKCCU_SLOW_REQUEST_MS", 500); err != nil {
		return Config{}, err
	}
	if cfg.StatusCacheTTL, err = envMillis("UKCCU_STATUS_CACHE_MS", 30000); err != nil {
		return Config{}, err
	}
	if cfg.TrustedProxies, err = parsePrefixes("UKCCU_TRUSTED_PROXIES"); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		if cfg.TelegramChatID, err = strconv.ParseInt(v, 10, 64); err != nil {
			return Config{}, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.SubmissionBackend {
	case "kv", "sheets":
	default:
		return fmt.Errorf("UKCCU_SUBMISSION_BACKEND must be kv or sheets, got %q", c.SubmissionBackend)
	}
	switch c.StatusSource {
	case "static", "sheets":
	default:
		return fmt.Errorf("UKCCU_STATUS_SOURCE must be static or sheets, got %q", c.StatusSource)
	}
	if (c.SubmissionBackend == "sheets" || c.StatusSource == "sheets") && (c.SheetsID == "" || c.SheetsCredentials == "") {
		return errors.New("GOOGLE_SHEETS_SPREADSHEET_ID and GOOGLE_SERVICE_ACCOUNT_JSON are required for the sheets backend")
	}
	if !c.VotingEnd.After(c.VotingStart) {
		return errors.New("UKCCU_VOTING_END must be after UKCCU_VOTING_START")
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	if c.IsProduction() && c.IPSalt == "" {
		return errors.New("UKCCU_IP_SALT is required in production")
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func envTime(key string, def time.Time) (time.Time, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", key, err)
	}
	return t, nil
}

// parsePrefixes reads a comma-separated list of CIDRs or bare addresses.
func parsePrefixes(key string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, part := range strings.Split(os.Getenv(key), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "/") {
			p, err := netip.ParsePrefix(part)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", key, err)
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(part)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		out = append(out, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
	}
	return out, nil
}

func envMillis(key string, def int) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(def) * time.Millisecond, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return time.Duration(n) * time.Millisecond, nil
}
