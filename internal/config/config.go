// Package config resolves the CLI surface spec.md §6 defines, layering
// pflag-parsed flags over .env/environment defaults. Grounded on two
// patterns from the pack: the godotenv + getEnv/getEnvInt/getEnvBool
// helper trio from Sergey-Bar-Alfred's gateway config.go and
// smallbiznis-valora's internal/config/config.go, and spf13/pflag for the
// flag layer itself — this is a batch CLI, unlike the pack's server
// configs, so flags take precedence where the teacher's repos only ever
// read from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

// windowStartLayout is the accepted --signal-window-start date format.
const windowStartLayout = "2006-01-02"

// Config holds every resolved setting for one run of the engine.
type Config struct {
	DataDir     string
	OutputPath  string
	MemoryLimit string // raw size string, e.g. "2GB"; parsed by MemoryLimitBytes
	Signals     string // "all" or a comma list of detector IDs
	NoGPU       bool

	// SignalWindowStart is the configured start date S3 restricts its
	// population to (spec.md §4.2 S3), as "YYYY-MM-DD". Empty means no
	// restriction.
	SignalWindowStart string

	Parallel     bool
	ParallelMax  int
	ProgressAddr string
	AuditDSN     string

	EnrichBaseURL string // optional NPPES-shaped lookup API for internal/enrich

	LogLevel string
}

// Load parses CLI flags (falling back to environment variables and, before
// that, a local .env file) into a Config. Mirrors the teacher pack's
// load-then-override order: godotenv.Load is best-effort and silently
// ignored when no .env file exists, exactly as both grounding configs do.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("medicaid-fraud-detector", flag.ContinueOnError)

	dataDir := fs.String("data-dir", getEnv("FRAUD_DATA_DIR", "."), "directory containing the spending/exclusion/registry/census input files")
	output := fs.String("output", getEnv("FRAUD_OUTPUT", "fraud_signals.json"), "path to write the JSON report to")
	memLimit := fs.String("memory-limit", getEnv("FRAUD_MEMORY_LIMIT", "2GB"), "soft memory ceiling, e.g. 2GB, 512MB")
	signalsFlag := fs.String("signals", getEnv("FRAUD_SIGNALS", "all"), `"all" or a comma list of detector IDs (1-14)`)
	noGPU := fs.Bool("no-gpu", getEnvBool("FRAUD_NO_GPU", false), "accepted, no-op; documents that no GPU is used")
	windowStart := fs.String("signal-window-start", getEnv("FRAUD_SIGNAL_WINDOW_START", ""), "YYYY-MM-DD; restricts S3 to providers whose first billing month is on/after this date (unset = no restriction)")

	parallel := fs.Bool("parallel", getEnvBool("FRAUD_PARALLEL", false), "run detectors with a bounded worker pool instead of sequentially")
	parallelMax := fs.Int("parallel-max", getEnvInt("FRAUD_PARALLEL_MAX", 4), "maximum concurrent detectors when --parallel is set")
	progressAddr := fs.String("progress-addr", getEnv("FRAUD_PROGRESS_ADDR", ""), "host:port to serve the optional progress API on; unset disables it")
	auditDSN := fs.String("audit-dsn", getEnv("DATABASE_URL", ""), "PostgreSQL DSN for optional audit persistence; unset disables it")

	enrichBaseURL := fs.String("enrich-url", getEnv("FRAUD_ENRICH_URL", ""), "optional NPI registry lookup API base URL for identity enrichment")
	logLevel := fs.String("log-level", getEnv("LOG_LEVEL", "info"), "zerolog level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: parse flags: %w", err)
	}

	cfg := &Config{
		DataDir:           *dataDir,
		OutputPath:        *output,
		MemoryLimit:       *memLimit,
		Signals:           *signalsFlag,
		NoGPU:             *noGPU,
		SignalWindowStart: *windowStart,
		Parallel:          *parallel,
		ParallelMax:       *parallelMax,
		ProgressAddr:      *progressAddr,
		AuditDSN:          *auditDSN,
		EnrichBaseURL:     *enrichBaseURL,
		LogLevel:          *logLevel,
	}

	if _, err := cfg.MemoryLimitBytes(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if _, err := cfg.SignalWindowStartDate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// SignalWindowStartDate parses SignalWindowStart into a time.Time, or
// returns the zero time when unset (meaning no restriction).
func (c *Config) SignalWindowStartDate() (time.Time, error) {
	raw := strings.TrimSpace(c.SignalWindowStart)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(windowStartLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --signal-window-start %q: %w", c.SignalWindowStart, err)
	}
	return t, nil
}

// MemoryLimitBytes parses MemoryLimit ("2GB", "512MB", "1048576") into
// bytes. Only KB/MB/GB suffixes (case-insensitive) and bare byte counts
// are accepted, matching spec.md §6's "<size>" without a defined grammar
// beyond its own "2GB" example.
func (c *Config) MemoryLimitBytes() (int64, error) {
	raw := strings.TrimSpace(c.MemoryLimit)
	upper := strings.ToUpper(raw)

	var multiplier int64 = 1
	var numeric string
	switch {
	case strings.HasSuffix(upper, "GB"):
		multiplier = 1 << 30
		numeric = raw[:len(raw)-2]
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1 << 20
		numeric = raw[:len(raw)-2]
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1 << 10
		numeric = raw[:len(raw)-2]
	default:
		numeric = raw
	}

	n, err := strconv.ParseInt(strings.TrimSpace(numeric), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid memory-limit %q: %w", c.MemoryLimit, err)
	}
	return n * multiplier, nil
}

// SelectedDetectorIDs parses the --signals flag into a set of detector IDs,
// or nil when every detector is selected.
func (c *Config) SelectedDetectorIDs() (map[int]bool, error) {
	if strings.EqualFold(strings.TrimSpace(c.Signals), "all") || c.Signals == "" {
		return nil, nil
	}
	ids := map[int]bool{}
	for _, part := range strings.Split(c.Signals, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid --signals entry %q: %w", part, err)
		}
		ids[id] = true
	}
	return ids, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
