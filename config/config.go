package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/camden-git/castingvitrine/layout"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const DefaultPlaceholdersSubDir = "placeholders"

const (
	SourceStatic = "static"
	SourceCMS    = "cms"

	PageSizeModeTiers   = "tiers"
	PageSizeModeColumns = "columns"
)

const (
	defaultPort                 = "8080"
	defaultPlaceholderQueueSize = 200
	defaultNumPlaceholderWorker = 2
	defaultPlaceholderCacheSize = 2048
	defaultSessionTTLMinutes    = 30
	defaultCMSPageSize          = 100
	defaultCMSTimeoutSeconds    = 10
	defaultRowsPerPage          = 3
	defaultPageSize             = 12
)

type Config struct {
	Port string

	// database path (sqlite cache of the loaded talents)
	DatabasePath string

	// media storage configuration
	MediaStoragePath   string // root for generated assets
	PlaceholdersPath   string // full-calculated path for rendered placeholders
	PlaceholdersSubDir string

	// talent source
	TalentSource  string
	CMSBaseURL    string
	CMSAPIToken   string
	CMSCollection string
	CMSPageSize   int
	CMSTimeout    time.Duration

	AllowedOrigins []string

	// page size policy
	PageSizeMode    string
	PageSizeSmall   int
	PageSizeMedium  int
	PageSizeLarge   int
	RowsPerPage     int
	DefaultPageSize int // used when a request carries no viewport width
	BreakpointSmall int
	BreakpointLarge int

	// filter bar display mode
	MobileBreakpoint        int
	ScrollExpandThreshold   int
	ScrollCollapseThreshold int
	TransitionLock          time.Duration

	// worker settings
	PlaceholderQueueSize  int
	NumPlaceholderWorkers int
	PlaceholderCacheLimit int // most placeholder files kept on disk

	SessionTTL time.Duration
}

// settings layers the environment over the optional YAML file named by CONFIG_FILE. File keys
// are the variable names in lower case, e.g. page_size_small: 10.
type settings struct {
	k *koanf.Koanf
}

func loadSettings() (*settings, error) {
	k := koanf.New(".")

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file '%s': %w", path, err)
		}
		log.Printf("Loaded configuration file %s", path)
	}

	// empty variables count as unset, so they do not mask the file
	envProvider := env.Provider("", ".", func(s string) string {
		if os.Getenv(s) == "" {
			return ""
		}
		return strings.ToLower(s)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	return &settings{k: k}, nil
}

func (s *settings) getEnvOrDefault(key, defaultValue string) string {
	value := s.k.String(strings.ToLower(key))
	if value == "" {
		return defaultValue
	}
	return value
}

func (s *settings) getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := s.getEnvOrDefault(envVar, "")
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

// getListOrDefault accepts a YAML sequence or a comma separated string.
func (s *settings) getListOrDefault(key, defaultValue string) []string {
	if _, ok := s.k.Get(strings.ToLower(key)).([]interface{}); ok {
		return splitList(strings.Join(s.k.Strings(strings.ToLower(key)), ","))
	}
	return splitList(s.getEnvOrDefault(key, defaultValue))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func LoadConfig() (Config, error) {
	src, err := loadSettings()
	if err != nil {
		return Config{}, err
	}

	mediaStorage := src.getEnvOrDefault("MEDIA_STORAGE_PATH", filepath.Join(".", "media_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for media storage '%s': %w", mediaStorage, err)
	}

	placeholderSubDir := src.getEnvOrDefault("PLACEHOLDERS_SUBDIR", DefaultPlaceholdersSubDir)
	if strings.Contains(placeholderSubDir, "..") || filepath.IsAbs(placeholderSubDir) {
		return Config{}, fmt.Errorf("PLACEHOLDERS_SUBDIR '%s' must be a relative directory name", placeholderSubDir)
	}

	cfg := Config{
		Port:               src.getEnvOrDefault("PORT", defaultPort),
		DatabasePath:       src.getEnvOrDefault("DATABASE_PATH", "talents.db"),
		MediaStoragePath:   absMediaStorage,
		PlaceholdersPath:   filepath.Join(absMediaStorage, placeholderSubDir),
		PlaceholdersSubDir: placeholderSubDir,

		TalentSource:  strings.ToLower(src.getEnvOrDefault("TALENT_SOURCE", SourceStatic)),
		CMSBaseURL:    src.getEnvOrDefault("CMS_BASE_URL", ""),
		CMSAPIToken:   src.getEnvOrDefault("CMS_API_TOKEN", ""),
		CMSCollection: src.getEnvOrDefault("CMS_COLLECTION", "talents"),
		CMSPageSize:   src.getEnvIntOrDefault("CMS_PAGE_SIZE", defaultCMSPageSize),
		CMSTimeout:    time.Duration(src.getEnvIntOrDefault("CMS_TIMEOUT_SECONDS", defaultCMSTimeoutSeconds)) * time.Second,

		AllowedOrigins: src.getListOrDefault("ALLOWED_ORIGINS", "http://localhost:3000"),

		PageSizeMode:    strings.ToLower(src.getEnvOrDefault("PAGE_SIZE_MODE", PageSizeModeTiers)),
		PageSizeSmall:   src.getEnvIntOrDefault("PAGE_SIZE_SMALL", 8),
		PageSizeMedium:  src.getEnvIntOrDefault("PAGE_SIZE_MEDIUM", 12),
		PageSizeLarge:   src.getEnvIntOrDefault("PAGE_SIZE_LARGE", 20),
		RowsPerPage:     src.getEnvIntOrDefault("ROWS_PER_PAGE", defaultRowsPerPage),
		DefaultPageSize: src.getEnvIntOrDefault("DEFAULT_PAGE_SIZE", defaultPageSize),
		BreakpointSmall: src.getEnvIntOrDefault("BREAKPOINT_SMALL", layout.DefaultBreakpoints.Small),
		BreakpointLarge: src.getEnvIntOrDefault("BREAKPOINT_LARGE", layout.DefaultBreakpoints.Large),

		MobileBreakpoint:        src.getEnvIntOrDefault("MOBILE_BREAKPOINT", layout.DefaultThresholds.MobileWidth),
		ScrollExpandThreshold:   src.getEnvIntOrDefault("SCROLL_EXPAND_THRESHOLD", layout.DefaultThresholds.Expand),
		ScrollCollapseThreshold: src.getEnvIntOrDefault("SCROLL_COLLAPSE_THRESHOLD", layout.DefaultThresholds.Collapse),
		TransitionLock:          time.Duration(src.getEnvIntOrDefault("TRANSITION_LOCK_MS", int(layout.DefaultThresholds.Lock/time.Millisecond))) * time.Millisecond,

		PlaceholderQueueSize:  src.getEnvIntOrDefault("PLACEHOLDER_QUEUE_SIZE", defaultPlaceholderQueueSize),
		NumPlaceholderWorkers: src.getEnvIntOrDefault("NUM_PLACEHOLDER_WORKERS", defaultNumPlaceholderWorker),
		PlaceholderCacheLimit: src.getEnvIntOrDefault("PLACEHOLDER_CACHE_LIMIT", defaultPlaceholderCacheSize),

		SessionTTL: time.Duration(src.getEnvIntOrDefault("SESSION_TTL_MINUTES", defaultSessionTTLMinutes)) * time.Minute,
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.TalentSource {
	case SourceStatic:
	case SourceCMS:
		if c.CMSBaseURL == "" {
			return fmt.Errorf("TALENT_SOURCE=cms requires CMS_BASE_URL")
		}
	default:
		return fmt.Errorf("unknown TALENT_SOURCE '%s' (want %s or %s)", c.TalentSource, SourceStatic, SourceCMS)
	}

	switch c.PageSizeMode {
	case PageSizeModeTiers, PageSizeModeColumns:
	default:
		return fmt.Errorf("unknown PAGE_SIZE_MODE '%s' (want %s or %s)", c.PageSizeMode, PageSizeModeTiers, PageSizeModeColumns)
	}

	if c.BreakpointSmall >= c.BreakpointLarge {
		return fmt.Errorf("BREAKPOINT_SMALL (%d) must be below BREAKPOINT_LARGE (%d)", c.BreakpointSmall, c.BreakpointLarge)
	}
	if c.ScrollExpandThreshold >= c.ScrollCollapseThreshold {
		return fmt.Errorf("SCROLL_EXPAND_THRESHOLD (%d) must be below SCROLL_COLLAPSE_THRESHOLD (%d)",
			c.ScrollExpandThreshold, c.ScrollCollapseThreshold)
	}
	return nil
}

// PageSizer builds the configured page size policy.
func (c Config) PageSizer() layout.PageSizer {
	if c.PageSizeMode == PageSizeModeColumns {
		return layout.NewColumnPageSizer(c.RowsPerPage)
	}
	return layout.TierPageSizer{
		Breakpoints: layout.Breakpoints{Small: c.BreakpointSmall, Large: c.BreakpointLarge},
		Small:       c.PageSizeSmall,
		Medium:      c.PageSizeMedium,
		Large:       c.PageSizeLarge,
	}
}

func (c Config) DisplayThresholds() layout.Thresholds {
	return layout.Thresholds{
		Expand:      c.ScrollExpandThreshold,
		Collapse:    c.ScrollCollapseThreshold,
		Lock:        c.TransitionLock,
		MobileWidth: c.MobileBreakpoint,
	}
}
