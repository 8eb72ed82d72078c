package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/draft-league-stats/internal/platform/logging"
)

const (
	ServiceName            = "draft-league-stats"
	defaultAPIBaseURL      = "https://draft.premierleague.com/api/"
	defaultOutputDir       = "results"
	defaultRenderWorkers   = 4
	defaultChartWidthInch  = 8
	defaultChartHeightInch = 5
)

// ErrHelp is returned by Parse when -h or -help was requested.
var ErrHelp = flag.ErrHelp

// Config stores runtime configuration for one report run.
type Config struct {
	AppEnv           string         `validate:"oneof=dev stage prod"`
	ServiceVersion   string
	LogLevel         logging.Level
	LogFormat        logging.Format `validate:"oneof=console json"`
	LeagueID         int64          `validate:"gt=0"`
	APIBaseURL       string         `validate:"required,http_url"`
	APITimeout       time.Duration  `validate:"gt=0"`
	OutputDir        string         `validate:"required"`
	ChartFormat      string         `validate:"oneof=png svg pdf"`
	ChartWidth       float64        `validate:"gt=0,lte=40"`
	ChartHeight      float64        `validate:"gt=0,lte=40"`
	RenderWorkers    int            `validate:"min=1,max=64"`
	HeadToHeadStrict bool
	UptraceEnabled   bool
	UptraceDSN       string `validate:"required_if=UptraceEnabled true"`
}

// Load reads the configuration from the environment only.
func Load() (Config, error) {
	cfg, err := loadEnv()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse reads the environment and lets command line flags override it.
func Parse(args []string, output io.Writer) (Config, error) {
	cfg, err := loadEnv()
	if err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet(ServiceName, flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Generate fantasy draft league stats.\n\nUsage: %s -l <league id> [flags]\n\n", ServiceName)
		fs.PrintDefaults()
	}

	leagueID := cfg.LeagueID
	fs.Int64Var(&leagueID, "l", cfg.LeagueID, "the ID of the league (DRAFT_LEAGUE_ID)")
	fs.Int64Var(&leagueID, "league-id", cfg.LeagueID, "the ID of the league (DRAFT_LEAGUE_ID)")
	fs.StringVar(&cfg.OutputDir, "o", cfg.OutputDir, "directory charts are written to (OUTPUT_DIR)")
	fs.BoolVar(&cfg.HeadToHeadStrict, "strict", cfg.HeadToHeadStrict, "fail pairings whose histories differ in length (H2H_STRICT)")
	logLevel := fs.String("log-level", cfg.LogLevel.String(), "debug, info, warn or error (APP_LOG_LEVEL)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		return Config{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	cfg.LeagueID = leagueID
	cfg.LogLevel = logging.ParseLevel(*logLevel)
	cfg.OutputDir = strings.TrimSpace(cfg.OutputDir)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadEnv() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logFormatDefault := string(logging.FormatConsole)
	if appEnv == EnvProd {
		logFormatDefault = string(logging.FormatJSON)
	}
	logFormat, err := logging.ParseFormat(getEnv("APP_LOG_FORMAT", logFormatDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_FORMAT: %w", err)
	}

	leagueID, err := getEnvAsInt64("DRAFT_LEAGUE_ID", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse DRAFT_LEAGUE_ID: %w", err)
	}

	apiTimeout, err := time.ParseDuration(getEnv("DRAFT_API_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DRAFT_API_TIMEOUT: %w", err)
	}

	chartWidth, err := getEnvAsFloat("CHART_WIDTH", defaultChartWidthInch)
	if err != nil {
		return Config{}, fmt.Errorf("parse CHART_WIDTH: %w", err)
	}
	chartHeight, err := getEnvAsFloat("CHART_HEIGHT", defaultChartHeightInch)
	if err != nil {
		return Config{}, fmt.Errorf("parse CHART_HEIGHT: %w", err)
	}

	renderWorkers, err := getEnvAsInt("RENDER_WORKERS", defaultRenderWorkers)
	if err != nil {
		return Config{}, fmt.Errorf("parse RENDER_WORKERS: %w", err)
	}

	strict, err := strconv.ParseBool(getEnv("H2H_STRICT", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse H2H_STRICT: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}

	return Config{
		AppEnv:           appEnv,
		ServiceVersion:   getEnv("APP_VERSION", "dev"),
		LogLevel:         logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:        logFormat,
		LeagueID:         leagueID,
		APIBaseURL:       strings.TrimSpace(getEnv("DRAFT_API_BASE_URL", defaultAPIBaseURL)),
		APITimeout:       apiTimeout,
		OutputDir:        strings.TrimSpace(getEnv("OUTPUT_DIR", defaultOutputDir)),
		ChartFormat:      strings.ToLower(strings.TrimSpace(getEnv("CHART_FORMAT", "png"))),
		ChartWidth:       chartWidth,
		ChartHeight:      chartHeight,
		RenderWorkers:    renderWorkers,
		HeadToHeadStrict: strict,
		UptraceEnabled:   uptraceEnabled,
		UptraceDSN:       uptraceDSN,
	}, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

var fieldEnv = map[string]string{
	"AppEnv":        "APP_ENV",
	"LogFormat":     "APP_LOG_FORMAT",
	"LeagueID":      "DRAFT_LEAGUE_ID",
	"APIBaseURL":    "DRAFT_API_BASE_URL",
	"APITimeout":    "DRAFT_API_TIMEOUT",
	"OutputDir":     "OUTPUT_DIR",
	"ChartFormat":   "CHART_FORMAT",
	"ChartWidth":    "CHART_WIDTH",
	"ChartHeight":   "CHART_HEIGHT",
	"RenderWorkers": "RENDER_WORKERS",
	"UptraceDSN":    "UPTRACE_DSN",
}

// Validate reports the first invalid setting by its environment name.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	name := fieldEnv[fe.Field()]
	if name == "" {
		name = fe.Field()
	}

	switch fe.Field() {
	case "LeagueID":
		if c.LeagueID == 0 {
			return fmt.Errorf("%s is required: set it or pass -l <league id>", name)
		}
		return fmt.Errorf("%s must be > 0", name)
	case "UptraceDSN":
		return fmt.Errorf("%s is required when UPTRACE_ENABLED=true", name)
	case "APIBaseURL":
		if _, perr := url.Parse(c.APIBaseURL); perr != nil {
			return fmt.Errorf("invalid %s: %w", name, perr)
		}
		return fmt.Errorf("invalid %s %q: an absolute http(s) URL is required", name, c.APIBaseURL)
	}
	if fe.Param() != "" {
		return fmt.Errorf("invalid %s %v: must satisfy %s=%s", name, fe.Value(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("invalid %s %v: %s", name, fe.Value(), fe.Tag())
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.ParseInt(value, 10, 64)
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.ParseFloat(value, 64)
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
