// internal/platform/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"infrascope/internal/core/ports"
)

// Config agrupa toda la configuración del proceso. Se construye en capas:
// defaults, fichero YAML opcional, variables de entorno y flags de CLI,
// en ese orden de prioridad creciente.
type Config struct {
	// App
	Target       string `yaml:"target"`
	TimeoutS     int    `yaml:"timeout"` // timeout global de discovery en segundos
	PrintVersion bool   `yaml:"-"`

	// Scope
	ExcludeDomains []string `yaml:"exclude_domains"`

	// IO
	OutputDir  string `yaml:"output_dir"`
	Quiet      bool   `yaml:"quiet"`
	StreamPath string `yaml:"stream_path"` // fichero NDJSON de eventos ("" = desactivado)

	// Sources: mapa dinámico de configuraciones por source
	// Key = source name (ej: "crtsh", "otx")
	Sources map[string]ports.SourceConfig `yaml:"sources"`

	// Resolver
	Resolver Resolver `yaml:"resolver"`

	// Outputs
	Outputs Outputs `yaml:"outputs"`

	// Resilience
	Resilience Resilience `yaml:"resilience"`
}

type Resolver struct {
	// Primary endpoints DoH consultados en orden
	Primary []string `yaml:"primary"`

	// Backup endpoints usados sólo cuando todos los primarios fallan
	Backup []string `yaml:"backup"`

	// RateLimit máximo de queries DoH dentro de RateWindowS (0 = sin límite)
	RateLimit   int `yaml:"rate_limit"`
	RateWindowS int `yaml:"rate_window"`
}

type Outputs struct {
	// El JSON siempre se genera; la tabla es opcional.
	TableDisabled bool `yaml:"table_disabled"`
}

type Resilience struct {
	MaxRetries        int           `yaml:"max_retries"`
	BackoffBase       time.Duration `yaml:"backoff_base"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier"`
}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	return Config{
		Target:   "",
		TimeoutS: 90,

		OutputDir:  "infrascope_out",
		Quiet:      false,
		StreamPath: "",

		Sources: map[string]ports.SourceConfig{
			"crtsh": {
				Enabled:    true,
				Timeout:    30 * time.Second,
				Retries:    2,
				RateLimit:  0,
				RateWindow: time.Second,
				Priority:   10,
				Custom:     make(map[string]string),
			},
			"certspotter": {
				Enabled:    true,
				Timeout:    30 * time.Second,
				Retries:    2,
				RateLimit:  0,
				RateWindow: time.Second,
				Priority:   8,
				Custom:     make(map[string]string),
			},
			"otx": {
				Enabled:    true,
				Timeout:    30 * time.Second,
				Retries:    2,
				RateLimit:  0,
				RateWindow: time.Second,
				Priority:   6,
				Custom:     make(map[string]string),
			},
			"hackertarget": {
				Enabled:    true,
				Timeout:    30 * time.Second,
				Retries:    1,
				RateLimit:  2,
				RateWindow: time.Second,
				Priority:   5,
				Custom:     make(map[string]string),
			},
		},

		Resolver: Resolver{
			Primary: nil, // nil = defaults del resolver (google, cloudflare)
			Backup:  nil,
			// Todo el tráfico DoH del proceso pasa por un limiter compartido;
			// 0 lo desactiva explícitamente.
			RateLimit:   10,
			RateWindowS: 1,
		},

		Outputs: Outputs{
			TableDisabled: false,
		},

		Resilience: Resilience{
			MaxRetries:        2,
			BackoffBase:       1 * time.Second,
			BackoffMultiplier: 2.0,
		},
	}
}

// Load inicializa la configuración: defaults -> fichero YAML -> ENV -> flags.
func Load() (Config, error) {
	cfg := DefaultConfig()

	// El path del fichero puede venir de ENV o del flag -config; los flags
	// se parsean una sola vez, así que primero localizamos el path.
	configPath := getenv("INFRASCOPE_CONFIG", "")
	flagPath := peekConfigFlag()
	if flagPath != "" {
		configPath = flagPath
	}

	if configPath != "" {
		if err := loadFromFile(&cfg, configPath); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", configPath, err)
		}
	}

	loadFromEnv(&cfg)
	loadFromFlags(&cfg)
	normalize(&cfg)

	return cfg, nil
}

// loadFromFile mezcla un fichero YAML sobre la configuración actual.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv carga configuración desde variables de entorno.
func loadFromEnv(cfg *Config) {
	if v := getenv("INFRASCOPE_TARGET", ""); v != "" {
		cfg.Target = v
	}
	if v := getenv("INFRASCOPE_TIMEOUT", ""); v != "" {
		cfg.TimeoutS = parseInt(v, cfg.TimeoutS)
	}
	if v := getenv("INFRASCOPE_OUTPUT_DIR", ""); v != "" {
		cfg.OutputDir = v
	}
	if v := getenv("INFRASCOPE_QUIET", ""); v != "" {
		cfg.Quiet = parseBool(v)
	}
	if v := getenv("INFRASCOPE_STREAM_PATH", ""); v != "" {
		cfg.StreamPath = v
	}
	if v := getenv("INFRASCOPE_EXCLUDE", ""); v != "" {
		cfg.ExcludeDomains = splitList(v)
	}

	// Sources config desde ENV
	// Formato: INFRASCOPE_SOURCES_CRTSH_ENABLED=true
	//          INFRASCOPE_SOURCES_OTX_API_KEY=xxxx
	for name := range cfg.Sources {
		prefix := fmt.Sprintf("INFRASCOPE_SOURCES_%s_", strings.ToUpper(name))

		sourceCfg := cfg.Sources[name]

		if v := getenv(prefix+"ENABLED", ""); v != "" {
			sourceCfg.Enabled = parseBool(v)
		}
		if v := getenv(prefix+"PRIORITY", ""); v != "" {
			sourceCfg.Priority = parseInt(v, sourceCfg.Priority)
		}
		if v := getenv(prefix+"TIMEOUT", ""); v != "" {
			sourceCfg.Timeout = time.Duration(parseInt(v, int(sourceCfg.Timeout.Seconds()))) * time.Second
		}
		if v := getenv(prefix+"RETRIES", ""); v != "" {
			sourceCfg.Retries = parseInt(v, sourceCfg.Retries)
		}
		if v := getenv(prefix+"RATELIMIT", ""); v != "" {
			sourceCfg.RateLimit = parseInt(v, sourceCfg.RateLimit)
		}
		if v := getenv(prefix+"API_KEY", ""); v != "" {
			if sourceCfg.Custom == nil {
				sourceCfg.Custom = make(map[string]string)
			}
			sourceCfg.Custom["api_key"] = v
		}

		cfg.Sources[name] = sourceCfg
	}

	// Resolver
	if v := getenv("INFRASCOPE_RESOLVER_PRIMARY", ""); v != "" {
		cfg.Resolver.Primary = splitList(v)
	}
	if v := getenv("INFRASCOPE_RESOLVER_BACKUP", ""); v != "" {
		cfg.Resolver.Backup = splitList(v)
	}
	if v := getenv("INFRASCOPE_RESOLVER_RATELIMIT", ""); v != "" {
		cfg.Resolver.RateLimit = parseInt(v, cfg.Resolver.RateLimit)
	}

	// Outputs
	if v := getenv("INFRASCOPE_OUTPUTS_TABLE_DISABLED", ""); v != "" {
		cfg.Outputs.TableDisabled = parseBool(v)
	}

	// Resilience
	if v := getenv("INFRASCOPE_RESILIENCE_MAX_RETRIES", ""); v != "" {
		cfg.Resilience.MaxRetries = parseInt(v, cfg.Resilience.MaxRetries)
	}
	if v := getenv("INFRASCOPE_RESILIENCE_BACKOFF_BASE", ""); v != "" {
		cfg.Resilience.BackoffBase = time.Duration(parseInt(v, int(cfg.Resilience.BackoffBase.Seconds()))) * time.Second
	}
}

// loadFromFlags parsea flags de CLI.
func loadFromFlags(cfg *Config) {
	fs := pflag.NewFlagSet("infrascope", pflag.ExitOnError)

	fs.StringVarP(&cfg.Target, "target", "t", cfg.Target, "Dominio objetivo (e.g., example.com)")
	fs.IntVar(&cfg.TimeoutS, "timeout", cfg.TimeoutS, "Timeout de la fase de discovery en segundos")
	fs.StringVarP(&cfg.OutputDir, "out", "o", cfg.OutputDir, "Directorio de salida")
	fs.BoolVarP(&cfg.Quiet, "quiet", "q", cfg.Quiet, "Suprimir salida interactiva de consola")
	fs.StringVar(&cfg.StreamPath, "stream", cfg.StreamPath, "Fichero NDJSON de eventos de progreso")
	fs.StringSliceVar(&cfg.ExcludeDomains, "exclude", cfg.ExcludeDomains, "Dominios a excluir del scope")
	fs.BoolVar(&cfg.PrintVersion, "version", false, "Imprimir versión y salir")

	// El path del config file se lee antes de Load; el flag se declara aquí
	// sólo para que aparezca en -h y no rompa el parseo.
	fs.String("config", "", "Fichero de configuración YAML")

	// Source configs (solo enabled via flags, el resto via ENV o fichero)
	for name := range cfg.Sources {
		sourceCfg := cfg.Sources[name]
		fs.BoolVar(&sourceCfg.Enabled, fmt.Sprintf("src.%s", name), sourceCfg.Enabled,
			fmt.Sprintf("Habilitar fuente %s", name))
		cfg.Sources[name] = sourceCfg
	}

	// Resolver
	fs.StringSliceVar(&cfg.Resolver.Primary, "resolver.primary", cfg.Resolver.Primary,
		"Endpoints DoH primarios")
	fs.StringSliceVar(&cfg.Resolver.Backup, "resolver.backup", cfg.Resolver.Backup,
		"Endpoints DoH de backup")

	// Outputs
	fs.BoolVar(&cfg.Outputs.TableDisabled, "out.no-table", cfg.Outputs.TableDisabled,
		"Desactivar salida en tabla (JSON siempre se genera)")

	// Resilience
	fs.IntVar(&cfg.Resilience.MaxRetries, "resilience.retries", cfg.Resilience.MaxRetries,
		"Número máximo de reintentos por source")

	fs.Parse(os.Args[1:])
}

// peekConfigFlag localiza -config/--config en os.Args sin consumir el resto
// de flags; el FlagSet real se parsea después con los defaults ya mezclados.
func peekConfigFlag() string {
	args := os.Args[1:]
	for i, arg := range args {
		switch {
		case arg == "--config" || arg == "-config":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-config="):
			return strings.TrimPrefix(arg, "-config=")
		}
	}
	return ""
}

func normalize(c *Config) {
	c.Target = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(c.Target), "."))
	if c.TimeoutS < 0 {
		c.TimeoutS = 0
	}
	if c.OutputDir == "" {
		c.OutputDir = "infrascope_out"
	}
	if c.Resilience.BackoffBase <= 0 {
		c.Resilience.BackoffBase = 1 * time.Second
	}
	if c.Resilience.BackoffMultiplier < 1.0 {
		c.Resilience.BackoffMultiplier = 2.0
	}
	if c.Resolver.RateWindowS <= 0 {
		c.Resolver.RateWindowS = 1
	}

	cleaned := make([]string, 0, len(c.ExcludeDomains))
	for _, d := range c.ExcludeDomains {
		d = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(d), "."))
		if d != "" {
			cleaned = append(cleaned, d)
		}
	}
	c.ExcludeDomains = cleaned
}

// DiscoveryTimeout devuelve el timeout de discovery como duración.
func (c Config) DiscoveryTimeout() time.Duration {
	if c.TimeoutS <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutS) * time.Second
}

// ToJSON serializa la configuración a JSON (útil para debugging).
func (c Config) ToJSON() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
