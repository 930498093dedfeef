package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot.
type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// BotConfig controla el comportamiento del loop de trading.
type BotConfig struct {
	IntervalSeconds int      `yaml:"interval_seconds"`
	EntrySizeUSD    float64  `yaml:"entry_size_usd"` // notional por orden de entrada
	MarketTag       string   `yaml:"market_tag"`     // tag de Gamma a escanear (p.ej. "lol")
	MaxMarkets      int      `yaml:"max_markets"`    // tope de mercados con posiciones simultáneas
	SkipMarkets     []string `yaml:"skip_markets"`   // slugs excluidos de entradas y take-profits
	MetricsAddr     string   `yaml:"metrics_addr"`   // vacío = sin endpoint de métricas
}

// APIConfig contiene los base URLs de las APIs y el RPC de Polygon.
type APIConfig struct {
	CLOBBase  string `yaml:"clob_base"`
	GammaBase string `yaml:"gamma_base"`
	RPCURL    string `yaml:"rpc_url"` // para consultas de balance ERC-1155
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
// La private key NUNCA va en el YAML: solo POLY_PRIVATE_KEY en el entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// CycleInterval devuelve el intervalo entre ciclos como time.Duration.
func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.Bot.IntervalSeconds) * time.Second
}

// PrivateKey devuelve la clave privada del entorno. Falla si no está presente:
// el modo live no puede firmar órdenes sin ella.
func PrivateKey() (string, error) {
	key := os.Getenv("POLY_PRIVATE_KEY")
	if key == "" {
		return "", fmt.Errorf("config.PrivateKey: POLY_PRIVATE_KEY not set")
	}
	return key, nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("POLYGON_RPC_URL"); v != "" {
		cfg.API.RPCURL = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Bot.IntervalSeconds <= 0 {
		cfg.Bot.IntervalSeconds = 60
	}
	if cfg.Bot.EntrySizeUSD <= 0 {
		cfg.Bot.EntrySizeUSD = 5
	}
	if cfg.Bot.MarketTag == "" {
		cfg.Bot.MarketTag = "lol"
	}
	if cfg.Bot.MaxMarkets <= 0 {
		cfg.Bot.MaxMarkets = 10
	}
	if cfg.API.CLOBBase == "" {
		cfg.API.CLOBBase = "https://clob.polymarket.com"
	}
	if cfg.API.GammaBase == "" {
		cfg.API.GammaBase = "https://gamma-api.polymarket.com"
	}
	if cfg.API.RPCURL == "" {
		cfg.API.RPCURL = "https://polygon-rpc.com"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "ladderbot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
