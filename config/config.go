// Ininicializing common application configuration
package config

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Ingest     IngestConfig     `mapstructure:"ingest"`
	Window     WindowConfig     `mapstructure:"window"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Store      StoreConfig      `mapstructure:"store"`
	Routing    RoutingConfig    `mapstructure:"routing"`
}

type ServerConfig struct {
	AppVersion  string        `mapstructure:"app_version"`
	Host        string        `mapstructure:"host"`
	Port        string        `mapstructure:"port"`
	Timeout     time.Duration `mapstructure:"timeout"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	Mode        string        `mapstructure:"mode"`
}

type IngestConfig struct {
	// Strategy selects the ingestion source: "api" or "crawl".
	Strategy       string        `mapstructure:"strategy"`
	Schedule       string        `mapstructure:"schedule"`
	RefreshOnStart bool          `mapstructure:"refresh_on_start"`
	MaxRetries     int           `mapstructure:"max_retries"`
	Backoff        time.Duration `mapstructure:"backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	Timeout        time.Duration `mapstructure:"timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	API            APIConfig     `mapstructure:"api"`
	Crawl          CrawlConfig   `mapstructure:"crawl"`
}

type APIConfig struct {
	SearchURL  string `mapstructure:"search_url"`
	PublicBase string `mapstructure:"public_base"`
	Take       int    `mapstructure:"take"`
	Status     string `mapstructure:"status"`
	OrderBy    string `mapstructure:"order_by"`
	OrderDir   string `mapstructure:"order_dir"`
}

type CrawlConfig struct {
	ListingURL    string         `mapstructure:"listing_url"`
	LinkPattern   string         `mapstructure:"link_pattern"`
	Concurrency   int            `mapstructure:"concurrency"`
	Rendered      bool           `mapstructure:"rendered"`
	RenderTimeout time.Duration  `mapstructure:"render_timeout"`
	Selectors     SelectorConfig `mapstructure:"selectors"`
}

// SelectorConfig names the CSS classes the crawl strategy looks for on a
// detail page. Empty values fall back to generic tags (h1, meta description).
type SelectorConfig struct {
	Title       string `mapstructure:"title"`
	Organizer   string `mapstructure:"organizer"`
	DateTime    string `mapstructure:"datetime"`
	Venue       string `mapstructure:"venue"`
	Description string `mapstructure:"description"`
}

type WindowConfig struct {
	QueryStart string `mapstructure:"query_start"`
	QueryEnd   string `mapstructure:"query_end"`
	EventStart string `mapstructure:"event_start"`
	EventEnd   string `mapstructure:"event_end"`
	Timezone   string `mapstructure:"timezone"`
}

type ClassifierConfig struct {
	// Note, when set, is used verbatim for every positive classification
	// instead of the matched phrase.
	Note           string   `mapstructure:"note"`
	ExtraKeywords  []string `mapstructure:"extra_keywords"`
	ExtraNegations []string `mapstructure:"extra_negations"`
}

type StoreConfig struct {
	Backend string      `mapstructure:"backend"`
	Path    string      `mapstructure:"path"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

type RoutingConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

func LoadConfig() (*viper.Viper, error) {

	viperInstance := viper.New()

	viperInstance.AddConfigPath("./config")
	viperInstance.SetConfigName("config")
	viperInstance.SetConfigType("yaml")

	err := viperInstance.ReadInConfig()

	if err != nil {
		return nil, err
	}
	return viperInstance, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {

	var c Config

	err := v.Unmarshal(&c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
