package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	Repair  RepairConfig  `mapstructure:"repair"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
	HTTP    HTTPConfig    `mapstructure:"http"`
}

// StorageConfig selects the gorm dialect. Driver is "postgres" or "sqlite";
// DSN is used by postgres and Path by sqlite.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Path   string `mapstructure:"path"`
}

type GitHubConfig struct {
	Token     string  `mapstructure:"token"`
	BaseURL   string  `mapstructure:"base_url"`
	RateLimit float64 `mapstructure:"rate_limit"`
	PerPage   int     `mapstructure:"per_page"`
}

type RepairConfig struct {
	DiffDir      string   `mapstructure:"diff_dir"`
	SkipSuffixes []string `mapstructure:"skip_suffixes"`
}

type FilterConfig struct {
	ExcludingPatterns []string `mapstructure:"excluding_patterns"`
}

type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
	File  string `mapstructure:"file"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "miner.db",
		},
		GitHub: GitHubConfig{
			BaseURL:   "https://api.github.com/",
			RateLimit: 1.2,
			PerPage:   100,
		},
		Repair: RepairConfig{
			DiffDir:      "diffs",
			SkipSuffixes: []string{"__init__.py"},
		},
		Output: OutputConfig{
			Dir:    "results",
			Format: "table",
		},
		Log: LogConfig{
			Level: "info",
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Load reads the config file at path, or searches ./config.yaml and
// ~/.miner/config.yaml when path is empty. A missing file is not an error.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	setDefaults(v, cfg)

	v.SetEnvPrefix("MINER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".miner"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("storage.driver", cfg.Storage.Driver)
	v.SetDefault("storage.dsn", cfg.Storage.DSN)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("github.token", cfg.GitHub.Token)
	v.SetDefault("github.base_url", cfg.GitHub.BaseURL)
	v.SetDefault("github.rate_limit", cfg.GitHub.RateLimit)
	v.SetDefault("github.per_page", cfg.GitHub.PerPage)
	v.SetDefault("repair.diff_dir", cfg.Repair.DiffDir)
	v.SetDefault("repair.skip_suffixes", cfg.Repair.SkipSuffixes)
	v.SetDefault("filter.excluding_patterns", cfg.Filter.ExcludingPatterns)
	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.json", cfg.Log.JSON)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("http.addr", cfg.HTTP.Addr)
}

func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" && cfg.GitHub.Token == "" {
		cfg.GitHub.Token = token
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Storage.Driver = "postgres"
		cfg.Storage.DSN = dsn
	}
}
