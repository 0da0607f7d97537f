package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "PLACEKIT"

// Config 服务配置（placekit.yaml / PLACEKIT_* 环境变量 / 命令行参数）
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Tips      TipsConfig      `mapstructure:"tips"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Feast     FeastConfig     `mapstructure:"feast"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	CORSOrigins     []string      `mapstructure:"cors-origins"`
}

type ArtifactsConfig struct {
	Source       string        `mapstructure:"source"`
	Dir          string        `mapstructure:"dir"`
	BaseURL      string        `mapstructure:"base-url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	ModelFile    string        `mapstructure:"model-file"`
	ScalerFile   string        `mapstructure:"scaler-file"`
	EncodersFile string        `mapstructure:"encoders-file"`
	MetadataFile string        `mapstructure:"metadata-file"`
}

type TipsConfig struct {
	RulesFile string `mapstructure:"rules-file"`
}

type CacheConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   struct {
		Addr string `mapstructure:"addr"`
		DB   int    `mapstructure:"db"`
	} `mapstructure:"redis"`
}

type FeastConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Project     string `mapstructure:"project"`
	FeatureView string `mapstructure:"feature-view"`
	Token       string `mapstructure:"token"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// setDefaults 注册所有 key 的默认值（AutomaticEnv 只对已知 key 生效）
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":5001")
	v.SetDefault("server.shutdown-timeout", 15*time.Second)
	v.SetDefault("server.cors-origins", []string{"*"})

	v.SetDefault("artifacts.source", "file")
	v.SetDefault("artifacts.dir", "models")
	v.SetDefault("artifacts.base-url", "")
	v.SetDefault("artifacts.timeout", 10*time.Second)
	v.SetDefault("artifacts.model-file", "placement_model.json")
	v.SetDefault("artifacts.scaler-file", "scaler.json")
	v.SetDefault("artifacts.encoders-file", "encoders.json")
	v.SetDefault("artifacts.metadata-file", "model_metadata.json")

	v.SetDefault("tips.rules-file", "")

	v.SetDefault("cache.backend", "none")
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("feast.enabled", false)
	v.SetDefault("feast.host", "localhost")
	v.SetDefault("feast.port", 6565)
	v.SetDefault("feast.project", "placement")
	v.SetDefault("feast.feature-view", "student_profile")
	v.SetDefault("feast.token", "")

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// newViper 创建带默认值和环境变量映射的 viper 实例
func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// readConfig 读取配置文件；未指定且默认文件不存在时只使用默认值和环境变量
func readConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", file, err)
		}
		return nil
	}

	v.AddConfigPath(".")
	v.SetConfigName("placekit")
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// loadConfig 解析最终配置
func loadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验取值范围
func (c *Config) Validate() error {
	switch c.Artifacts.Source {
	case "file":
		if c.Artifacts.Dir == "" {
			return fmt.Errorf("artifacts.dir is required for file source")
		}
	case "http":
		if c.Artifacts.BaseURL == "" {
			return fmt.Errorf("artifacts.base-url is required for http source")
		}
	default:
		return fmt.Errorf("artifacts.source must be file or http, got %q", c.Artifacts.Source)
	}
	switch c.Cache.Backend {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be none, memory or redis, got %q", c.Cache.Backend)
	}
	return nil
}
