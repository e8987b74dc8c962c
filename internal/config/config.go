package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type SessionConfig struct {
	Topic        string `mapstructure:"topic"`
	Name         string `mapstructure:"name"`
	Password     string `mapstructure:"password"`
	Signature    string `mapstructure:"signature"`
	GroupSession bool   `mapstructure:"group_session"`
	Role         int    `mapstructure:"role"`
}

type SDKConfig struct {
	Key          string        `mapstructure:"key"`
	Secret       string        `mapstructure:"secret"`
	SignatureTTL time.Duration `mapstructure:"signature_ttl"`
}

type RenderConfig struct {
	Surface string `mapstructure:"surface"`
	Quality string `mapstructure:"quality"`
	Width   int    `mapstructure:"width"`
	Height  int    `mapstructure:"height"`
}

type EngineConfig struct {
	URL          string        `mapstructure:"url"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	JoinTimeout  time.Duration `mapstructure:"join_timeout"`
	SendBuffer   int           `mapstructure:"send_buffer"`
}

type Config struct {
	Mode                string        `mapstructure:"mode"`
	LogLevel            string        `mapstructure:"log_level"`
	StatusAddr          string        `mapstructure:"status_addr"`
	Secret              string        `mapstructure:"secret"`
	CrossOriginIsolated bool          `mapstructure:"cross_origin_isolated"`
	Engine              EngineConfig  `mapstructure:"engine"`
	Session             SessionConfig `mapstructure:"session"`
	SDK                 SDKConfig     `mapstructure:"sdk"`
	Render              RenderConfig  `mapstructure:"render"`
}

var ErrMissingTopic = errors.New("session topic is required")

// Flags declares the command-line overrides understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("videoclient", pflag.ContinueOnError)
	fs.String("config", "", "path to a yaml config file")
	fs.String("engine.url", "", "websocket url of the session engine bridge")
	fs.String("status_addr", "", "listen address of the status API (empty disables it)")
	fs.String("session.topic", "", "session topic to join")
	fs.String("session.name", "", "display name")
	fs.String("session.password", "", "session password")
	fs.Bool("session.group_session", false, "join as a group session")
	fs.String("log_level", "", "zerolog level")
	return fs
}

// Load reads config/config.<CONFIG_ENV>.yaml (or --config), then VIDEOCLIENT_* env
// vars, then flags. fs may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	if fs != nil {
		if p, err := fs.GetString("config"); err == nil && p != "" {
			fileName = p
		}
	}
	v.SetConfigFile(fileName)

	setDefaults(v)

	v.SetEnvPrefix("VIDEOCLIENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := bindChanged(v, fs); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().
		Str("module", "config").
		Str("mode", cfg.Mode).
		Str("engine", cfg.Engine.URL).
		Str("topic", cfg.Session.Topic).
		Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("log_level", "info")
	v.SetDefault("status_addr", "127.0.0.1:8090")
	v.SetDefault("cross_origin_isolated", false)
	v.SetDefault("engine.url", "ws://127.0.0.1:9750/engine")
	v.SetDefault("engine.dial_timeout", "10s")
	v.SetDefault("engine.write_timeout", "5s")
	v.SetDefault("engine.join_timeout", "30s")
	v.SetDefault("engine.send_buffer", 64)
	v.SetDefault("session.name", "guest")
	v.SetDefault("session.group_session", false)
	v.SetDefault("session.role", 0)
	v.SetDefault("sdk.signature_ttl", "2h")
	v.SetDefault("render.surface", "video-canvas")
	v.SetDefault("render.quality", "360p")
	v.SetDefault("render.width", 800)
	v.SetDefault("render.height", 600)
}

// bindChanged binds only flags the user actually set, so unset flags never
// shadow file or env values.
func bindChanged(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if f.Name == "config" || err != nil {
			return
		}
		err = v.BindPFlag(f.Name, f)
	})
	return err
}

// Validate checks what cannot be defaulted.
func (c *Config) Validate() error {
	if c.Session.Topic == "" {
		return ErrMissingTopic
	}
	if c.Session.Signature == "" && (c.SDK.Key == "" || c.SDK.Secret == "") {
		return errors.New("either session.signature or sdk.key and sdk.secret must be set")
	}
	return nil
}
