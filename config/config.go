package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"clipcap/internal/appdirs"
	"clipcap/log"
)

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

type AppConfig struct {
	FfmpegPath  string `toml:"ffmpeg_path"`
	FfprobePath string `toml:"ffprobe_path"`
	Proxy       string `toml:"proxy"`

	ParsedProxy *url.URL `toml:"-"`
}

type OpenaiConfig struct {
	BaseUrl string `toml:"base_url"`
	ApiKey  string `toml:"api_key"`
}

type TranscribeConfig struct {
	Provider string       `toml:"provider"`
	Model    string       `toml:"model"`
	Language string       `toml:"language"`
	Openai   OpenaiConfig `toml:"openai"`
}

type CaptionConfig struct {
	FontName       string `toml:"font_name"`
	TextColor      string `toml:"text_color"`
	HighlightColor string `toml:"highlight_color"`
	OutlineColor   string `toml:"outline_color"`
	Position       string `toml:"position"`
	Karaoke        bool   `toml:"karaoke"`
	GlowEffect     bool   `toml:"glow_effect"`
}

type QueueConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Concurrency   int    `toml:"concurrency"`
}

type Config struct {
	Server     ServerConfig     `toml:"server"`
	App        AppConfig        `toml:"app"`
	Transcribe TranscribeConfig `toml:"transcribe"`
	Caption    CaptionConfig    `toml:"caption"`
	Queue      QueueConfig      `toml:"queue"`
}

var Conf Config

var resolveConfigPath = func() (string, error) {
	dirs, err := appdirs.Resolve()
	if err != nil {
		return "", err
	}
	return dirs.ConfigFile, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8888,
		},
		App: AppConfig{
			FfmpegPath:  "",
			FfprobePath: "",
		},
		Transcribe: TranscribeConfig{
			Provider: "openai",
			Model:    "whisper-1",
			Openai: OpenaiConfig{
				BaseUrl: "",
			},
		},
		Caption: CaptionConfig{
			FontName:       "Montserrat Black",
			TextColor:      "#ffffff",
			HighlightColor: "#feff00",
			OutlineColor:   "#000000",
			Position:       "bottom",
			Karaoke:        false,
			GlowEffect:     false,
		},
		Queue: QueueConfig{
			RedisAddr:   "",
			Concurrency: 3,
		},
	}
}

// LoadOrCreateConfig reads the config file, creating one with defaults when
// it does not exist yet. It reports whether a new file was written.
func LoadOrCreateConfig() (bool, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return false, fmt.Errorf("resolve config path error: %w", err)
	}

	if _, err = os.Stat(configPath); os.IsNotExist(err) {
		Conf = defaultConfig()
		if err = SaveConfig(); err != nil {
			return false, fmt.Errorf("write default config error: %w", err)
		}
		return true, nil
	}

	Conf = defaultConfig()
	if _, err = toml.DecodeFile(configPath, &Conf); err != nil {
		return false, fmt.Errorf("decode config error: %w", err)
	}
	return false, nil
}

// LoadConfig wraps LoadOrCreateConfig for the server entry point.
func LoadConfig() bool {
	created, err := LoadOrCreateConfig()
	if err != nil {
		if log.GetLogger() != nil {
			log.GetLogger().Error("load config failed", zap.Error(err))
		}
		return false
	}
	if created && log.GetLogger() != nil {
		log.GetLogger().Info("created default config file")
	}
	return true
}

// SaveConfig writes the current Conf to the resolved config path,
// creating parent directories as needed.
func SaveConfig() error {
	configPath, err := resolveConfigPath()
	if err != nil {
		return fmt.Errorf("resolve config path error: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir error: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("create config file error: %w", err)
	}
	defer file.Close()

	if err = toml.NewEncoder(file).Encode(Conf); err != nil {
		return fmt.Errorf("encode config error: %w", err)
	}
	return nil
}

// CheckConfig validates loaded config values and normalizes derived fields.
func CheckConfig() error {
	if Conf.Server.Port <= 0 || Conf.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", Conf.Server.Port)
	}

	if proxy := strings.TrimSpace(Conf.App.Proxy); proxy != "" {
		parsed, err := url.Parse(proxy)
		if err != nil {
			return fmt.Errorf("invalid proxy url %q: %w", proxy, err)
		}
		Conf.App.ParsedProxy = parsed
	}

	switch Conf.Caption.Position {
	case "", "bottom", "center":
	default:
		return fmt.Errorf("invalid caption position: %s", Conf.Caption.Position)
	}

	if Conf.Transcribe.Provider == "openai" && Conf.Transcribe.Openai.ApiKey == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			Conf.Transcribe.Openai.ApiKey = key
		}
	}
	return nil
}
