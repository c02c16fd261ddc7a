package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPromptLabel 覆盖配置文件中的提示符。
const EnvPromptLabel = "TERMWIDGET_PROMPT"

// errNoConfigPath 表示既没有传入路径也无法定位默认路径。
var errNoConfigPath = errors.New("termwidget: no config path given and $HOME is not set")

// Config 是唯一持久化的配置文件结构。
type Config struct {
	PromptLabel   string `toml:"prompt_label,omitempty"`
	ErrorText     string `toml:"error_text,omitempty"`
	StyleEchoBack string `toml:"style_echo_back,omitempty"`
	MaxOutput     int    `toml:"max_output,omitempty"`
	Language      string `toml:"language,omitempty"`
	// Welcome 可以是 bool、字符串或字符串数组，见 WelcomeMessage。
	Welcome any `toml:"welcome,omitempty"`

	NoDefaults             bool `toml:"no_defaults,omitempty"`
	IgnoreCommandCase      bool `toml:"ignore_command_case,omitempty"`
	NoHistory              bool `toml:"no_history,omitempty"`
	NoEchoBack             bool `toml:"no_echo_back,omitempty"`
	NoAutoScroll           bool `toml:"no_auto_scroll,omitempty"`
	NoNewlineParsing       bool `toml:"no_newline_parsing,omitempty"`
	DangerMode             bool `toml:"danger_mode,omitempty"`
	Locked                 bool `toml:"locked,omitempty"`
	ReadOnly               bool `toml:"read_only,omitempty"`
	Disabled               bool `toml:"disabled,omitempty"`
	DisableOnProcess       bool `toml:"disable_on_process,omitempty"`
	HidePromptWhenDisabled bool `toml:"hide_prompt_when_disabled,omitempty"`
	AutoFocus              bool `toml:"auto_focus"`

	LogLevel string `toml:"log_level,omitempty"`
	LogFile  string `toml:"log_file,omitempty"`

	Theme    Theme     `toml:"theme,omitempty"`
	Commands []Command `toml:"commands,omitempty"`

	Source string `toml:"-"`
}

// Theme 覆盖默认配色，值为 lipgloss 可识别的颜色。
type Theme struct {
	Label string `toml:"label,omitempty"`
	Input string `toml:"input,omitempty"`
	Text  string `toml:"text,omitempty"`
}

// Command 是配置文件中声明的命令；Reply 为空的命令没有处理函数，校验时会被拒绝。
type Command struct {
	Name         string `toml:"name"`
	Description  string `toml:"description,omitempty"`
	Usage        string `toml:"usage,omitempty"`
	Reply        string `toml:"reply,omitempty"`
	ExplicitExec bool   `toml:"explicit_exec,omitempty"`
}

func Default() Config {
	return Config{
		Welcome:   true,
		AutoFocus: true,
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".termwidget", "config.toml")
}

func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errNoConfigPath
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	// 接口字段先置空，让解码器按文件中的实际类型填充
	cfg.Welcome = nil
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Welcome == nil {
		cfg.Welcome = Default().Welcome
	}
	if _, err := cfg.WelcomeMessage(); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if env := strings.TrimSpace(os.Getenv(EnvPromptLabel)); env != "" {
		cfg.PromptLabel = env
	}
}
