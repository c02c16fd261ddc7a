package config

import (
	"strconv"
	"strings"
)

// ApplyKVOverrides applies free-form -c key=value overrides.
// 未知键和无法解析的值被忽略。
func ApplyKVOverrides(cfg Config, overrides []string) Config {
	if len(overrides) == 0 {
		return cfg
	}
	for _, raw := range overrides {
		parts := strings.SplitN(raw, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		switch key {
		case "prompt_label":
			cfg.PromptLabel = val
		case "error_text":
			cfg.ErrorText = val
		case "style_echo_back":
			cfg.StyleEchoBack = val
		case "language":
			cfg.Language = val
		case "log_level":
			cfg.LogLevel = val
		case "log_file":
			cfg.LogFile = val
		case "welcome":
			if b, err := strconv.ParseBool(val); err == nil {
				cfg.Welcome = b
			} else {
				cfg.Welcome = val
			}
		case "max_output":
			if n, err := strconv.Atoi(val); err == nil && n >= 0 {
				cfg.MaxOutput = n
			}
		case "theme.label":
			cfg.Theme.Label = val
		case "theme.input":
			cfg.Theme.Input = val
		case "theme.text":
			cfg.Theme.Text = val
		default:
			if flag := cfg.boolField(key); flag != nil {
				if b, err := strconv.ParseBool(val); err == nil {
					*flag = b
				}
			}
		}
	}
	return cfg
}

func (c *Config) boolField(key string) *bool {
	switch key {
	case "no_defaults":
		return &c.NoDefaults
	case "ignore_command_case":
		return &c.IgnoreCommandCase
	case "no_history":
		return &c.NoHistory
	case "no_echo_back":
		return &c.NoEchoBack
	case "no_auto_scroll":
		return &c.NoAutoScroll
	case "no_newline_parsing":
		return &c.NoNewlineParsing
	case "danger_mode":
		return &c.DangerMode
	case "locked":
		return &c.Locked
	case "read_only":
		return &c.ReadOnly
	case "disabled":
		return &c.Disabled
	case "disable_on_process":
		return &c.DisableOnProcess
	case "hide_prompt_when_disabled":
		return &c.HidePromptWhenDisabled
	case "auto_focus":
		return &c.AutoFocus
	}
	return nil
}

// IsFlag 报告 key 是否为布尔开关，供 --enable/--disable 校验。
func IsFlag(key string) bool {
	var c Config
	return c.boolField(key) != nil
}
