package i18n

import "strings"

// Language 描述终端内置文案使用的语言，取简短代码（如 en、zh）。
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"

	// DefaultLanguage 未配置时的默认语言。
	DefaultLanguage = LanguageEnglish
)

// Normalize 将配置里的语言值转换为统一代码。
// 空字符串回退到默认语言，未知值原样保留（文案查找时再回退）。
func Normalize(value string) Language {
	lang := strings.ToLower(strings.TrimSpace(value))
	switch lang {
	case "":
		return DefaultLanguage
	case "en", "en-us", "en_us", "en-gb", "english":
		return LanguageEnglish
	case "zh", "zh-cn", "zh_cn", "zh-hans", "cn", "chinese", "中文":
		return LanguageChinese
	default:
		return Language(lang)
	}
}

// Code 返回规范化后的语言代码。
func (l Language) Code() string {
	return string(Normalize(string(l)))
}

// DisplayName 返回适合展示的语言名称，未知语言直接返回代码。
func (l Language) DisplayName() string {
	switch Normalize(string(l)) {
	case LanguageEnglish:
		return "English"
	case LanguageChinese:
		return "中文"
	default:
		return strings.TrimSpace(string(l))
	}
}

// Key 标识一条内置文案。
type Key string

const (
	KeyWelcome          Key = "welcome"
	KeyNotFound         Key = "not_found"
	KeyHelpDescription  Key = "help.description"
	KeyClearDescription Key = "clear.description"
	KeyHandlerFailed    Key = "handler.failed"
	KeyProcessing       Key = "processing"
)

// NotFound 与 HandlerFailed 文案中的占位符。
const (
	PlaceholderCommand = "[command]"
	PlaceholderError   = "[error]"
)

var catalog = map[Language]map[Key]string{
	LanguageEnglish: {
		KeyWelcome:          "Welcome to the terminal! Type 'help' to get a list of commands.",
		KeyNotFound:         "Command '[command]' not found!",
		KeyHelpDescription:  "Show a list of available commands.",
		KeyClearDescription: "Empty the terminal window.",
		KeyHandlerFailed:    "Command '[command]' failed: [error]",
		KeyProcessing:       "Processing…",
	},
	LanguageChinese: {
		KeyWelcome:          "欢迎使用终端！输入 'help' 查看可用命令。",
		KeyNotFound:         "未找到命令 '[command]'！",
		KeyHelpDescription:  "列出所有可用命令。",
		KeyClearDescription: "清空终端窗口。",
		KeyHandlerFailed:    "命令 '[command]' 执行失败：[error]",
		KeyProcessing:       "处理中…",
	},
}

// Text 返回指定语言的文案；缺失时回退到默认语言。
func (l Language) Text(key Key) string {
	if texts, ok := catalog[Normalize(string(l))]; ok {
		if text, ok := texts[key]; ok {
			return text
		}
	}
	return catalog[DefaultLanguage][key]
}
