package terminal

import (
	"termwidget/internal/commands"
	"termwidget/internal/i18n"
	"termwidget/internal/render"
)

// DefaultPromptLabel 是未配置提示符时使用的标签。
const DefaultPromptLabel = "$"

// Options 描述一个终端会话的全部行为开关。零值即可用：无欢迎语、提示符 "$"、不限输出。
type Options struct {
	Commands          []*commands.Command
	NoDefaults        bool
	IgnoreCommandCase bool
	NoHistory         bool
	NoEchoBack        bool
	NoAutoScroll      bool
	NoNewlineParsing  bool
	// DangerMode 允许输出中的原始转义序列直接送达终端。
	DangerMode bool
	// Locked 时每次输出都替换最后一行，用于进度类单行刷新。
	Locked                 bool
	ReadOnly               bool
	Disabled               bool
	DisableOnProcess       bool
	HidePromptWhenDisabled bool
	// ErrorText 是找不到命令时的提示模板，[command] 占位符不区分大小写。
	ErrorText     string
	Welcome       Welcome
	PromptLabel   string
	StyleEchoBack render.EchoStyle
	// CommandCallback 在每次提交处理完成后调用，运行在会话 worker 上。
	CommandCallback func(Result)
	// MaxOutput 为输出区行数上限，0 表示不限制。
	MaxOutput int
	Language  i18n.Language
	AutoFocus bool
	// Theme 为 nil 时使用 render.DefaultTheme()。
	Theme *render.Theme
}

func (o Options) withDefaults() Options {
	if o.PromptLabel == "" {
		o.PromptLabel = DefaultPromptLabel
	}
	o.Language = i18n.Normalize(string(o.Language))
	if o.MaxOutput < 0 {
		o.MaxOutput = 0
	}
	if o.Theme == nil {
		theme := render.DefaultTheme()
		o.Theme = &theme
	}
	return o
}

// Result 是一次提交的处理结果，交给 CommandCallback。
// 空输入时 Command 为空；找不到命令时 Result 与 Err 均为空。
type Result struct {
	SubmissionID string
	Command      string
	Args         []string
	RawInput     string
	Result       any
	Err          error
}

type welcomeKind int

const (
	welcomeNone welcomeKind = iota
	welcomeDefault
	welcomeText
	welcomeLines
)

// Welcome 是挂载时输出的欢迎语：无、默认文案、一段文本或多行文本。
type Welcome struct {
	kind  welcomeKind
	lines []string
}

// WelcomeNone 不输出欢迎语（零值）。
func WelcomeNone() Welcome { return Welcome{} }

// WelcomeDefault 输出当前语言的默认欢迎语。
func WelcomeDefault() Welcome { return Welcome{kind: welcomeDefault} }

// WelcomeText 输出一段自定义文本；空文本等同于不输出。
func WelcomeText(text string) Welcome {
	if text == "" {
		return WelcomeNone()
	}
	return Welcome{kind: welcomeText, lines: []string{text}}
}

// WelcomeLines 按顺序逐行输出。
func WelcomeLines(lines ...string) Welcome {
	if len(lines) == 0 {
		return WelcomeNone()
	}
	return Welcome{kind: welcomeLines, lines: append([]string(nil), lines...)}
}

// IsZero 报告是否不输出欢迎语。
func (w Welcome) IsZero() bool {
	return w.kind == welcomeNone
}

// Messages 返回要输出的各行。
func (w Welcome) Messages(lang i18n.Language) []string {
	switch w.kind {
	case welcomeDefault:
		return []string{lang.Text(i18n.KeyWelcome)}
	case welcomeText, welcomeLines:
		return append([]string(nil), w.lines...)
	default:
		return nil
	}
}
