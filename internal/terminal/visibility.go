package terminal

// promptVisible：只读时隐藏；设置了 HidePromptWhenDisabled 时，
// 显式禁用或“处理中禁用”生效时也隐藏。
func promptVisible(opts Options, processing bool) bool {
	if opts.ReadOnly {
		return false
	}
	if opts.HidePromptWhenDisabled && inputDisabled(opts, processing) {
		return false
	}
	return true
}

func inputDisabled(opts Options, processing bool) bool {
	return opts.Disabled || (opts.DisableOnProcess && processing)
}
