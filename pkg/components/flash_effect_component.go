package components

// FlashEffectComponent 闪烁提示组件
// 用于背包已满时的闪烁反馈：闪烁 Times 次，每次 Interval 秒（半程高亮，半程恢复）
//
// 正在闪烁时再次请求不会重新开始。
type FlashEffectComponent struct {
	// Times 闪烁次数
	Times int

	// Interval 完成一次闪烁的时间（秒）
	Interval float64

	// Elapsed 已经过的时间（秒）
	Elapsed float64

	// Lit 当前是否处于高亮半程
	Lit bool

	// IsActive 是否正在闪烁
	IsActive bool
}
