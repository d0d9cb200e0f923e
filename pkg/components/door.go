package components

// DoorComponent 门
//
// 门可以用钥匙打开，也可以作为可缩小目标被激光"打开"：
// 打开后悬停文本切换为 OpenText，吸收光束的碰撞体变为触发体。
type DoorComponent struct {
	// ID 门标识，钥匙和存档通过它匹配
	ID string

	// Open 当前是否打开
	Open bool

	// ClosedText / OpenText 悬停提示
	ClosedText []string
	OpenText   []string

	// HoverText 当前悬停提示
	HoverText []string
}

// KeyComponent 钥匙
type KeyComponent struct {
	// DoorID 能打开的门
	DoorID string

	// SingleUse 使用后从背包移除并销毁
	SingleUse bool
}
