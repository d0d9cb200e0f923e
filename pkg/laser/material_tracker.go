package laser

// MaterialTracker 保证描边材质只跟随当前缩小目标
//
// 不变式：任意时刻最多一个对象带有描边。
type MaterialTracker struct {
	sink     OutlineSink
	previous Handle
}

// NewMaterialTracker 创建材质跟踪器
func NewMaterialTracker(sink OutlineSink) *MaterialTracker {
	return &MaterialTracker{sink: sink}
}

// Current 当前带描边的对象
func (m *MaterialTracker) Current() Handle {
	return m.previous
}

// Update 每个 tick 调用；目标未变化时不做任何事
//
// 先从旧目标移除，再添加到新目标，因此不会出现两个对象同时带描边。
func (m *MaterialTracker) Update(newTarget Handle) {
	if newTarget == m.previous {
		return
	}

	if m.previous != None {
		m.sink.SetOutlineMaterial(m.previous, false)
	}
	if newTarget != None {
		m.sink.SetOutlineMaterial(newTarget, true)
	}
	m.previous = newTarget
}

// Forget 目标被销毁时调用，不再向其发送移除信号
func (m *MaterialTracker) Forget(h Handle) {
	if m.previous == h {
		m.previous = None
	}
}
