package laser

import "errors"

// ErrInvalidInput 输入不合法（零长度方向、非正的最大距离等）
//
// 这是核心算法唯一的失败分类；无命中、无目标、循环反射都是正常结束状态。
var ErrInvalidInput = errors.New("laser: invalid input")
