// Package embedded 提供嵌入资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量必须声明在项目根目录（embed.go）。
// 本包提供包装函数，让其他包可以访问嵌入的数据文件。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotInitialized 未调用 Init
var ErrNotInitialized = errors.New("embedded package not initialized, call Init() first")

// levelsDir 房间配置目录
const levelsDir = "data/levels"

var (
	dataFS      fs.FS
	initialized bool
)

// Init 初始化数据文件系统
// 必须在 main() 开始时、任何配置加载之前调用
func Init(data fs.FS) {
	dataFS = data
	initialized = true
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// normalize 路径必须以 "data/" 开头
func normalize(p string) (string, error) {
	if !initialized {
		return "", ErrNotInitialized
	}
	p = strings.TrimPrefix(filepath.ToSlash(p), "./")
	if !strings.HasPrefix(p, "data/") {
		return "", fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", p)
	}
	return p, nil
}

// ReadFile 读取嵌入文件
func ReadFile(p string) ([]byte, error) {
	p, err := normalize(p)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(dataFS, p)
}

// Exists 检查文件是否存在
func Exists(p string) bool {
	p, err := normalize(p)
	if err != nil {
		return false
	}
	_, err = fs.Stat(dataFS, p)
	return err == nil
}

// FS 返回数据文件系统
func FS() (fs.FS, error) {
	if !initialized {
		return nil, ErrNotInitialized
	}
	return dataFS, nil
}

// LevelPath 房间 ID 对应的配置路径
func LevelPath(roomID string) string {
	return path.Join(levelsDir, roomID+".yaml")
}

// ListLevels 列出所有内置房间 ID（按名称排序）
func ListLevels() ([]string, error) {
	if !initialized {
		return nil, ErrNotInitialized
	}
	matches, err := fs.Glob(dataFS, levelsDir+"/*.yaml")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, strings.TrimSuffix(path.Base(m), ".yaml"))
	}
	sort.Strings(ids)
	return ids, nil
}
