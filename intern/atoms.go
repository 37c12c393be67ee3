package intern

import (
	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/uniyakcom/literal/core"
)

// Atoms 单个解析器私有的标识符缓存（非并发安全）
//
// 位于共享 Interner 之前: 热 key 命中时既不访问共享表也不拷贝。
// 缓存的 key 与 value 都是 Interner 返回的规范句柄，不引用输入内存。
type Atoms struct {
	lru    *simplelru.LRU[string, string]
	shared core.Interner
}

// NewAtoms 创建标识符缓存；shared 为 nil 时使用 Global()
func NewAtoms(size int, shared core.Interner) *Atoms {
	if size <= 0 {
		size = core.DefaultAtomCacheSize
	}
	if shared == nil {
		shared = Global()
	}
	l, err := simplelru.NewLRU[string, string](size, nil)
	if err != nil {
		// size > 0 时 NewLRU 不会失败
		panic("intern: " + err.Error())
	}
	return &Atoms{lru: l, shared: shared}
}

// Shared 返回底层共享 Interner
func (a *Atoms) Shared() core.Interner { return a.shared }

// Make 返回 s 的规范句柄（必要时登记到共享表）
func (a *Atoms) Make(s string) string {
	if h, ok := a.lru.Get(s); ok {
		return h
	}
	h := a.shared.Intern(s)
	a.lru.Add(h, h)
	return h
}

// Existing 仅当 s 已是已知标识符时返回其句柄
func (a *Atoms) Existing(s string) (string, bool) {
	if h, ok := a.lru.Get(s); ok {
		return h, true
	}
	h, ok := a.shared.Existing(s)
	if ok {
		a.lru.Add(h, h)
	}
	return h, ok
}

// Purge 清空私有缓存
func (a *Atoms) Purge() { a.lru.Purge() }
