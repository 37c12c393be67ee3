package shape

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestAddPropertyBuildsTransitions 测试加属性转移与偏移
func TestAddPropertyBuildsTransitions(t *testing.T) {
	tb := NewTable(Config{})

	a, off, ok := tb.AddProperty(Root, "a")
	require.True(t, ok)
	require.Equal(t, 0, off)

	ab, off, ok := tb.AddProperty(a, "b")
	require.True(t, ok)
	require.Equal(t, 1, off)
	require.Equal(t, []string{"a", "b"}, tb.Keys(ab))
	require.Equal(t, 2, tb.Len(ab))

	// 同一转移复用同一节点
	again, _, ok := tb.AddProperty(Root, "a")
	require.True(t, ok)
	require.Equal(t, a, again)

	parent, key, ok := tb.Parent(ab)
	require.True(t, ok)
	require.Equal(t, a, parent)
	require.Equal(t, "b", key)
}

// TestDuplicateKeyKeepsShape 测试重复 key 不产生新 shape
func TestDuplicateKeyKeepsShape(t *testing.T) {
	tb := NewTable(Config{})
	a, _, _ := tb.AddProperty(Root, "a")
	ab, _, _ := tb.AddProperty(a, "b")

	same, off, ok := tb.AddProperty(ab, "a")
	require.True(t, ok)
	require.Equal(t, ab, same)
	require.Equal(t, 0, off)

	_, _, hit := tb.Resolve(ab, "a")
	require.False(t, hit, "duplicate key must not hit the transition cache")
}

// TestSingleTransitionShortcut 测试单转移捷径
func TestSingleTransitionShortcut(t *testing.T) {
	tb := NewTable(Config{})
	x, _, _ := tb.AddProperty(Root, "x")

	next, key, ok := tb.TrySingleTransition(Root)
	require.True(t, ok)
	require.Equal(t, x, next)
	require.Equal(t, "x", key)

	// 出现第二条出边后捷径失效，转移表仍命中
	y, _, _ := tb.AddProperty(Root, "y")
	_, _, ok = tb.TrySingleTransition(Root)
	require.False(t, ok)

	got, off, ok := tb.Resolve(Root, "y")
	require.True(t, ok)
	require.Equal(t, y, got)
	require.Equal(t, 0, off)
}

// TestResolveMatchesGeneralPath 测试缓存结果与通用路径一致
func TestResolveMatchesGeneralPath(t *testing.T) {
	tb := NewTable(Config{})
	docs := [][]string{
		{"id", "name", "tags"},
		{"id", "name", "tags"},
		{"id", "name"},
		{"id", "email"},
		{"name", "id"},
	}
	for _, keys := range docs {
		cur := Root
		for i, k := range keys {
			next, off, hit := tb.Resolve(cur, k)
			gNext, gOff, ok := tb.AddProperty(cur, k)
			require.True(t, ok)
			if hit {
				require.Equal(t, gNext, next)
				require.Equal(t, gOff, off)
			}
			require.Equal(t, i, gOff)
			cur = gNext
		}
		require.Equal(t, keys, tb.Keys(cur))
	}
	st := tb.Stats()
	require.Positive(t, st.Hits)
	require.Positive(t, st.Misses)
}

// TestCapacityLimits 测试容量上限
func TestCapacityLimits(t *testing.T) {
	tb := NewTable(Config{MaxProperties: 3})
	cur := Root
	for i := 0; i < 3; i++ {
		next, _, ok := tb.AddProperty(cur, fmt.Sprintf("k%d", i))
		require.True(t, ok)
		cur = next
	}
	_, _, ok := tb.AddProperty(cur, "k3")
	require.False(t, ok, "property limit must reject the transition")

	small := NewTable(Config{MaxShapes: 2})
	_, _, ok = small.AddProperty(Root, "a")
	require.True(t, ok)
	_, _, ok = small.AddProperty(Root, "b")
	require.False(t, ok, "shape limit must reject new nodes")
}

// TestDictionarySentinel 测试字典模式哨兵
func TestDictionarySentinel(t *testing.T) {
	tb := NewTable(Config{})
	_, _, ok := tb.Resolve(Dictionary, "a")
	require.False(t, ok)
	_, _, ok = tb.AddProperty(Dictionary, "a")
	require.False(t, ok)
	require.True(t, IsDictionary(Dictionary))
	require.False(t, IsDictionary(Root))
	require.Nil(t, tb.Keys(Dictionary))
}

// TestLookupIndexedShape 测试属性数较多时的索引查找
func TestLookupIndexedShape(t *testing.T) {
	tb := NewTable(Config{})
	cur := Root
	for i := 0; i < 20; i++ {
		cur, _, _ = tb.AddProperty(cur, fmt.Sprintf("field%02d", i))
	}
	for i := 0; i < 20; i++ {
		off, ok := tb.Lookup(cur, fmt.Sprintf("field%02d", i))
		require.True(t, ok)
		require.Equal(t, i, off)
	}
	_, ok := tb.Lookup(cur, "missing")
	require.False(t, ok)
}

// TestConcurrentAddProperty 测试并发构建同一转移得到同一节点
func TestConcurrentAddProperty(t *testing.T) {
	tb := NewTable(Config{})
	const workers = 8
	ids := make([]ID, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			cur := Root
			for _, k := range []string{"a", "b", "c", "d"} {
				cur, _, _ = tb.AddProperty(cur, k)
			}
			ids[w] = cur
		}(w)
	}
	wg.Wait()
	for _, id := range ids {
		require.Equal(t, ids[0], id)
	}
	require.Equal(t, 5, tb.Stats().Shapes)
}
