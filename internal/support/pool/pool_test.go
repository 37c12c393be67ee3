package pool

import "testing"

type node struct {
	a, b int
}

// TestArenaAlloc 测试 chunk 切分与统计
func TestArenaAlloc(t *testing.T) {
	a := NewArena[node](4)
	seen := make(map[*node]bool)
	for i := 0; i < 10; i++ {
		n := a.Alloc()
		if n.a != 0 || n.b != 0 {
			t.Fatalf("alloc %d: not zero value", i)
		}
		if seen[n] {
			t.Fatalf("alloc %d: pointer reused", i)
		}
		seen[n] = true
		n.a = i
	}
	chunks, allocs := a.Stats()
	if chunks != 3 || allocs != 10 {
		t.Errorf("stats = (%d, %d), want (3, 10)", chunks, allocs)
	}
}

// TestArenaDetach 测试 Detach 后不再复用旧 chunk
func TestArenaDetach(t *testing.T) {
	a := NewArena[node](0)
	first := a.Alloc()
	a.Detach()
	second := a.Alloc()
	first.a = 1
	if second.a != 0 {
		t.Error("detached arena shares chunk with earlier allocation")
	}
	if chunks, _ := a.Stats(); chunks != 2 {
		t.Errorf("chunks = %d, want 2", chunks)
	}
}

// TestArenaGrowth 测试 chunk 按 2 倍增长到上限，Detach 后回到最小值
func TestArenaGrowth(t *testing.T) {
	a := NewArena[node](64)
	for i := 0; i < 8+16+32+64+64; i++ {
		a.Alloc()
	}
	if chunks, _ := a.Stats(); chunks != 5 {
		t.Errorf("chunks = %d, want 5", chunks)
	}
	if cap(a.chunk) != 64 {
		t.Errorf("chunk size = %d, want capped at 64", cap(a.chunk))
	}

	a.Detach()
	a.Alloc()
	if cap(a.chunk) != MinChunkSize {
		t.Errorf("chunk size after Detach = %d, want %d", cap(a.chunk), MinChunkSize)
	}
}

// TestArenaZeroValue 测试零值 Arena 可直接使用
func TestArenaZeroValue(t *testing.T) {
	var a Arena[node]
	for i := 0; i < 20; i++ {
		if a.Alloc() == nil {
			t.Fatal("nil allocation")
		}
	}
	if chunks, allocs := a.Stats(); chunks != 2 || allocs != 20 {
		t.Errorf("stats = (%d, %d), want (2, 20)", chunks, allocs)
	}
}
