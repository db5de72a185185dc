package ids

import (
	"sync"
	"testing"
)

func TestGenerateMonotonic(t *testing.T) {
	prev := Generate()
	for i := 0; i < 1000; i++ {
		id := Generate()
		if id <= prev {
			t.Fatalf("ids must be strictly increasing: %d then %d", prev, id)
		}
		prev = id
	}
}

func TestGenerateUniqueUnderConcurrency(t *testing.T) {
	const (
		workers = 8
		perWork = 500
	)
	var (
		mu   sync.Mutex
		seen = make(map[int64]bool, workers*perWork)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perWork)
			for i := 0; i < perWork; i++ {
				local = append(local, Generate())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				if seen[id] {
					t.Errorf("duplicate id %d", id)
				}
				seen[id] = true
			}
		}()
	}
	wg.Wait()
}

func TestSetNodeIDOutOfRange(t *testing.T) {
	SetNodeID(5000) // 越界回落到默认节点
	if got := (Generate() >> 12) & 0x3FF; got != 1 {
		t.Fatalf("node bits = %d, want fallback 1", got)
	}
	SetNodeID(7)
	if got := (Generate() >> 12) & 0x3FF; got != 7 {
		t.Fatalf("node bits = %d, want 7", got)
	}
	SetNodeID(1)
}
