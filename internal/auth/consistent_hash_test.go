package auth

import "testing"

func TestGetNodeStable(t *testing.T) {
	ring := NewConsistentHashRing([]string{"n1", "n2", "n3"}, 50)

	keys := []string{"token-a", "token-b", "token-c", "token-d"}
	first := make(map[string]string)
	for _, k := range keys {
		first[k] = ring.GetNode(k)
		if first[k] == "" {
			t.Fatalf("empty node for %q", k)
		}
	}
	// 同一 key 多次查询必须落在同一节点
	for i := 0; i < 10; i++ {
		for _, k := range keys {
			if got := ring.GetNode(k); got != first[k] {
				t.Fatalf("node for %q changed: %q -> %q", k, first[k], got)
			}
		}
	}
}

func TestGetNodeMembership(t *testing.T) {
	nodes := map[string]struct{}{"n1": {}, "n2": {}, "n3": {}}
	ring := NewConsistentHashRing([]string{"n1", "n2", "n3"}, 50)
	for i := 0; i < 100; i++ {
		node := ring.GetNode(string(rune('a' + i%26)))
		if _, ok := nodes[node]; !ok {
			t.Fatalf("unknown node %q", node)
		}
	}
}

func TestEmptyNodesFallback(t *testing.T) {
	ring := NewConsistentHashRing(nil, 0)
	if node := ring.GetNode("any"); node == "" {
		t.Fatalf("expected default node, got empty")
	}
}

func TestAddIdempotent(t *testing.T) {
	ring := NewConsistentHashRing([]string{"n1"}, 10)
	before := ring.GetNode("key")
	ring.Add("n1") // 重复添加不应改变环
	if after := ring.GetNode("key"); after != before {
		t.Fatalf("duplicate add changed assignment: %q -> %q", before, after)
	}
}
