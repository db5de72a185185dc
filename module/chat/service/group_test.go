package service

import "testing"

func TestWithoutMember(t *testing.T) {
	got := withoutMember([]string{"u1", "u2", "u3"}, "u2")
	if len(got) != 2 || got[0] != "u1" || got[1] != "u3" {
		t.Fatalf("want [u1 u3], got %v", got)
	}

	// 不在列表里：原样返回
	got = withoutMember([]string{"u1", "u2"}, "u9")
	if len(got) != 2 {
		t.Fatalf("absent member must not change list: %v", got)
	}

	// 最后一个成员退出后列表为空
	got = withoutMember([]string{"u1"}, "u1")
	if len(got) != 0 {
		t.Fatalf("want empty, got %v", got)
	}

	if got := withoutMember(nil, "u1"); len(got) != 0 {
		t.Fatalf("nil list: %v", got)
	}
}
