package service

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSearchFilter(t *testing.T) {
	// 无搜索词：只排除自己
	f := searchFilter("u1", "")
	if _, ok := f["full_name"]; ok {
		t.Fatalf("empty name must not add a name condition: %v", f)
	}
	ne, ok := f["_id"].(bson.M)
	if !ok || ne["$ne"] != "u1" {
		t.Fatalf("self exclusion missing: %v", f)
	}

	// 有搜索词：大小写不敏感的模糊匹配
	f = searchFilter("u1", "ali")
	re, ok := f["full_name"].(primitive.Regex)
	if !ok {
		t.Fatalf("want regex condition, got %v", f["full_name"])
	}
	if re.Pattern != "ali" || re.Options != "i" {
		t.Fatalf("want case-insensitive /ali/, got %+v", re)
	}

	// 正则元字符按字面量处理
	f = searchFilter("u1", "a.b")
	re = f["full_name"].(primitive.Regex)
	if re.Pattern != `a\.b` {
		t.Fatalf("meta chars must be escaped, got %q", re.Pattern)
	}
}
