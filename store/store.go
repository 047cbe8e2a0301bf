// Package store 提供 core.Store 的实现，引擎用它缓存推荐结果。
//
// 示例：
//
//	var s core.Store = store.NewMemoryStore()
//	r, err := store.NewRedisStore(ctx, "127.0.0.1:6379", "", 0)
package store

import "github.com/rushteam/movierec/core"

// ErrNotFound 是 core.ErrStoreNotFound 的别名。
var ErrNotFound = core.ErrStoreNotFound

var (
	_ core.Store = (*MemoryStore)(nil)
	_ core.Store = (*RedisStore)(nil)
)
