// Package dataset 负责读取原始评分日志与电影标题目录，并按 item_id 内连接成统一事件表。
//
// 输入格式（MovieLens 100k）：
//   - 评分日志：制表符分隔，四列 user_id, item_id, rating, timestamp，无表头
//   - 标题目录：逗号分隔，带表头，至少 item_id, title 两列
//
// 合并之后的下游一律用标题寻址，因此标题在目录中必须唯一。
package dataset

// RatingEvent 是一条原始评分记录，解析后不可变。
type RatingEvent struct {
	UserID    int64
	ItemID    int64
	Rating    float64
	Timestamp int64
}

// ItemTitle 是目录中的一行。
type ItemTitle struct {
	ItemID int64
	Title  string
}

// MergedEvent 是 RatingEvent 与 ItemTitle 按 ItemID 内连接的结果。
type MergedEvent struct {
	UserID    int64
	Title     string
	Rating    float64
	Timestamp int64
}
