// Package matrix 把合并事件表透视成稀疏的 用户×电影 评分矩阵。
//
// 缺失单元与评分 0 严格区分：Rating 返回 (0, false) 表示该用户没有给该电影评分。
// 同一 (user, title) 出现多次时取这些评分的平均值。
package matrix

import (
	"sort"

	"github.com/rushteam/movierec/dataset"
)

// Cell 是矩阵中的一个已存在单元。
type Cell struct {
	UserID int64
	Rating float64
}

// Entry 是用户行中的一个已存在单元。
type Entry struct {
	Title  string
	Rating float64
}

// RatingMatrix 是只读的稀疏评分矩阵。
// 列按 UserID 升序存储，行按 Title 升序存储，遍历顺序固定，浮点累加结果可复现。
type RatingMatrix struct {
	cols   map[string][]Cell
	rows   map[int64][]Entry
	titles []string
	users  []int64
}

type cellKey struct {
	user  int64
	title string
}

// Pivot 从合并事件构建矩阵。
func Pivot(events []dataset.MergedEvent) *RatingMatrix {
	type acc struct {
		sum   float64
		count int
	}
	cells := make(map[cellKey]*acc, len(events))
	for _, ev := range events {
		k := cellKey{user: ev.UserID, title: ev.Title}
		a := cells[k]
		if a == nil {
			a = &acc{}
			cells[k] = a
		}
		a.sum += ev.Rating
		a.count++
	}

	m := &RatingMatrix{
		cols: make(map[string][]Cell),
		rows: make(map[int64][]Entry),
	}
	for k, a := range cells {
		r := a.sum / float64(a.count)
		m.cols[k.title] = append(m.cols[k.title], Cell{UserID: k.user, Rating: r})
		m.rows[k.user] = append(m.rows[k.user], Entry{Title: k.title, Rating: r})
	}

	m.titles = make([]string, 0, len(m.cols))
	for title, col := range m.cols {
		sort.Slice(col, func(i, j int) bool { return col[i].UserID < col[j].UserID })
		m.titles = append(m.titles, title)
	}
	sort.Strings(m.titles)

	m.users = make([]int64, 0, len(m.rows))
	for user, row := range m.rows {
		sort.Slice(row, func(i, j int) bool { return row[i].Title < row[j].Title })
		m.users = append(m.users, user)
	}
	sort.Slice(m.users, func(i, j int) bool { return m.users[i] < m.users[j] })
	return m
}

// Rating 返回用户对电影的评分；ok 为 false 表示缺失。
func (m *RatingMatrix) Rating(userID int64, title string) (float64, bool) {
	col := m.cols[title]
	i := sort.Search(len(col), func(i int) bool { return col[i].UserID >= userID })
	if i < len(col) && col[i].UserID == userID {
		return col[i].Rating, true
	}
	return 0, false
}

// HasTitle 报告矩阵中是否存在该电影的列。
func (m *RatingMatrix) HasTitle(title string) bool {
	_, ok := m.cols[title]
	return ok
}

// HasUser 报告矩阵中是否存在该用户的行。
func (m *RatingMatrix) HasUser(userID int64) bool {
	_, ok := m.rows[userID]
	return ok
}

// Column 返回电影列（按 UserID 升序）。返回的切片只读。
func (m *RatingMatrix) Column(title string) []Cell {
	return m.cols[title]
}

// Row 返回用户行（按 Title 升序）。返回的切片只读。
func (m *RatingMatrix) Row(userID int64) []Entry {
	return m.rows[userID]
}

// Titles 返回全部列标题（升序）。
func (m *RatingMatrix) Titles() []string {
	return m.titles
}

// Users 返回全部用户（升序）。
func (m *RatingMatrix) Users() []int64 {
	return m.users
}

// Len 返回已存在单元数。
func (m *RatingMatrix) Len() int {
	n := 0
	for _, col := range m.cols {
		n += len(col)
	}
	return n
}

// CoRated 以归并方式取出两列中共同评分用户的评分对，顺序为 UserID 升序。
func CoRated(a, b []Cell) (xs, ys []float64) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].UserID < b[j].UserID:
			i++
		case a[i].UserID > b[j].UserID:
			j++
		default:
			xs = append(xs, a[i].Rating)
			ys = append(ys, b[j].Rating)
			i++
			j++
		}
	}
	return xs, ys
}
