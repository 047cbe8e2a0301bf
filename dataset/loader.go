package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/logging"
)

const eventFields = 4

// Load 读取评分日志与标题目录并做内连接。
// 两个文件并发解析，任一失败即返回：
//   - 文件缺失/不可读：DataNotFoundError
//   - 行无法解析：DataFormatError
func Load(ctx context.Context, eventsPath, titlesPath string) ([]MergedEvent, error) {
	var (
		events []RatingEvent
		titles []ItemTitle
	)
	start := time.Now()

	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		events, err = readFile(eventsPath, ReadEvents)
		return err
	})
	eg.Go(func() error {
		var err error
		titles, err = readFile(titlesPath, ReadTitles)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged, err := Merge(events, titles)
	if err != nil {
		return nil, err
	}

	log := logging.Component("dataset")
	log.Info().
		Int("events", len(events)).
		Int("titles", len(titles)).
		Int("merged", len(merged)).
		Dur("took", time.Since(start)).
		Msg("dataset loaded")
	return merged, nil
}

func readFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleDataset, core.ErrorCodeDataNotFound, err,
			"dataset: open %s", path)
	}
	defer f.Close()

	out, err := parse(bufio.NewReader(f))
	if err != nil {
		var domainErr *core.DomainError
		if errors.As(err, &domainErr) {
			domainErr.Message = "dataset: " + path + ": " + strings.TrimPrefix(domainErr.Message, "dataset: ")
			return nil, domainErr
		}
		return nil, err
	}
	return out, nil
}

func parseErrorLine(err error) int {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return pe.Line
	}
	return 0
}

func formatError(err error, line int, format string, args ...any) error {
	de := core.WrapDomainError(core.ModuleDataset, core.ErrorCodeDataFormat, err, format, args...)
	de.Message = "dataset: line " + strconv.Itoa(line) + ": " + de.Message
	return de
}

// ReadEvents 解析制表符分隔的评分日志。每行必须恰好四列。
func ReadEvents(r io.Reader) ([]RatingEvent, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	events := make([]RatingEvent, 0, 1<<14)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, formatError(err, parseErrorLine(err), "malformed record")
		}
		line, _ := reader.FieldPos(0)
		if len(rec) != eventFields {
			return nil, formatError(nil, line, "expected %d fields, got %d", eventFields, len(rec))
		}

		var ev RatingEvent
		if ev.UserID, err = strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64); err != nil {
			return nil, formatError(err, line, "user_id %q", rec[0])
		}
		if ev.ItemID, err = strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64); err != nil {
			return nil, formatError(err, line, "item_id %q", rec[1])
		}
		if ev.Rating, err = strconv.ParseFloat(strings.TrimSpace(rec[2]), 64); err != nil {
			return nil, formatError(err, line, "rating %q", rec[2])
		}
		if ev.Timestamp, err = strconv.ParseInt(strings.TrimSpace(rec[3]), 10, 64); err != nil {
			return nil, formatError(err, line, "timestamp %q", rec[3])
		}
		events = append(events, ev)
	}
	return events, nil
}

// ReadTitles 解析带表头的标题目录。
// item_id / title 列按表头名定位，找不到时退回第 0、1 列。
// 重复的 item_id 或重复的标题都视为格式错误。
func ReadTitles(r io.Reader) ([]ItemTitle, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, formatError(nil, 1, "missing header")
	}
	if err != nil {
		return nil, formatError(err, 1, "malformed header")
	}
	idCol, titleCol := 0, 1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "item_id":
			idCol = i
		case "title":
			titleCol = i
		}
	}
	width := max(idCol, titleCol) + 1

	titles := make([]ItemTitle, 0, 2048)
	seenIDs := make(map[int64]struct{})
	seenTitles := make(map[string]int64)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, formatError(err, parseErrorLine(err), "malformed record")
		}
		line, _ := reader.FieldPos(0)
		if len(rec) < width {
			return nil, formatError(nil, line, "expected at least %d fields, got %d", width, len(rec))
		}

		id, err := strconv.ParseInt(strings.TrimSpace(rec[idCol]), 10, 64)
		if err != nil {
			return nil, formatError(err, line, "item_id %q", rec[idCol])
		}
		title := rec[titleCol]
		if _, dup := seenIDs[id]; dup {
			return nil, formatError(nil, line, "duplicate item_id %d", id)
		}
		if other, dup := seenTitles[title]; dup {
			return nil, formatError(nil, line, "title %q already used by item_id %d", title, other)
		}
		seenIDs[id] = struct{}{}
		seenTitles[title] = id
		titles = append(titles, ItemTitle{ItemID: id, Title: title})
	}
	return titles, nil
}

// Merge 按 ItemID 内连接。没有标题的事件被丢弃，这不是错误。
// 输出保持 events 的原始顺序。
func Merge(events []RatingEvent, titles []ItemTitle) ([]MergedEvent, error) {
	byID := make(map[int64]string, len(titles))
	used := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		if _, dup := byID[t.ItemID]; dup {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeDataFormat,
				"dataset: duplicate item_id "+strconv.FormatInt(t.ItemID, 10))
		}
		if _, dup := used[t.Title]; dup {
			return nil, core.NewDomainError(core.ModuleDataset, core.ErrorCodeDataFormat,
				"dataset: duplicate title "+strconv.Quote(t.Title))
		}
		byID[t.ItemID] = t.Title
		used[t.Title] = struct{}{}
	}

	merged := make([]MergedEvent, 0, len(events))
	dropped := 0
	for _, ev := range events {
		title, ok := byID[ev.ItemID]
		if !ok {
			dropped++
			continue
		}
		merged = append(merged, MergedEvent{
			UserID:    ev.UserID,
			Title:     title,
			Rating:    ev.Rating,
			Timestamp: ev.Timestamp,
		})
	}
	if dropped > 0 {
		log := logging.Component("dataset")
		log.Debug().Int("dropped", dropped).Msg("events without title dropped")
	}
	return merged, nil
}
