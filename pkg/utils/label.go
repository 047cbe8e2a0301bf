package utils

// Label 是推荐链路中的一等公民：可解释、可追踪、可透传。
// 例如 i2i 召回会写入 recall_source=i2i、cf_metric=pearson，
// 过滤节点会写入 filtered=<filter name>。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rerank / engine ...
}

// 常用 Label key
const (
	LabelRecallSource = "recall_source"
	LabelMetric       = "cf_metric"
	LabelFiltered     = "filtered"
	LabelRank         = "rank_policy"
)

// MergeLabel 用于合并同名 Label：Value 以 '|' 累积，Source 以 ',' 累积。
// 任一方 Value 为空时直接取另一方。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := Label{Value: existing.Value + "|" + incoming.Value}
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "" || incoming.Source == existing.Source:
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
