// Command movierec-analyze 离线打印数据集报告、热门电影与某部电影的相似列表。
//
//	movierec-analyze -config configs/movierec.yaml -movie "Star Wars (1977)" -n 10
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rushteam/movierec/config"
	"github.com/rushteam/movierec/engine"
	"github.com/rushteam/movierec/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default $MOVIEREC_CONFIG)")
	movie := flag.String("movie", "Star Wars (1977)", "movie to list similar titles for")
	n := flag.Int("n", 10, "rows per section")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: "console"})

	eng, err := engine.New(engine.NewLoader(engine.FileLoadFunc(cfg.Data.RatingsPath, cfg.Data.TitlesPath)), engine.Options{
		MinRatings:         cfg.Engine.MinRatings,
		MinCommonUsers:     cfg.Engine.MinCommonUsers,
		TopRatedMinRatings: cfg.Engine.TopRatedMinRatings,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("create engine")
	}

	if err := run(context.Background(), os.Stdout, eng, *movie, *n); err != nil {
		logging.Fatal().Err(err).Msg("analyze")
	}
}

func run(ctx context.Context, out io.Writer, eng *engine.Engine, movie string, n int) error {
	report, err := eng.Report(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "ratings\t%d\n", report.TotalRatings)
	fmt.Fprintf(w, "users\t%d\n", report.UniqueUsers)
	fmt.Fprintf(w, "titles\t%d\n", report.UniqueTitles)
	rc := report.RatingCounts
	fmt.Fprintf(w, "ratings per title\tmin %d  p50 %d  p90 %d  p99 %d  max %d  mean %.1f\n",
		rc.Min, rc.P50, rc.P90, rc.P99, rc.Max, rc.Mean)
	fmt.Fprintln(w, "\nmean rating\ttitles")
	for _, b := range report.MeanRatings {
		fmt.Fprintf(w, "[%.1f, %.1f)\t%d\n", b.Lower, b.Upper, b.Count)
	}

	popular, err := eng.Popular(ctx, n)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nmost rated\tnum_ratings\trating")
	for _, it := range popular {
		fmt.Fprintf(w, "%s\t%d\t%.2f\n", it.ID, it.Support, it.MeanRating)
	}

	similar, err := eng.Recommend(ctx, movie, n)
	if err != nil {
		return fmt.Errorf("similar to %q: %w", movie, err)
	}
	fmt.Fprintf(w, "\nsimilar to %s\tcorrelation\tnum_ratings\n", movie)
	for _, it := range similar {
		fmt.Fprintf(w, "%s\t%.4f\t%d\n", it.ID, it.Score, it.Support)
	}
	return w.Flush()
}
