package server

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/stats"
)

const (
	msgNoRecommendations = "no recommendations found"
	msgUnavailable       = "recommendation service unavailable"
	maxN                 = 1000
)

type errorBody struct {
	Error string `json:"error"`
}

// RecommendRequest 是 POST /api/recommend 的请求体，GET 时取自 query。
// N 省略时使用服务端配置的条数（engine.top_n）；显式给出时必须在 [1, 1000] 内，0 会被拒绝。
type RecommendRequest struct {
	Movie string `json:"movie" validate:"required"`
	N     *int   `json:"n,omitempty" validate:"omitempty,gte=1,lte=1000"`
}

func (r RecommendRequest) count() int {
	if r.N == nil {
		return 0
	}
	return *r.N
}

// Recommendation 是返回给调用方的一条相似电影。
type Recommendation struct {
	Title       string  `json:"title"`
	Correlation float64 `json:"correlation"`
	NumRatings  int     `json:"num_ratings"`
}

// RecommendResponse 是 /api/recommend 的响应。
type RecommendResponse struct {
	Movie           string           `json:"movie"`
	Recommendations []Recommendation `json:"recommendations"`
}

// MovieStat 是 popular / top-rated / browse 的单行。
type MovieStat struct {
	Title      string  `json:"title"`
	Rating     float64 `json:"rating"`
	NumRatings int     `json:"num_ratings"`
}

// UserRecommendation 是为用户预测的一条结果。
type UserRecommendation struct {
	Title          string  `json:"title"`
	PredictedScore float64 `json:"predicted_score"`
	NumRatings     int     `json:"num_ratings"`
}

func (s *Server) handleRecommendGet(w http.ResponseWriter, r *http.Request) {
	req := RecommendRequest{Movie: strings.TrimSpace(r.URL.Query().Get("movie"))}
	if raw := r.URL.Query().Get("n"); strings.TrimSpace(raw) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			writeError(w, http.StatusBadRequest, "n must be an integer between 1 and 1000")
			return
		}
		req.N = &n
	}
	s.recommend(w, r, req)
}

func (s *Server) handleRecommendPost(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Movie = strings.TrimSpace(req.Movie)
	s.recommend(w, r, req)
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request, req RecommendRequest) {
	if err := s.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	items, err := s.engine.Recommend(r.Context(), req.Movie, req.count())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if len(items) == 0 {
		writeError(w, http.StatusNotFound, msgNoRecommendations)
		return
	}

	resp := RecommendResponse{Movie: req.Movie, Recommendations: make([]Recommendation, 0, len(items))}
	for _, it := range items {
		resp.Recommendations = append(resp.Recommendations, Recommendation{
			Title:       it.ID,
			Correlation: round(it.Score, 4),
			NumRatings:  it.Support,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	n, err := queryInt(r, "n", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.engine.Popular(r.Context(), n)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	out := make([]MovieStat, 0, len(items))
	for _, it := range items {
		out = append(out, MovieStat{Title: it.ID, Rating: round(it.MeanRating, 2), NumRatings: it.Support})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTopRated(w http.ResponseWriter, r *http.Request) {
	n, err := queryInt(r, "n", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	summaries, err := s.engine.TopRated(r.Context(), n)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movieStats(summaries))
}

func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	titles, err := s.engine.Titles(r.Context())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, titles)
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.engine.Browse(r.Context())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, movieStats(summaries))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	report, err := s.engine.Report(r.Context())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleUserRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "user id must be a positive integer")
		return
	}
	n, err := queryInt(r, "n", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.engine.RecommendForUser(r.Context(), userID, n)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if len(items) == 0 {
		writeError(w, http.StatusNotFound, msgNoRecommendations)
		return
	}
	out := make([]UserRecommendation, 0, len(items))
	for _, it := range items {
		out = append(out, UserRecommendation{Title: it.ID, PredictedScore: round(it.Score, 4), NumRatings: it.Support})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleHealth 只读取加载状态，不触发加载。
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	loaded, err := s.engine.Loader().Status()
	switch {
	case err != nil:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
	case !loaded:
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// writeEngineError 把领域错误翻译成 HTTP 状态码。
func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, domainMessage(err))
	case core.IsUnknownItem(err):
		writeError(w, http.StatusNotFound, msgNoRecommendations)
	case core.IsUnavailable(err):
		writeError(w, http.StatusServiceUnavailable, msgUnavailable)
	case errors.Is(err, context.Canceled):
		// 客户端已断开，状态码仅用于日志
		w.WriteHeader(499)
	default:
		s.log.Error().Err(err).Str("request_id", RequestID(r.Context())).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func domainMessage(err error) string {
	if de := core.GetDomainError(err); de != nil && de.Message != "" {
		return de.Message
	}
	return err.Error()
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	default:
		return field + " is out of range"
	}
}

func movieStats(summaries []stats.Summary) []MovieStat {
	out := make([]MovieStat, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, MovieStat{Title: s.Title, Rating: round(s.MeanRating, 2), NumRatings: s.RatingCount})
	}
	return out
}

// queryInt 读取可选的条数参数。省略时返回 def（0 表示由引擎取默认值）；
// 显式给出时必须在 [1, maxN] 内。
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 || v > maxN {
		return 0, errors.New(key + " must be an integer between 1 and 1000")
	}
	return v, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
