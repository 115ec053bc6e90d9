// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層から利用する。
type MetricsCollector interface {
	RecordSwipe(outcome string)
	RecordMutualMatch()
	RecordChatBootstrap()
	RecordSwipeConflictRetry()
	RecordSuggestionLatency(duration time.Duration)
}

// スワイプ結果のラベル値。
const (
	SwipeOutcomeLiked  = "liked"
	SwipeOutcomePassed = "passed"
	SwipeOutcomeError  = "error"
)

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	swipes            *prometheus.CounterVec
	mutualMatches     prometheus.Counter
	chatBootstraps    prometheus.Counter
	conflictRetries   prometheus.Counter
	suggestionLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		swipes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "duofinder_swipes_total",
			Help: "処理されたスワイプの合計数（結果別）",
		}, []string{"outcome"}),
		mutualMatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duofinder_mutual_matches_total",
			Help: "成立した相互マッチの合計数",
		}),
		chatBootstraps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duofinder_chat_bootstrap_total",
			Help: "作成されたチャット初期メッセージの合計数",
		}),
		conflictRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "duofinder_swipe_conflict_retries_total",
			Help: "スワイプ処理における競合リトライの合計数",
		}),
		suggestionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "duofinder_suggestion_latency_seconds",
			Help:    "候補提案処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.swipes,
		c.mutualMatches,
		c.chatBootstraps,
		c.conflictRetries,
		c.suggestionLatency,
	)

	return c
}

// RecordSwipe はスワイプ処理の結果を記録する。
func (c *Collector) RecordSwipe(outcome string) {
	c.swipes.WithLabelValues(outcome).Inc()
}

// RecordMutualMatch は相互マッチの成立を記録する。
func (c *Collector) RecordMutualMatch() {
	c.mutualMatches.Inc()
}

// RecordChatBootstrap はチャット初期メッセージの作成を記録する。
func (c *Collector) RecordChatBootstrap() {
	c.chatBootstraps.Inc()
}

// RecordSwipeConflictRetry は競合によるリトライを記録する。
func (c *Collector) RecordSwipeConflictRetry() {
	c.conflictRetries.Inc()
}

// RecordSuggestionLatency は候補提案処理のレイテンシを記録する。
func (c *Collector) RecordSuggestionLatency(duration time.Duration) {
	c.suggestionLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
// ルーター側で/metricsにマウントして使う。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
