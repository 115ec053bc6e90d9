package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/duofinder/duofinder/internal/metrics"
	"github.com/duofinder/duofinder/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// *sql.DBがそのまま満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	HealthChecker     HealthChecker
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig

	// メトリクス
	MetricsGatherer prometheus.Gatherer

	// ドメインサービス
	MatchService      MatchServiceInterface
	SuggestionService SuggestionServiceInterface
	ChatService       ChatServiceInterface
	GameService       GameServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → Session → RateLimit(General) → CSRF
//
// /health と /metrics はミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))

	matchHandler := NewMatchHandler(deps.MatchService)
	suggestionHandler := NewSuggestionHandler(deps.SuggestionService)
	chatHandler := NewChatHandler(deps.ChatService)
	gameHandler := NewGameHandler(deps.GameService)

	// --- 認証不要のルート ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General) → CSRF
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// ゲームカタログ
		r.Get("/api/games", gameHandler.ListGames)

		// マッチ管理
		r.Route("/api/matches", func(r chi.Router) {
			r.Get("/", matchHandler.ListMatches)
			r.Get("/suggestions", suggestionHandler.GetSuggestions)

			// POST /api/matches/swipe - スワイプ（専用レート制限を追加）
			r.With(deps.RateLimiter.SwipeMiddleware()).Post("/swipe", matchHandler.Swipe)
		})

		// チャット
		r.Route("/api/chats/{matchID}", func(r chi.Router) {
			r.Get("/", chatHandler.ListMessages)
			r.Post("/", chatHandler.SendMessage)
		})
	})

	return r
}

// newHealthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			if err := checker.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
