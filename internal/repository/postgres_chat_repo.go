package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/duofinder/duofinder/internal/model"
)

// PostgresChatRepo はPostgreSQLを使用したチャットメッセージリポジトリ。
type PostgresChatRepo struct {
	db *sql.DB
}

// NewPostgresChatRepo はPostgresChatRepoを生成する。
func NewPostgresChatRepo(db *sql.DB) *PostgresChatRepo {
	return &PostgresChatRepo{db: db}
}

// EnsureBootstrap はマッチのブートストラップメッセージを冪等に作成し、IDを返す。
// 「is_bootstrapのマッチごと1件」の部分一意インデックスに対する
// ON CONFLICT DO NOTHINGと再読み取りで、並行挿入でも1件に収束する。
func (r *PostgresChatRepo) EnsureBootstrap(ctx context.Context, tx *sql.Tx, matchID, senderID int64) (int64, error) {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO chat_messages (match_id, sender_id, content, is_bootstrap, created_at)
		 VALUES ($1, $2, $3, TRUE, $4)
		 ON CONFLICT (match_id) WHERE is_bootstrap DO NOTHING`,
		matchID, senderID, model.BootstrapMessageContent, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("ブートストラップメッセージの作成に失敗しました: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM chat_messages WHERE match_id = $1 AND is_bootstrap`,
		matchID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ブートストラップメッセージIDの取得に失敗しました: %w", err)
	}

	return id, nil
}

// FindBootstrapID はマッチのブートストラップメッセージIDを返す。
// 存在しない場合は0とnilエラーを返す。
func (r *PostgresChatRepo) FindBootstrapID(ctx context.Context, matchID int64) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id FROM chat_messages WHERE match_id = $1 AND is_bootstrap`,
		matchID,
	).Scan(&id)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ブートストラップメッセージの検索に失敗しました: %w", err)
	}

	return id, nil
}

// Create は通常のチャットメッセージを作成し、IDとcreated_atを埋める。
func (r *PostgresChatRepo) Create(ctx context.Context, msg *model.ChatMessage) error {
	msg.CreatedAt = time.Now().UTC()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO chat_messages (match_id, sender_id, content, is_bootstrap, is_read, created_at)
		 VALUES ($1, $2, $3, FALSE, FALSE, $4)
		 RETURNING id`,
		msg.MatchID, msg.SenderID, msg.Content, msg.CreatedAt,
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("チャットメッセージの作成に失敗しました: %w", err)
	}

	return nil
}

// ListByMatch はマッチのメッセージをcreated_at昇順で返す。
func (r *PostgresChatRepo) ListByMatch(ctx context.Context, matchID int64, limit, offset int) ([]*model.ChatMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, match_id, sender_id, content, is_bootstrap, is_read, created_at
		 FROM chat_messages
		 WHERE match_id = $1
		 ORDER BY created_at ASC, id ASC
		 LIMIT $2 OFFSET $3`,
		matchID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("チャットメッセージ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	messages := []*model.ChatMessage{}
	for rows.Next() {
		msg := &model.ChatMessage{}
		if err := rows.Scan(
			&msg.ID, &msg.MatchID, &msg.SenderID,
			&msg.Content, &msg.IsBootstrap, &msg.IsRead, &msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("チャットメッセージ行の読み取りに失敗しました: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("チャットメッセージ一覧の走査に失敗しました: %w", err)
	}

	return messages, nil
}

// compile-time interface check
var _ ChatRepository = (*PostgresChatRepo)(nil)
