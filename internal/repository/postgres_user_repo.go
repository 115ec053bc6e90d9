package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/duofinder/duofinder/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーをプライマリ画像付きで取得する。
// 見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user := &model.User{}
	var imageURL sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT u.id, u.username, u.bio, u.birth_date, u.server, u.is_active, ui.image_url
		 FROM users u
		 LEFT JOIN user_images ui ON ui.user_id = u.id AND ui.is_primary
		 WHERE u.id = $1`,
		id,
	).Scan(&user.ID, &user.Username, &user.Bio, &user.BirthDate, &user.Server, &user.IsActive, &imageURL)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}

	if imageURL.Valid {
		user.ImageURL = &imageURL.String
	}

	return user, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
