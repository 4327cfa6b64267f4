package storage

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
)

const articleSelect = `SELECT a.id, a.writer_uid,
		COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.username),
		a.title, a.content, a.is_premium, a.date_posted, a.updated_at
	FROM articles a
	JOIN users u ON u.uid = a.writer_uid`

func scanArticle(row rowScanner) (*models.Article, error) {
	a := &models.Article{}
	if err := row.Scan(&a.ID, &a.WriterUID, &a.WriterName, &a.Title, &a.Content,
		&a.IsPremium, &a.DatePosted, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateArticle сохраняет статью автора и возвращает ее ID.
func (s *Storage) CreateArticle(ctx context.Context, writerUID string, in models.ArticleInput) (int64, error) {
	const op = "storage.CreateArticle"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var id int64
	if err := s.DB.QueryRowContext(ctx, `INSERT INTO articles (writer_uid, title, content, is_premium)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		writerUID, in.Title, in.Content, in.IsPremium).Scan(&id); err != nil {
		return 0, wrap(op, err)
	}
	return id, nil
}

// UpdateArticle обновляет статью, только если она принадлежит writerUID.
func (s *Storage) UpdateArticle(ctx context.Context, id int64, writerUID string, in models.ArticleInput) error {
	const op = "storage.UpdateArticle"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `UPDATE articles
		SET title = $1, content = $2, is_premium = $3, updated_at = now()
		WHERE id = $4 AND writer_uid = $5`,
		in.Title, in.Content, in.IsPremium, id, writerUID)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}

// DeleteArticle удаляет статью, только если она принадлежит writerUID.
func (s *Storage) DeleteArticle(ctx context.Context, id int64, writerUID string) error {
	const op = "storage.DeleteArticle"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM articles WHERE id = $1 AND writer_uid = $2`, id, writerUID)
	if err != nil {
		return wrap(op, err)
	}
	return affected(op, res)
}

// GetArticle возвращает статью по ID.
func (s *Storage) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	const op = "storage.GetArticle"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	a, err := scanArticle(s.DB.QueryRowContext(ctx, articleSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, wrap(op, err)
	}
	return a, nil
}

// ListArticles возвращает статьи от новых к старым. Премиальные статьи попадают
// в выборку только при includePremium.
func (s *Storage) ListArticles(ctx context.Context, includePremium bool) ([]*models.Article, error) {
	const op = "storage.ListArticles"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return s.listArticles(ctx, op, articleSelect+` WHERE ($1 OR NOT a.is_premium)
		ORDER BY a.date_posted DESC, a.id DESC`, includePremium)
}

// ListArticlesByWriter возвращает статьи автора от новых к старым.
func (s *Storage) ListArticlesByWriter(ctx context.Context, writerUID string) ([]*models.Article, error) {
	const op = "storage.ListArticlesByWriter"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return s.listArticles(ctx, op, articleSelect+` WHERE a.writer_uid = $1
		ORDER BY a.date_posted DESC, a.id DESC`, writerUID)
}

func (s *Storage) listArticles(ctx context.Context, op, query string, args ...any) ([]*models.Article, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	result := make([]*models.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
