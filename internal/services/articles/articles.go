// Package articles отвечает за выдачу статей читателям с учетом уровня
// подписки и за редактирование статей авторами.
package articles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/contrarian-report/internal/models"
	"github.com/magabrotheeeer/contrarian-report/internal/services"
	"github.com/magabrotheeeer/contrarian-report/internal/storage"
)

const excerptLength = 280

// Repository определяет методы хранилища для статей.
type Repository interface {
	GetSubscriptionByUser(ctx context.Context, userUID string) (*models.Subscription, error)
	CreateArticle(ctx context.Context, writerUID string, in models.ArticleInput) (int64, error)
	UpdateArticle(ctx context.Context, id int64, writerUID string, in models.ArticleInput) error
	DeleteArticle(ctx context.Context, id int64, writerUID string) error
	GetArticle(ctx context.Context, id int64) (*models.Article, error)
	ListArticles(ctx context.Context, includePremium bool) ([]*models.Article, error)
	ListArticlesByWriter(ctx context.Context, writerUID string) ([]*models.Article, error)
}

// Renderer превращает markdown в HTML.
type Renderer interface {
	Render(markdown string) (string, error)
	Excerpt(markdown string, limit int) string
}

// Service реализует работу со статьями.
type Service struct {
	repo     Repository
	renderer Renderer
	log      *slog.Logger
}

// NewArticleService создает новый экземпляр Service.
func NewArticleService(log *slog.Logger, repo Repository, renderer Renderer) *Service {
	return &Service{
		repo:     repo,
		renderer: renderer,
		log:      log,
	}
}

// Browse возвращает ленту статей, доступных читателю. Без активной подписки
// лента пуста, стандартная подписка скрывает премиальные статьи.
func (s *Service) Browse(ctx context.Context, userUID string) (*models.ArticleFeed, error) {
	const op = "articles.Browse"

	sub, err := s.activeSubscription(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	feed := &models.ArticleFeed{
		SubscriptionPlan: "none",
		Articles:         []*models.Article{},
	}
	if sub == nil {
		return feed, nil
	}

	feed.HasSubscription = true
	feed.SubscriptionPlan = string(sub.Tier)
	list, err := s.repo.ListArticles(ctx, sub.IsPremium())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, a := range list {
		a.Excerpt = s.renderer.Excerpt(a.Content, excerptLength)
		a.Content = ""
	}
	feed.Articles = list
	return feed, nil
}

// Read возвращает статью с готовым HTML. Статья доступна только при активной
// подписке, премиальная только при премиальной.
func (s *Service) Read(ctx context.Context, userUID string, id int64) (*models.Article, error) {
	const op = "articles.Read"

	sub, err := s.activeSubscription(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub == nil {
		return nil, fmt.Errorf("%s: %w", op, services.ErrNoSubscription)
	}
	article, err := s.repo.GetArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if article.IsPremium && !sub.IsPremium() {
		return nil, fmt.Errorf("%s: %w", op, services.ErrPremiumRequired)
	}
	if err := s.render(article); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return article, nil
}

// Create публикует статью автора.
func (s *Service) Create(ctx context.Context, writerUID string, in models.ArticleInput) (*models.Article, error) {
	const op = "articles.Create"

	id, err := s.repo.CreateArticle(ctx, writerUID, in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("article created", slog.Int64("id", id), slog.Bool("premium", in.IsPremium))
	return s.Get(ctx, writerUID, id)
}

// Update изменяет статью. Чужая статья дает storage.ErrNotFound.
func (s *Service) Update(ctx context.Context, writerUID string, id int64, in models.ArticleInput) (*models.Article, error) {
	const op = "articles.Update"

	if err := s.repo.UpdateArticle(ctx, id, writerUID, in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.Get(ctx, writerUID, id)
}

// Delete удаляет статью автора.
func (s *Service) Delete(ctx context.Context, writerUID string, id int64) error {
	const op = "articles.Delete"

	if err := s.repo.DeleteArticle(ctx, id, writerUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("article deleted", slog.Int64("id", id))
	return nil
}

// Get возвращает статью автора с HTML.
func (s *Service) Get(ctx context.Context, writerUID string, id int64) (*models.Article, error) {
	const op = "articles.Get"

	article, err := s.repo.GetArticle(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if article.WriterUID != writerUID {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if err := s.render(article); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return article, nil
}

// ListOwn возвращает статьи автора.
func (s *Service) ListOwn(ctx context.Context, writerUID string) ([]*models.Article, error) {
	const op = "articles.ListOwn"

	list, err := s.repo.ListArticlesByWriter(ctx, writerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, a := range list {
		a.Excerpt = s.renderer.Excerpt(a.Content, excerptLength)
	}
	return list, nil
}

func (s *Service) render(a *models.Article) error {
	html, err := s.renderer.Render(a.Content)
	if err != nil {
		return err
	}
	a.HTML = html
	return nil
}

func (s *Service) activeSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscriptionByUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !sub.IsActive {
		return nil, nil
	}
	return sub, nil
}
