package articles_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/magabrotheeeer/contrarian-report/internal/lib/content"
	"github.com/magabrotheeeer/contrarian-report/internal/models"
	"github.com/magabrotheeeer/contrarian-report/internal/services"
	"github.com/magabrotheeeer/contrarian-report/internal/services/articles"
	"github.com/magabrotheeeer/contrarian-report/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetSubscriptionByUser(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) CreateArticle(ctx context.Context, writerUID string, in models.ArticleInput) (int64, error) {
	args := m.Called(ctx, writerUID, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RepoMock) UpdateArticle(ctx context.Context, id int64, writerUID string, in models.ArticleInput) error {
	return m.Called(ctx, id, writerUID, in).Error(0)
}

func (m *RepoMock) DeleteArticle(ctx context.Context, id int64, writerUID string) error {
	return m.Called(ctx, id, writerUID).Error(0)
}

func (m *RepoMock) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Article), args.Error(1)
}

func (m *RepoMock) ListArticles(ctx context.Context, includePremium bool) ([]*models.Article, error) {
	args := m.Called(ctx, includePremium)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}

func (m *RepoMock) ListArticlesByWriter(ctx context.Context, writerUID string) ([]*models.Article, error) {
	args := m.Called(ctx, writerUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Article), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(repo *RepoMock) *articles.Service {
	return articles.NewArticleService(newNoopLogger(), repo, content.NewRenderer())
}

var (
	premiumSub  = &models.Subscription{ID: 1, Tier: models.TierPremium, IsActive: true}
	standardSub = &models.Subscription{ID: 2, Tier: models.TierStandard, IsActive: true}
	lapsedSub   = &models.Subscription{ID: 3, Tier: models.TierPremium, IsActive: false}
)

func TestService_Browse(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		sub            *models.Subscription
		subErr         error
		includePremium bool
		wantHas        bool
		wantPlan       string
	}{
		{name: "premium sees everything", sub: premiumSub, includePremium: true, wantHas: true, wantPlan: "premium"},
		{name: "standard sees standard only", sub: standardSub, includePremium: false, wantHas: true, wantPlan: "standard"},
		{name: "no subscription", subErr: storage.ErrNotFound, wantPlan: "none"},
		{name: "inactive subscription", sub: lapsedSub, wantPlan: "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetSubscriptionByUser", ctx, "uid-1").Return(tt.sub, tt.subErr)
			if tt.wantHas {
				repo.On("ListArticles", ctx, tt.includePremium).Return([]*models.Article{
					{ID: 1, Title: "On dissent", Content: "# Heading\n\nSome **bold** claim."},
				}, nil)
			}

			feed, err := newService(repo).Browse(ctx, "uid-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantHas, feed.HasSubscription)
			assert.Equal(t, tt.wantPlan, feed.SubscriptionPlan)
			if tt.wantHas {
				require.Len(t, feed.Articles, 1)
				assert.Equal(t, "Heading Some bold claim.", feed.Articles[0].Excerpt)
				assert.Empty(t, feed.Articles[0].Content)
			} else {
				assert.Empty(t, feed.Articles)
				repo.AssertNotCalled(t, "ListArticles", mock.Anything, mock.Anything)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Read(t *testing.T) {
	ctx := context.Background()
	premiumArticle := func() *models.Article {
		return &models.Article{ID: 5, Title: "Premium take", Content: "text <script>alert(1)</script>", IsPremium: true}
	}

	t.Run("premium subscriber reads premium article", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetSubscriptionByUser", ctx, "uid-1").Return(premiumSub, nil)
		repo.On("GetArticle", ctx, int64(5)).Return(premiumArticle(), nil)

		a, err := newService(repo).Read(ctx, "uid-1", 5)
		require.NoError(t, err)
		assert.Contains(t, a.HTML, "text")
		assert.NotContains(t, a.HTML, "<script>")
	})

	t.Run("standard subscriber is refused", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetSubscriptionByUser", ctx, "uid-1").Return(standardSub, nil)
		repo.On("GetArticle", ctx, int64(5)).Return(premiumArticle(), nil)

		_, err := newService(repo).Read(ctx, "uid-1", 5)
		assert.ErrorIs(t, err, services.ErrPremiumRequired)
	})

	t.Run("no subscription", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetSubscriptionByUser", ctx, "uid-1").Return(nil, storage.ErrNotFound)

		_, err := newService(repo).Read(ctx, "uid-1", 5)
		assert.ErrorIs(t, err, services.ErrNoSubscription)
		repo.AssertNotCalled(t, "GetArticle", mock.Anything, mock.Anything)
	})

	t.Run("missing article", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetSubscriptionByUser", ctx, "uid-1").Return(standardSub, nil)
		repo.On("GetArticle", ctx, int64(404)).Return(nil, storage.ErrNotFound)

		_, err := newService(repo).Read(ctx, "uid-1", 404)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestService_WriterOperations(t *testing.T) {
	ctx := context.Background()
	in := models.ArticleInput{Title: "Against the grain", Content: "Body *text*", IsPremium: true}

	t.Run("create renders html", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("CreateArticle", ctx, "writer-1", in).Return(int64(9), nil)
		repo.On("GetArticle", ctx, int64(9)).Return(&models.Article{ID: 9, WriterUID: "writer-1",
			Title: in.Title, Content: in.Content, IsPremium: true}, nil)

		a, err := newService(repo).Create(ctx, "writer-1", in)
		require.NoError(t, err)
		assert.Equal(t, "<p>Body <em>text</em></p>\n", a.HTML)
	})

	t.Run("update foreign article", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("UpdateArticle", ctx, int64(9), "writer-2", in).Return(storage.ErrNotFound)

		_, err := newService(repo).Update(ctx, "writer-2", 9, in)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("get foreign article", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetArticle", ctx, int64(9)).Return(&models.Article{ID: 9, WriterUID: "writer-1"}, nil)

		_, err := newService(repo).Get(ctx, "writer-2", 9)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("DeleteArticle", ctx, int64(9), "writer-1").Return(nil)

		require.NoError(t, newService(repo).Delete(ctx, "writer-1", 9))
		repo.AssertExpectations(t)
	})

	t.Run("list own", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListArticlesByWriter", ctx, "writer-1").Return([]*models.Article{
			{ID: 1, Content: "plain words"},
		}, nil)

		list, err := newService(repo).ListOwn(ctx, "writer-1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "plain words", list[0].Excerpt)
	})
}
