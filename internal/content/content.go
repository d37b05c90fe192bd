// Package content implements article CRUD: field parsing, markdown
// rendering at write time and tag serialization.
package content

import (
	"context"
	"errors"
	"strconv"
	"strings"

	apperrors "github.com/benderchat/bender/internal/errors"
	"github.com/benderchat/bender/internal/model"
	"github.com/benderchat/bender/internal/payload"
	"github.com/benderchat/bender/internal/store"

	"github.com/jonboulle/clockwork"
)

const (
	msgMissingFields   = "Missing required fields"
	msgArticleNotFound = "Article not found"
	msgDatabaseError   = "Database error occurred"

	timestampLayout = "2006-01-02 15:04:05"
)

type Service struct {
	clock clockwork.Clock
}

func NewService(clock clockwork.Clock) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{clock: clock}
}

// Input is a validated article write. UserID is only used on create.
type Input struct {
	UserID              int64
	Title               string
	Subtitle            string
	Content             string
	SkinID              int64
	PublicationDatetime *string
	Author              string
	AuthorDescription   string
	Tags                string
}

// ParseInput validates a create (withUser) or edit body. Required fields must
// be present and non-null; optional text fields default to empty, a falsy
// publication_datetime becomes NULL and tags are serialized.
// Required fields of the wrong JSON type (a numeric title, say) are rejected
// rather than stored as their literal text.
func ParseInput(obj payload.Object, withUser bool) (Input, error) {
	required := []string{"title", "content", "skin_id"}
	if withUser {
		required = append([]string{"user_id"}, required...)
	}
	for _, key := range required {
		if !obj.Present(key) {
			return Input{}, apperrors.ValidationError(msgMissingFields).WithField("field", key)
		}
	}

	var in Input
	var err error
	if withUser {
		if in.UserID, err = obj.Int("user_id"); err != nil {
			return Input{}, invalid("user_id")
		}
	}
	if in.Title, err = obj.String("title"); err != nil {
		return Input{}, invalid("title")
	}
	if in.Content, err = obj.String("content"); err != nil {
		return Input{}, invalid("content")
	}
	if in.SkinID, err = obj.Int("skin_id"); err != nil {
		return Input{}, invalid("skin_id")
	}
	in.Subtitle, _ = obj.Text("subtitle")
	in.Author, _ = obj.Text("author")
	in.AuthorDescription, _ = obj.Text("author_description")
	if published, ok := obj.Text("publication_datetime"); ok {
		in.PublicationDatetime = &published
	}
	in.Tags = SerializeTags(obj.Raw("tags"))
	return in, nil
}

func invalid(field string) error {
	return apperrors.ValidationError("Invalid value for " + field).WithField("field", field)
}

func (in Input) fields() store.ArticleFields {
	return store.ArticleFields{
		Title:               in.Title,
		Subtitle:            in.Subtitle,
		Content:             in.Content,
		ContentHTML:         RenderMarkdown(in.Content),
		SkinID:              in.SkinID,
		PublicationDatetime: in.PublicationDatetime,
		Author:              in.Author,
		AuthorDescription:   in.AuthorDescription,
		Tags:                in.Tags,
	}
}

// List returns every article, or those of one user when userID is set. A
// userID that is not an integer matches nothing.
func (s *Service) List(ctx context.Context, q store.ArticleStore, userID string) ([]model.Article, error) {
	var filter *int64
	if userID != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(userID), 10, 64)
		if err != nil {
			return []model.Article{}, nil
		}
		filter = &id
	}
	articles, err := q.ListArticles(ctx, filter)
	if err != nil {
		return nil, apperrors.StorageError(err.Error(), err)
	}
	return articles, nil
}

func (s *Service) Get(ctx context.Context, q store.ArticleStore, id int64) (model.ArticleDetail, error) {
	a, err := q.GetArticle(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.ArticleDetail{}, apperrors.NotFoundError(msgArticleNotFound).WithField("article_id", id)
		}
		return model.ArticleDetail{}, apperrors.StorageError(err.Error(), err)
	}
	return model.ArticleDetail{Article: a, Tags: DecodeTags(a.Tags)}, nil
}

func (s *Service) Create(ctx context.Context, q store.ArticleStore, in Input) (int64, error) {
	id, err := q.CreateArticle(ctx, in.UserID, in.fields())
	if err != nil {
		return 0, apperrors.StorageError(msgDatabaseError, err)
	}
	return id, nil
}

// Edit overwrites every editable field of article id and stamps updated_at.
func (s *Service) Edit(ctx context.Context, q store.ArticleStore, id int64, in Input) error {
	updatedAt := s.clock.Now().UTC().Format(timestampLayout)
	if err := q.UpdateArticle(ctx, id, in.fields(), updatedAt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFoundError(msgArticleNotFound).WithField("article_id", id)
		}
		return apperrors.StorageError(msgDatabaseError, err)
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, conn store.Conn, id int64) error {
	return DeleteArticle(ctx, conn, id)
}

// DeleteArticle removes one article in its own transaction. It backs both the
// author and the admin delete endpoints.
func DeleteArticle(ctx context.Context, conn store.Conn, id int64) error {
	err := conn.InTx(ctx, func(q store.Queries) error {
		return q.DeleteArticle(ctx, id)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFoundError(msgArticleNotFound).WithField("article_id", id)
	}
	return apperrors.StorageError(msgDatabaseError, err)
}
