package store

import (
	"context"
	"errors"

	"github.com/benderchat/bender/internal/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateUsername = errors.New("duplicate username")
)

// ArticleFields is the writable part of an article row. Tags is already
// serialized and ContentHTML already rendered.
type ArticleFields struct {
	Title               string
	Subtitle            string
	Content             string
	ContentHTML         string
	SkinID              int64
	PublicationDatetime *string
	Author              string
	AuthorDescription   string
	Tags                string
}

// Queries is the statement surface shared by a request connection and the
// transactions opened on it.
type Queries interface {
	UserStore
	SkinStore
	ArticleStore
}

type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string, isAdmin bool) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListAdmins(ctx context.Context) ([]model.Admin, error)
	SetUserAdmin(ctx context.Context, id int64, isAdmin bool) error
	DeleteUser(ctx context.Context, id int64) error
}

type SkinStore interface {
	ListSkins(ctx context.Context) ([]model.Skin, error)
	CreateSkin(ctx context.Context, name, templatePath string) (int64, error)
}

type ArticleStore interface {
	// ListArticles filters on user_id when userID is non-nil.
	ListArticles(ctx context.Context, userID *int64) ([]model.Article, error)
	GetArticle(ctx context.Context, id int64) (model.Article, error)
	CreateArticle(ctx context.Context, userID int64, f ArticleFields) (int64, error)
	UpdateArticle(ctx context.Context, id int64, f ArticleFields, updatedAt string) error
	DeleteArticle(ctx context.Context, id int64) error
	DeleteArticlesByUser(ctx context.Context, userID int64) (int64, error)
}

// Conn is a request-scoped handle on the data store. It holds at most one
// pooled connection, acquired on first use and returned by Close.
type Conn interface {
	Queries
	InTx(ctx context.Context, fn func(q Queries) error) error
	Close() error
}
