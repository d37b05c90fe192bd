// Package admin implements the privileged user and article operations.
package admin

import (
	"context"
	"errors"

	"github.com/benderchat/bender/internal/content"
	apperrors "github.com/benderchat/bender/internal/errors"
	"github.com/benderchat/bender/internal/model"
	"github.com/benderchat/bender/internal/payload"
	"github.com/benderchat/bender/internal/store"
)

const (
	msgSelfDelete     = "Cannot delete your own account while logged in"
	msgUserNotFound   = "User not found"
	msgDatabaseError  = "Database error occurred"
	msgNoData         = "No data provided"
	msgMissingIsAdmin = "Missing is_admin field"
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

func (s *Service) ListUsers(ctx context.Context, q store.UserStore) ([]model.User, error) {
	users, err := q.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.StorageError(err.Error(), err)
	}
	return users, nil
}

func (s *Service) ListArticles(ctx context.Context, q store.ArticleStore) ([]model.Article, error) {
	articles, err := q.ListArticles(ctx, nil)
	if err != nil {
		return nil, apperrors.StorageError(err.Error(), err)
	}
	return articles, nil
}

func (s *Service) ListAdmins(ctx context.Context, q store.UserStore) ([]model.Admin, error) {
	admins, err := q.ListAdmins(ctx)
	if err != nil {
		return nil, apperrors.StorageError(err.Error(), err)
	}
	return admins, nil
}

// DeleteUser removes target and all of its articles in one transaction.
// requester is the caller's self-reported id; it is compared only to refuse
// self-deletion and carries no authentication.
func (s *Service) DeleteUser(ctx context.Context, conn store.Conn, target int64, requester *int64) error {
	if requester != nil && *requester == target {
		return apperrors.ForbiddenError(msgSelfDelete).WithField("user_id", target)
	}
	var removed int64
	err := conn.InTx(ctx, func(q store.Queries) error {
		n, err := q.DeleteArticlesByUser(ctx, target)
		if err != nil {
			return err
		}
		removed = n
		return q.DeleteUser(ctx, target)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFoundError(msgUserNotFound).WithField("user_id", target)
	}
	return apperrors.StorageError(msgDatabaseError, err).WithField("user_id", target).WithField("articles", removed)
}

// ParseAdminFlag reads is_admin from an update body using JSON truthiness.
func ParseAdminFlag(obj payload.Object) (bool, error) {
	if len(obj) == 0 {
		return false, apperrors.ValidationError(msgNoData)
	}
	if !obj.Present("is_admin") {
		return false, apperrors.ValidationError(msgMissingIsAdmin)
	}
	return payload.Truthy(obj.Raw("is_admin")), nil
}

func (s *Service) SetAdminStatus(ctx context.Context, conn store.Conn, target int64, isAdmin bool) error {
	err := conn.InTx(ctx, func(q store.Queries) error {
		return q.SetUserAdmin(ctx, target, isAdmin)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperrors.NotFoundError(msgUserNotFound).WithField("user_id", target)
	}
	return apperrors.StorageError(msgDatabaseError, err)
}

func (s *Service) DeleteArticle(ctx context.Context, conn store.Conn, id int64) error {
	return content.DeleteArticle(ctx, conn, id)
}
