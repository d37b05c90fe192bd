package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/benderchat/bender/internal/model"
	"github.com/benderchat/bender/internal/store"

	"github.com/jackc/pgx/v5/pgconn"
)

// execer is satisfied by *sql.Conn and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements store.Queries against whatever execer get returns: the
// lazily acquired request connection or an open transaction.
type queries struct {
	dialect dialect
	get     func(ctx context.Context) (execer, error)
}

const articleColumns = `id, user_id, title, subtitle, content, content_html, skin_id, publication_datetime, author, author_description, tags, updated_at`

func (q queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ex, err := q.get(ctx)
	if err != nil {
		return nil, err
	}
	return ex.ExecContext(ctx, q.dialect.rebind(query), args...)
}

func (q queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	ex, err := q.get(ctx)
	if err != nil {
		return nil, err
	}
	return ex.QueryContext(ctx, q.dialect.rebind(query), args...)
}

func (q queries) insert(ctx context.Context, query string, args ...any) (int64, error) {
	ex, err := q.get(ctx)
	if err != nil {
		return 0, err
	}
	var id int64
	err = ex.QueryRowContext(ctx, q.dialect.rebind(query+" RETURNING id"), args...).Scan(&id)
	return id, err
}

func (q queries) scanOne(ctx context.Context, query string, args []any, dest ...any) error {
	ex, err := q.get(ctx)
	if err != nil {
		return err
	}
	err = ex.QueryRowContext(ctx, q.dialect.rebind(query), args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (q queries) CreateUser(ctx context.Context, username, passwordHash string, isAdmin bool) (int64, error) {
	id, err := q.insert(ctx, `INSERT INTO users (username, password_hash, is_admin) VALUES (?, ?, ?)`,
		username, passwordHash, boolToInt(isAdmin))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, store.ErrDuplicateUsername
		}
		return 0, err
	}
	return id, nil
}

func (q queries) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	var isAdmin int64
	err := q.scanOne(ctx, `SELECT id, username, password_hash, is_admin FROM users WHERE username = ?`,
		[]any{username}, &u.ID, &u.Username, &u.PasswordHash, &isAdmin)
	if err != nil {
		return model.User{}, err
	}
	u.IsAdmin = isAdmin != 0
	return u, nil
}

func (q queries) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := q.query(ctx, `SELECT id, username, is_admin FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		var isAdmin int64
		if err := rows.Scan(&u.ID, &u.Username, &isAdmin); err != nil {
			return nil, err
		}
		u.IsAdmin = isAdmin != 0
		users = append(users, u)
	}
	return users, rows.Err()
}

func (q queries) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	rows, err := q.query(ctx, `SELECT id, username FROM users WHERE is_admin = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := []model.Admin{}
	for rows.Next() {
		var a model.Admin
		if err := rows.Scan(&a.ID, &a.Username); err != nil {
			return nil, err
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (q queries) SetUserAdmin(ctx context.Context, id int64, isAdmin bool) error {
	res, err := q.exec(ctx, `UPDATE users SET is_admin = ? WHERE id = ?`, boolToInt(isAdmin), id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func (q queries) DeleteUser(ctx context.Context, id int64) error {
	res, err := q.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func (q queries) ListSkins(ctx context.Context) ([]model.Skin, error) {
	rows, err := q.query(ctx, `SELECT id, name, template_path FROM skins ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	skins := []model.Skin{}
	for rows.Next() {
		var sk model.Skin
		var path sql.NullString
		if err := rows.Scan(&sk.ID, &sk.Name, &path); err != nil {
			return nil, err
		}
		sk.TemplatePath = nullableString(path)
		skins = append(skins, sk)
	}
	return skins, rows.Err()
}

func (q queries) CreateSkin(ctx context.Context, name, templatePath string) (int64, error) {
	return q.insert(ctx, `INSERT INTO skins (name, template_path) VALUES (?, ?)`, name, nullIfEmpty(templatePath))
}

func (q queries) ListArticles(ctx context.Context, userID *int64) ([]model.Article, error) {
	var rows *sql.Rows
	var err error
	if userID != nil {
		rows, err = q.query(ctx, `SELECT `+articleColumns+` FROM articles WHERE user_id = ? ORDER BY id`, *userID)
	} else {
		rows, err = q.query(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY id`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	articles := []model.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (q queries) GetArticle(ctx context.Context, id int64) (model.Article, error) {
	ex, err := q.get(ctx)
	if err != nil {
		return model.Article{}, err
	}
	row := ex.QueryRowContext(ctx, q.dialect.rebind(`SELECT `+articleColumns+` FROM articles WHERE id = ?`), id)
	return scanArticle(row)
}

func (q queries) CreateArticle(ctx context.Context, userID int64, f store.ArticleFields) (int64, error) {
	return q.insert(ctx, `
INSERT INTO articles (user_id, title, subtitle, content, content_html, skin_id, publication_datetime, author, author_description, tags)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, f.Title, f.Subtitle, f.Content, f.ContentHTML, f.SkinID, f.PublicationDatetime, f.Author, f.AuthorDescription, f.Tags)
}

func (q queries) UpdateArticle(ctx context.Context, id int64, f store.ArticleFields, updatedAt string) error {
	res, err := q.exec(ctx, `
UPDATE articles SET
	title = ?,
	subtitle = ?,
	content = ?,
	content_html = ?,
	skin_id = ?,
	publication_datetime = ?,
	author = ?,
	author_description = ?,
	tags = ?,
	updated_at = ?
WHERE id = ?`,
		f.Title, f.Subtitle, f.Content, f.ContentHTML, f.SkinID, f.PublicationDatetime, f.Author, f.AuthorDescription, f.Tags, updatedAt, id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func (q queries) DeleteArticle(ctx context.Context, id int64) error {
	res, err := q.exec(ctx, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

func (q queries) DeleteArticlesByUser(ctx context.Context, userID int64) (int64, error) {
	res, err := q.exec(ctx, `DELETE FROM articles WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanArticle(scanner interface{ Scan(dest ...any) error }) (model.Article, error) {
	var a model.Article
	var subtitle, contentHTML, author, authorDesc, tags sql.NullString
	var published, updated sql.NullString
	if err := scanner.Scan(&a.ID, &a.UserID, &a.Title, &subtitle, &a.Content, &contentHTML, &a.SkinID,
		&published, &author, &authorDesc, &tags, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Article{}, store.ErrNotFound
		}
		return model.Article{}, err
	}
	a.Subtitle = subtitle.String
	a.ContentHTML = contentHTML.String
	a.Author = author.String
	a.AuthorDescription = authorDesc.String
	a.Tags = tags.String
	a.PublicationDatetime = nullableString(published)
	a.UpdatedAt = nullableString(updated)
	return a, nil
}

func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
