package model

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"is_admin"`
}

// Admin is the reduced user view returned by the admins listing.
type Admin struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Skin struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	TemplatePath *string `json:"template_path"`
}

// Article mirrors a stored row. Tags holds the serialized form exactly as
// written by the content service.
type Article struct {
	ID                  int64   `json:"id"`
	UserID              int64   `json:"user_id"`
	Title               string  `json:"title"`
	Subtitle            string  `json:"subtitle"`
	Content             string  `json:"content"`
	ContentHTML         string  `json:"content_html"`
	SkinID              int64   `json:"skin_id"`
	PublicationDatetime *string `json:"publication_datetime"`
	Author              string  `json:"author"`
	AuthorDescription   string  `json:"author_description"`
	Tags                string  `json:"tags"`
	UpdatedAt           *string `json:"updated_at"`
}

// ArticleDetail is the single-article view with tags decoded into a list.
type ArticleDetail struct {
	Article
	Tags []any `json:"tags"`
}
