package httpapp

import (
	"net/http"

	"github.com/benderchat/bender/internal/admin"
	"github.com/benderchat/bender/internal/auth"
	"github.com/benderchat/bender/internal/content"
	apperrors "github.com/benderchat/bender/internal/errors"
	"github.com/benderchat/bender/internal/payload"
	"github.com/benderchat/bender/internal/store"
)

// handleSignup godoc
//
//	@Summary		Create an account
//	@Description	Registers a new non-admin user. The password is stored as a salted hash.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		map[string]string	true	"username and password"
//	@Success		201		{object}	map[string]bool		"success"
//	@Failure		400		{object}	map[string]string	"Missing username or password"
//	@Failure		409		{object}	map[string]string	"Username already exists"
//	@Router			/api/signup [post]
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	creds, err := auth.ParseCredentials(decodeBody(r))
	if err != nil {
		return err
	}
	if _, err := s.auth.Signup(r.Context(), conn, creds); err != nil {
		return err
	}
	return success(w, r, http.StatusCreated)
}

// handleLogin godoc
//
//	@Summary		Check credentials
//	@Description	Verifies a username and password. No session or token is issued.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		map[string]string	true	"username and password"
//	@Success		200		{object}	map[string]interface{}	"success, user_id, is_admin"
//	@Failure		400		{object}	map[string]string		"Missing username or password"
//	@Failure		401		{object}	map[string]string		"Invalid credentials"
//	@Router			/api/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	creds, err := auth.ParseCredentials(decodeBody(r))
	if err != nil {
		return err
	}
	user, err := s.auth.Login(r.Context(), conn, creds)
	if err != nil {
		return err
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"success":  true,
		"user_id":  user.ID,
		"is_admin": user.IsAdmin,
	})
	return nil
}

// handleListSkins godoc
//
//	@Summary		List skins
//	@Tags			Skins
//	@Produce		json
//	@Success		200	{array}		model.Skin
//	@Failure		500	{object}	map[string]string
//	@Router			/api/skins [get]
func (s *Server) handleListSkins(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	skins, err := conn.ListSkins(r.Context())
	if err != nil {
		return apperrors.StorageError(err.Error(), err)
	}
	writeJSON(w, r, http.StatusOK, skins)
	return nil
}

// handleListArticles godoc
//
//	@Summary		List articles
//	@Description	All articles, or those of one user. Tags are returned in their stored form.
//	@Tags			Articles
//	@Produce		json
//	@Param			user_id	query		int	false	"Author filter"
//	@Success		200		{object}	map[string]interface{}	"articles"
//	@Router			/api/articles [get]
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	articles, err := s.content.List(r.Context(), conn, r.URL.Query().Get("user_id"))
	if err != nil {
		return err
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"articles": articles})
	return nil
}

// handleCreateArticle godoc
//
//	@Summary		Create an article
//	@Description	Requires user_id, title, content and skin_id. The markdown content is rendered to HTML on write.
//	@Tags			Articles
//	@Accept			json
//	@Produce		json
//	@Param			body	body		map[string]interface{}	true	"article fields"
//	@Success		201		{object}	map[string]bool			"success"
//	@Failure		400		{object}	map[string]string		"Missing required fields"
//	@Router			/api/articles [post]
func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	in, err := content.ParseInput(decodeBody(r), true)
	if err != nil {
		return err
	}
	if _, err := s.content.Create(r.Context(), conn, in); err != nil {
		return err
	}
	return success(w, r, http.StatusCreated)
}

// handleGetArticle godoc
//
//	@Summary		Get an article
//	@Description	Single article with tags decoded into a list
//	@Tags			Articles
//	@Produce		json
//	@Param			id	path		int	true	"Article ID"
//	@Success		200	{object}	model.ArticleDetail
//	@Failure		404	{object}	map[string]string	"Article not found"
//	@Router			/api/articles/{id} [get]
func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	article, err := s.content.Get(r.Context(), conn, id)
	if err != nil {
		return err
	}
	writeJSON(w, r, http.StatusOK, article)
	return nil
}

// handleEditArticle godoc
//
//	@Summary		Replace an article
//	@Description	Full overwrite of the editable fields. Requires title, content and skin_id.
//	@Tags			Articles
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Article ID"
//	@Param			body	body		map[string]interface{}	true	"article fields"
//	@Success		200		{object}	map[string]bool			"success"
//	@Failure		400		{object}	map[string]string		"Missing required fields"
//	@Failure		404		{object}	map[string]string		"Article not found"
//	@Router			/api/articles/{id} [put]
func (s *Server) handleEditArticle(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	in, err := content.ParseInput(decodeBody(r), false)
	if err != nil {
		return err
	}
	if err := s.content.Edit(r.Context(), conn, id, in); err != nil {
		return err
	}
	return success(w, r, http.StatusOK)
}

// handleDeleteArticle godoc
//
//	@Summary		Delete an article
//	@Tags			Articles
//	@Produce		json
//	@Param			id	path		int	true	"Article ID"
//	@Success		200	{object}	map[string]bool		"success"
//	@Failure		404	{object}	map[string]string	"Article not found"
//	@Failure		500	{object}	map[string]string	"Database error occurred"
//	@Router			/api/articles/{id} [delete]
func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	if err := s.content.Delete(r.Context(), conn, id); err != nil {
		return err
	}
	return success(w, r, http.StatusOK)
}

// handleAdminListUsers godoc
//
//	@Summary		List users
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{array}	model.User
//	@Router			/api/admin/users [get]
func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	users, err := s.admin.ListUsers(r.Context(), conn)
	if err != nil {
		return err
	}
	writeJSON(w, r, http.StatusOK, users)
	return nil
}

// handleAdminListArticles godoc
//
//	@Summary		List all articles
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{array}	model.Article
//	@Router			/api/admin/articles [get]
func (s *Server) handleAdminListArticles(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	articles, err := s.admin.ListArticles(r.Context(), conn)
	if err != nil {
		return err
	}
	writeJSON(w, r, http.StatusOK, articles)
	return nil
}

// handleAdminDeleteUser godoc
//
//	@Summary		Delete a user and their articles
//	@Description	X-User-ID identifies the caller and only guards against self-deletion; it is not verified.
//	@Tags			Admin
//	@Produce		json
//	@Param			id			path		int		true	"User ID"
//	@Param			X-User-ID	header		int		false	"Caller user ID"
//	@Success		200			{object}	map[string]bool		"success"
//	@Failure		403			{object}	map[string]string	"Cannot delete your own account while logged in"
//	@Failure		404			{object}	map[string]string	"User not found"
//	@Failure		500			{object}	map[string]string	"Database error occurred"
//	@Router			/api/admin/users/{id} [delete]
func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	requester, err := requesterID(r)
	if err != nil {
		return err
	}
	if err := s.admin.DeleteUser(r.Context(), conn, id, requester); err != nil {
		return err
	}
	return success(w, r, http.StatusOK)
}

// handleAdminUpdateUser godoc
//
//	@Summary		Set admin status
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"User ID"
//	@Param			body	body		map[string]bool		true	"is_admin"
//	@Success		200		{object}	map[string]bool		"success"
//	@Failure		400		{object}	map[string]string	"No data provided / Missing is_admin field"
//	@Failure		404		{object}	map[string]string	"User not found"
//	@Router			/api/admin/users/{id} [put]
func (s *Server) handleAdminUpdateUser(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	isAdmin, err := admin.ParseAdminFlag(decodeBody(r))
	if err != nil {
		return err
	}
	if err := s.admin.SetAdminStatus(r.Context(), conn, id, isAdmin); err != nil {
		return err
	}
	return success(w, r, http.StatusOK)
}

// handleAdminDeleteArticle godoc
//
//	@Summary		Delete any article
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		int	true	"Article ID"
//	@Success		200	{object}	map[string]bool		"success"
//	@Failure		404	{object}	map[string]string	"Article not found"
//	@Router			/api/admin/articles/{id} [delete]
func (s *Server) handleAdminDeleteArticle(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	if err := s.admin.DeleteArticle(r.Context(), conn, id); err != nil {
		return err
	}
	return success(w, r, http.StatusOK)
}

// handleListAdmins godoc
//
//	@Summary		List admins
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{array}	model.Admin
//	@Router			/api/admins [get]
func (s *Server) handleListAdmins(w http.ResponseWriter, r *http.Request, conn store.Conn) error {
	admins, err := s.admin.ListAdmins(r.Context(), conn)
	if err != nil {
		return err
	}
	writeJSON(w, r, http.StatusOK, admins)
	return nil
}

// decodeBody returns the request's JSON object. A missing or malformed body
// yields an empty object, which callers report with their own message.
func decodeBody(r *http.Request) payload.Object {
	obj, err := payload.Decode(r.Body)
	if err != nil {
		return payload.Object{}
	}
	return obj
}
