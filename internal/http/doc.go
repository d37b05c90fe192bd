// Package httpapp provides the HTTP server for Bender.
//
//	@title						Bender API
//	@version					1.0
//	@description				JSON backend for a small blogging platform: accounts, skins, markdown articles and an admin surface.
//	@description
//	@description				## Identity
//	@description
//	@description				Login only checks credentials and returns the user's id and admin flag. No session or token is issued.
//	@description				Clients send their own id in the `X-User-ID` header when deleting users, so the server can refuse self-deletion.
//	@description				```bash
//	@description				curl -X DELETE /api/admin/users/7 -H "X-User-ID: 1"
//	@description				```
//	@description
//	@description				## Articles
//	@description				Markdown `content` is rendered to `content_html` on every write.
//	@description				`tags` may be sent as a list and is returned decoded by `GET /api/articles/{id}`.
//
//	@contact.name				Bender
//	@license.name				MIT
//
//	@host						localhost:5000
//	@BasePath					/
//
//	@tag.name					Auth
//	@tag.description			Account creation and credential checks.
//
//	@tag.name					Skins
//	@tag.description			Presentation templates an article can reference.
//
//	@tag.name					Articles
//	@tag.description			Create, read, replace and delete markdown articles.
//
//	@tag.name					Admin
//	@tag.description			User and article moderation. Not access controlled.
package httpapp
