// Package controller provides the HTTP handlers for the blog: article
// browsing and authoring, account sign-up and login, and the static pages.
package controller

import (
	"net/http"

	"miniblog/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides the authentication gate shared by all
// controllers with protected routes.
type BaseController struct{}

// checkLogin redirects anonymous requests to the login page and aborts the
// chain. Authenticated requests pass through.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		c.Redirect(http.StatusTemporaryRedirect, "/login")
		c.Abort()
		return
	}
	c.Next()
}
