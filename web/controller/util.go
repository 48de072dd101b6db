package controller

import (
	"net"
	"net/http"
	"strings"

	"miniblog/config"
	"miniblog/database/model"
	"miniblog/logger"
	"miniblog/web/entity"
	"miniblog/web/session"

	"github.com/gin-gonic/gin"
)

const loginUserCtxKey = "login_user"

// getRemoteIp extracts the client IP from proxy headers or the remote
// address.
func getRemoteIp(c *gin.Context) string {
	value := c.GetHeader("X-Real-IP")
	if value != "" {
		return value
	}
	value = c.GetHeader("X-Forwarded-For")
	if value != "" {
		ips := strings.Split(value, ",")
		return ips[0]
	}
	addr := c.Request.RemoteAddr
	ip, _, _ := net.SplitHostPort(addr)
	return ip
}

// currentUser returns the user resolved by the CurrentUser middleware, or
// nil for anonymous requests.
func currentUser(c *gin.Context) *model.User {
	if obj, ok := c.Get(loginUserCtxKey); ok {
		if user, ok := obj.(*model.User); ok {
			return user
		}
	}
	return nil
}

// SetCurrentUser stores the resolved user row for the rest of the request.
func SetCurrentUser(c *gin.Context, user *model.User) {
	c.Set(loginUserCtxKey, user)
}

// I18nWeb resolves a localized message through the function installed by
// the locale middleware.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	anyfunc, funcExists := c.Get("I18n")
	if !funcExists {
		logger.Warning("I18n function not in gin context")
		return name
	}
	i18nFunc, ok := anyfunc.(func(key string, params ...string) string)
	if !ok {
		return name
	}
	return i18nFunc(name, params...)
}

// html renders a template with the shared context: current user (possibly
// nil), drained flash messages, and app version.
func html(c *gin.Context, name string, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["title"] = I18nWeb(c, title)
	data["user"] = currentUser(c)
	data["flashes"] = session.Flashes(c)
	data["cur_ver"] = config.GetVersion()
	c.HTML(http.StatusOK, name, data)
}

// flashRedirect queues a localized flash message and redirects.
func flashRedirect(c *gin.Context, category, key, location string) {
	if err := session.AddFlash(c, category, I18nWeb(c, key)); err != nil {
		logger.Warning("unable to save flash:", err)
	}
	c.Redirect(http.StatusFound, location)
}

// flashError queues an error flash without redirecting, for handlers that
// re-render the current form instead.
func flashError(c *gin.Context, key string) {
	if err := session.AddFlash(c, entity.FlashError, I18nWeb(c, key)); err != nil {
		logger.Warning("unable to save flash:", err)
	}
}
