package middleware

import (
	"miniblog/logger"
	"miniblog/web/controller"
	"miniblog/web/service"
	"miniblog/web/session"

	"github.com/gin-gonic/gin"
)

// CurrentUser resolves the session to a user row once per request. A
// session pointing at a deleted user is cleared so the request proceeds as
// anonymous instead of failing on every page.
func CurrentUser(userService *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := session.UserID(c); ok {
			user, err := userService.GetByID(id)
			if err != nil {
				logger.Warningf("session for missing user %d, clearing", id)
				if err := session.ClearSession(c); err != nil {
					logger.Warning("unable to clear stale session:", err)
				}
			} else {
				controller.SetCurrentUser(c, user)
			}
		}
		c.Next()
	}
}
