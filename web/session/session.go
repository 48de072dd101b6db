// Package session wraps the cookie session: login identity and flash
// messages. Only the user id is stored in the cookie; the user row is
// resolved per request from the database.
package session

import (
	"encoding/gob"

	"miniblog/web/entity"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const loginUserKey = "LOGIN_USER_ID"

func init() {
	gob.Register(entity.Flash{})
}

// SetLoginUser records the authenticated user's id in the session.
func SetLoginUser(c *gin.Context, userID int) error {
	s := sessions.Default(c)
	s.Set(loginUserKey, userID)
	return s.Save()
}

// SetMaxAge sets the session cookie lifetime in seconds.
func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	return s.Save()
}

// UserID resolves the session to a user id. The second return value is
// false for anonymous requests.
func UserID(c *gin.Context) (int, bool) {
	s := sessions.Default(c)
	if obj := s.Get(loginUserKey); obj != nil {
		if id, ok := obj.(int); ok {
			return id, true
		}
	}
	return 0, false
}

// IsLogin reports whether the request carries an authenticated session.
func IsLogin(c *gin.Context) bool {
	_, ok := UserID(c)
	return ok
}

// ClearSession drops the login identity and expires the cookie.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	return s.Save()
}

// AddFlash queues a one-time message for the next rendered page.
func AddFlash(c *gin.Context, category, message string) error {
	s := sessions.Default(c)
	s.AddFlash(entity.Flash{Category: category, Message: message})
	return s.Save()
}

// Flashes drains the queued flash messages. Draining mutates the session,
// so it saves before returning.
func Flashes(c *gin.Context) []entity.Flash {
	s := sessions.Default(c)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := s.Save(); err != nil {
		return nil
	}
	flashes := make([]entity.Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(entity.Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	return flashes
}
