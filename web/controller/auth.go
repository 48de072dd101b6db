package controller

import (
	"errors"
	"net/http"

	"miniblog/config"
	"miniblog/logger"
	"miniblog/web/entity"
	"miniblog/web/service"
	"miniblog/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm carries the login submission. The password field is named
// password1 to match the long-standing form markup.
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password1"`
}

// SignUpForm carries the registration submission. Password2 is the
// confirmation field; it is received but never compared against Password1.
// That matches the behavior users have always had (see DESIGN.md).
type SignUpForm struct {
	Username  string `form:"username"`
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
	Email     string `form:"email"`
	Password1 string `form:"password1"`
	Password2 string `form:"password2"`
}

// AuthController handles sign-up, login and logout.
type AuthController struct {
	BaseController

	userService *service.UserService
}

func NewAuthController(g *gin.RouterGroup, userService *service.UserService) *AuthController {
	a := &AuthController{userService: userService}
	a.initRouter(g)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup) {
	g.GET("/login", a.loginPage)
	g.POST("/login", a.login)
	g.GET("/sign-up", a.signUpPage)
	g.POST("/sign-up", a.signUp)
	g.GET("/logout", a.checkLogin, a.logout)
}

func (a *AuthController) loginPage(c *gin.Context) {
	html(c, "login.html", "pages.login.title", nil)
}

// login verifies credentials and establishes the session. Both failure
// modes re-render the form with a flash; neither is an error status.
func (a *AuthController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		flashError(c, "pages.login.toasts.invalidForm")
		html(c, "login.html", "pages.login.title", nil)
		return
	}

	user, err := a.userService.CheckCredentials(form.Email, form.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailNotFound):
			flashError(c, "pages.login.toasts.emailNotExist")
		case errors.Is(err, service.ErrPasswordIncorrect):
			logger.Warningf("failed login for %q from %s", form.Email, getRemoteIp(c))
			flashError(c, "pages.login.toasts.wrongPassword")
		default:
			logger.Warning("check credentials err:", err)
			flashError(c, "pages.login.toasts.invalidForm")
		}
		html(c, "login.html", "pages.login.title", nil)
		return
	}

	if err := session.SetMaxAge(c, config.GetSessionMaxAge()*60); err != nil {
		logger.Warning("unable to set session max age:", err)
	}
	if err := session.SetLoginUser(c, user.Id); err != nil {
		logger.Warning("unable to save session:", err)
	}

	logger.Infof("%s logged in from %s", user.Username, getRemoteIp(c))
	flashRedirect(c, entity.FlashSuccess, "pages.login.toasts.success", "/")
}

func (a *AuthController) signUpPage(c *gin.Context) {
	html(c, "signup.html", "pages.signup.title", nil)
}

// signUp registers an account and logs it in. Duplicate username or email
// sends the user back to the form with a flash.
func (a *AuthController) signUp(c *gin.Context) {
	var form SignUpForm
	if err := c.ShouldBind(&form); err != nil {
		flashRedirect(c, entity.FlashError, "pages.signup.toasts.invalidForm", "/sign-up")
		return
	}

	user, err := a.userService.Register(form.FirstName, form.LastName, form.Username, form.Email, form.Password1)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameTaken):
			flashRedirect(c, entity.FlashError, "pages.signup.toasts.usernameExists", "/sign-up")
		case errors.Is(err, service.ErrEmailTaken):
			flashRedirect(c, entity.FlashError, "pages.signup.toasts.emailExists", "/sign-up")
		default:
			logger.Warning("register err:", err)
			flashRedirect(c, entity.FlashError, "pages.signup.toasts.invalidForm", "/sign-up")
		}
		return
	}

	if err := session.SetMaxAge(c, config.GetSessionMaxAge()*60); err != nil {
		logger.Warning("unable to set session max age:", err)
	}
	if err := session.SetLoginUser(c, user.Id); err != nil {
		logger.Warning("unable to save session:", err)
	}

	logger.Infof("new user %q registered from %s", user.Username, getRemoteIp(c))
	flashRedirect(c, entity.FlashSuccess, "pages.signup.toasts.created", "/")
}

// logout clears the session and returns to the home page.
func (a *AuthController) logout(c *gin.Context) {
	if user := currentUser(c); user != nil {
		logger.Infof("%s logged out", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("unable to clear session:", err)
	}
	c.Redirect(http.StatusFound, "/")
}
