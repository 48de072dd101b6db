package controller

import (
	"miniblog/logger"
	"miniblog/web/entity"
	"miniblog/web/service"

	"github.com/gin-gonic/gin"
)

// ContactForm carries a contact-page submission.
type ContactForm struct {
	Email   string `form:"email"`
	Subject string `form:"subject"`
	Message string `form:"message"`
}

// SiteController serves the static about page and the public contact form.
type SiteController struct {
	BaseController

	messageService *service.MessageService
}

func NewSiteController(g *gin.RouterGroup, messageService *service.MessageService) *SiteController {
	a := &SiteController{messageService: messageService}
	a.initRouter(g)
	return a
}

func (a *SiteController) initRouter(g *gin.RouterGroup) {
	g.GET("/about", a.about)
	g.GET("/contact", a.contactPage)
	g.POST("/contact", a.contact)
}

func (a *SiteController) about(c *gin.Context) {
	html(c, "about.html", "pages.about.title", nil)
}

func (a *SiteController) contactPage(c *gin.Context) {
	html(c, "contact.html", "pages.contact.title", nil)
}

// contact stores the submission as-is and confirms with a flash. The form
// has never validated its fields and the stored rows are only read by
// operators.
func (a *SiteController) contact(c *gin.Context) {
	var form ContactForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warning("bind contact form err:", err)
	}

	if _, err := a.messageService.Create(form.Email, form.Subject, form.Message); err != nil {
		logger.Warning("store message err:", err)
	}

	flashRedirect(c, entity.FlashSuccess, "pages.contact.toasts.sent", "/")
}
