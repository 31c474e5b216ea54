// Package controller provides the HTTP handlers of the recipe-box web app:
// registration, login, recipe search and the operator status pages.
package controller

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"recipe-box/database/model"
	"recipe-box/logger"
	"recipe-box/web/service"
	"recipe-box/web/session"
)

// loginUserKey is the gin context key holding the user loaded by checkLogin.
const loginUserKey = "login_user"

// BaseController provides the authentication gate shared by all protected
// controllers.
type BaseController struct {
	userService service.UserService
}

// checkLogin verifies the session and loads the user row behind it. Requests
// without a valid user are sent to the login page with a next parameter
// pointing back at the original URL.
func (a *BaseController) checkLogin(c *gin.Context) {
	userId := session.GetLoginUserId(c)
	if userId == 0 {
		a.rejectUnauthorized(c)
		return
	}

	user, err := a.userService.GetUserByID(userId)
	if err != nil {
		// The session outlived its user row; drop it.
		logger.Infof("cleared session for missing user %d", userId)
		if err := session.ClearSession(c); err != nil {
			logger.Warning("clear session err:", err)
		}
		a.rejectUnauthorized(c)
		return
	}

	c.Set(loginUserKey, user)
	c.Next()
}

func (a *BaseController) rejectUnauthorized(c *gin.Context) {
	if isAjax(c) {
		pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "pages.login.loginAgain"))
	} else {
		next := url.QueryEscape(c.Request.RequestURI)
		c.Redirect(http.StatusFound, c.GetString("base_path")+"login?next="+next)
	}
	c.Abort()
}

// redirectIfLoggedIn keeps authenticated users away from guest-only pages
// like login and register.
func (a *BaseController) redirectIfLoggedIn(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusFound, c.GetString("base_path")+"home")
		c.Abort()
		return
	}
	c.Next()
}

// loginUser returns the user loaded by checkLogin for this request.
func loginUser(c *gin.Context) *model.User {
	if obj, ok := c.Get(loginUserKey); ok {
		if user, ok := obj.(*model.User); ok {
			return user
		}
	}
	return nil
}

// I18nWeb retrieves an internationalized message for the web interface based on the current locale.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	anyfunc, funcExists := c.Get("I18n")
	if !funcExists {
		logger.Warning("I18n function not exists in gin context!")
		return ""
	}
	i18nFunc, _ := anyfunc.(func(key string, keyParams ...string) string)
	msg := i18nFunc(name, params...)
	return msg
}
