package controller

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"recipe-box/logger"
	"recipe-box/web/middleware"
	"recipe-box/web/service"
	"recipe-box/web/session"
)

// LoginForm is the credential payload of the login page.
type LoginForm struct {
	Email         string `json:"email" form:"email"`
	Password      string `json:"password" form:"password"`
	TwoFactorCode string `json:"twoFactorCode" form:"twoFactorCode"`
	Next          string `json:"next" form:"next"`
}

// RegisterForm is the payload of the registration page.
type RegisterForm struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// AuthController handles registration, login and logout.
type AuthController struct {
	BaseController

	userService    service.UserService
	settingService service.SettingService
}

// NewAuthController creates a new AuthController and initializes its routes.
func NewAuthController(g *gin.RouterGroup) *AuthController {
	a := &AuthController{}
	a.initRouter(g)
	return a
}

func (a *AuthController) initRouter(g *gin.RouterGroup) {
	authLimiter := middleware.RateLimitMiddleware(middleware.AuthRateLimitConfig())

	g.GET("/login", a.redirectIfLoggedIn, a.loginPage)
	g.POST("/login", authLimiter, a.redirectIfLoggedIn, a.login)
	g.GET("/register", a.redirectIfLoggedIn, a.registerPage)
	g.POST("/register", authLimiter, a.redirectIfLoggedIn, a.register)
	g.GET("/logout", a.logout)
}

func (a *AuthController) loginPage(c *gin.Context) {
	html(c, "login.html", "pages.login.title", gin.H{
		"next": c.Query("next"),
	})
}

// login checks the submitted credentials. Every rejection shows the same
// message so the response never reveals whether the email is registered.
func (a *AuthController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warningf("malformed login form, client: %s: %v", getRemoteIp(c), err)
		a.failLogin(c, form.Next, I18nWeb(c, "pages.login.toasts.invalidCredentials"))
		return
	}

	if form.Email == "" || form.Password == "" {
		a.failLogin(c, form.Next, I18nWeb(c, "pages.login.toasts.emptyFields"))
		return
	}

	user, err := a.userService.CheckUser(form.Email, form.Password, form.TwoFactorCode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logger.Warningf("wrong credentials for %q, client: %s", form.Email, getRemoteIp(c))
		} else {
			logger.Error("user lookup failed during login:", err)
		}
		a.failLogin(c, form.Next, I18nWeb(c, "pages.login.toasts.invalidCredentials"))
		return
	}

	sessionMaxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("Unable to get session's max age from DB")
	}
	if sessionMaxAge > 0 {
		if err := session.SetMaxAge(c, sessionMaxAge*60); err != nil {
			logger.Warning("Unable to set session's max age:", err)
		}
	}

	if err := session.SetLoginUser(c, user); err != nil {
		logger.Warning("Unable to save session:", err)
	}

	logger.Infof("%s logged in successfully, client: %s", user.Username, getRemoteIp(c))
	if err := session.AddFlash(c, "success", I18nWeb(c, "pages.login.toasts.welcome", "Username=="+user.Username)); err != nil {
		logger.Warning("add flash err:", err)
	}

	target := c.GetString("base_path") + "home"
	if safeNextPath(form.Next) {
		target = form.Next
	}
	c.Redirect(http.StatusFound, target)
}

func (a *AuthController) failLogin(c *gin.Context, next string, msg string) {
	if err := session.AddFlash(c, "error", msg); err != nil {
		logger.Warning("add flash err:", err)
	}
	target := c.GetString("base_path") + "login"
	if next != "" {
		target += "?next=" + url.QueryEscape(next)
	}
	c.Redirect(http.StatusFound, target)
}

func (a *AuthController) registerPage(c *gin.Context) {
	html(c, "register.html", "pages.register.title", nil)
}

// register creates a new account. A new registration never logs the user in;
// they are sent to the login page instead.
func (a *AuthController) register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		logger.Warningf("malformed register form, client: %s: %v", getRemoteIp(c), err)
		a.failRegister(c, I18nWeb(c, "pages.register.toasts.fieldsRequired"))
		return
	}

	user, err := a.userService.CreateUser(form.Username, form.Email, form.Password, form.ConfirmPassword)
	if err != nil {
		key := registerErrorKey(err)
		if key == "fail" {
			logger.Error("create user failed:", err)
		}
		a.failRegister(c, I18nWeb(c, key))
		return
	}

	logger.Infof("new user %s registered, client: %s", user.Username, getRemoteIp(c))
	if err := session.AddFlash(c, "success", I18nWeb(c, "pages.register.toasts.success")); err != nil {
		logger.Warning("add flash err:", err)
	}
	c.Redirect(http.StatusFound, c.GetString("base_path")+"login")
}

func (a *AuthController) failRegister(c *gin.Context, msg string) {
	if err := session.AddFlash(c, "error", msg); err != nil {
		logger.Warning("add flash err:", err)
	}
	c.Redirect(http.StatusFound, c.GetString("base_path")+"register")
}

// registerErrorKey maps a registration failure to its message key.
func registerErrorKey(err error) string {
	switch {
	case errors.Is(err, service.ErrFieldsRequired):
		return "pages.register.toasts.fieldsRequired"
	case errors.Is(err, service.ErrPasswordMismatch):
		return "pages.register.toasts.passwordMismatch"
	case errors.Is(err, service.ErrPasswordTooShort):
		return "pages.register.toasts.passwordTooShort"
	case errors.Is(err, service.ErrUsernameTaken):
		return "pages.register.toasts.usernameTaken"
	case errors.Is(err, service.ErrEmailTaken):
		return "pages.register.toasts.emailTaken"
	}
	return "fail"
}

// logout clears the login state. It works without a valid session so the
// route stays idempotent.
func (a *AuthController) logout(c *gin.Context) {
	userId := session.GetLoginUserId(c)
	if userId > 0 {
		logger.Infof("user %d logged out successfully", userId)
	}
	if err := session.Logout(c); err != nil {
		logger.Warning("Unable to save session after logout:", err)
	}
	if err := session.AddFlash(c, "success", I18nWeb(c, "pages.login.toasts.loggedOut")); err != nil {
		logger.Warning("add flash err:", err)
	}
	c.Redirect(http.StatusFound, c.GetString("base_path")+"login")
}
