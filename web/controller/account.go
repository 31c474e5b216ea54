package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"recipe-box/logger"
	"recipe-box/web/service"
	"recipe-box/web/session"
)

// AccountController serves the account page: two factor enrollment and
// search history maintenance.
type AccountController struct {
	BaseController

	userService    service.UserService
	historyService service.HistoryService
}

func NewAccountController(g *gin.RouterGroup) *AccountController {
	a := &AccountController{}
	a.initRouter(g)
	return a
}

func (a *AccountController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/account")
	g.Use(a.checkLogin)

	g.GET("", a.accountPage)
	g.POST("/twofactor/enable", a.enableTwoFactor)
	g.POST("/twofactor/disable", a.disableTwoFactor)
	g.GET("/twofactor/qr", a.twoFactorQrCode)
	g.POST("/history/clear", a.clearHistory)
}

func (a *AccountController) accountPage(c *gin.Context) {
	a.renderAccount(c, false, "")
}

func (a *AccountController) renderAccount(c *gin.Context, showSecret bool, totpSecret string) {
	user := loginUser(c)

	twoFactor, err := a.userService.GetTwoFactor(user.Id)
	if err != nil {
		logger.Warning("load two factor state err:", err)
	}

	html(c, "account.html", "pages.account.title", gin.H{
		"twoFactorEnabled": twoFactor != nil,
		"showSecret":       showSecret,
		"totpSecret":       totpSecret,
	})
}

// enableTwoFactor generates a TOTP secret for the user. The secret is shown
// exactly once, on the page rendered by this request.
func (a *AccountController) enableTwoFactor(c *gin.Context) {
	user := loginUser(c)

	twoFactor, err := a.userService.EnableTwoFactor(user.Id)
	if err != nil {
		logger.Error("enable two factor err:", err)
		if err := session.AddFlash(c, "error", I18nWeb(c, "fail")); err != nil {
			logger.Warning("add flash err:", err)
		}
		c.Redirect(http.StatusFound, c.GetString("base_path")+"account")
		return
	}

	a.renderAccount(c, true, twoFactor.Secret)
}

func (a *AccountController) disableTwoFactor(c *gin.Context) {
	user := loginUser(c)

	if err := a.userService.DisableTwoFactor(user.Id); err != nil {
		logger.Error("disable two factor err:", err)
		if err := session.AddFlash(c, "error", I18nWeb(c, "fail")); err != nil {
			logger.Warning("add flash err:", err)
		}
	} else {
		if err := session.AddFlash(c, "success", I18nWeb(c, "pages.account.toasts.twoFactorDisabled")); err != nil {
			logger.Warning("add flash err:", err)
		}
	}
	c.Redirect(http.StatusFound, c.GetString("base_path")+"account")
}

// twoFactorQrCode renders the provisioning URI as a QR code for scanning
// with an authenticator app. Only available while enrollment exists.
func (a *AccountController) twoFactorQrCode(c *gin.Context) {
	user := loginUser(c)

	twoFactor, err := a.userService.GetTwoFactor(user.Id)
	if err != nil {
		logger.Warning("load two factor state err:", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	if twoFactor == nil {
		c.Status(http.StatusNotFound)
		return
	}

	uri := a.userService.TwoFactorProvisioningURI(user, twoFactor)
	png, err := qrcode.Encode(uri, qrcode.Medium, 256)
	if err != nil {
		logger.Warning("encode two factor qr code err:", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (a *AccountController) clearHistory(c *gin.Context) {
	user := loginUser(c)

	if err := a.historyService.ClearHistory(user.Id); err != nil {
		logger.Error("clear search history err:", err)
		if err := session.AddFlash(c, "error", I18nWeb(c, "fail")); err != nil {
			logger.Warning("add flash err:", err)
		}
	} else {
		if err := session.AddFlash(c, "success", I18nWeb(c, "pages.account.toasts.historyCleared")); err != nil {
			logger.Warning("add flash err:", err)
		}
	}
	c.Redirect(http.StatusFound, c.GetString("base_path")+"account")
}
