package controller

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"recipe-box/config"
	"recipe-box/web/global"
	"recipe-box/web/service"
)

// ServerController exposes the status page and the health probe.
type ServerController struct {
	BaseController

	serverService service.ServerService

	mu                sync.Mutex
	lastStatus        *service.Status
	lastGetStatusTime time.Time
}

func NewServerController(g *gin.RouterGroup) *ServerController {
	a := &ServerController{
		lastGetStatusTime: time.Now(),
	}
	a.initRouter(g)
	a.startTask()
	return a
}

func (a *ServerController) initRouter(g *gin.RouterGroup) {
	g.GET("/health", a.health)

	status := g.Group("/status")
	status.Use(a.checkLogin)

	status.GET("", a.statusPage)
	status.POST("", a.status)
	status.POST("/logs/:count", a.getLogs)
}

// startTask keeps the status snapshot warm while someone is watching the
// page, and lets it go stale once nobody has asked for three minutes.
func (a *ServerController) startTask() {
	webServer := global.GetWebServer()
	c := webServer.GetCron()
	c.AddFunc("@every 2s", func() {
		a.mu.Lock()
		idle := time.Since(a.lastGetStatusTime) > time.Minute*3
		a.mu.Unlock()
		if idle {
			return
		}
		a.refreshStatus()
	})
}

func (a *ServerController) refreshStatus() {
	status := a.serverService.GetStatus()
	a.mu.Lock()
	a.lastStatus = status
	a.mu.Unlock()
}

func (a *ServerController) statusPage(c *gin.Context) {
	a.mu.Lock()
	a.lastGetStatusTime = time.Now()
	status := a.lastStatus
	a.mu.Unlock()

	if status == nil {
		a.refreshStatus()
		a.mu.Lock()
		status = a.lastStatus
		a.mu.Unlock()
	}

	html(c, "status.html", "pages.status.title", gin.H{
		"status": status,
	})
}

func (a *ServerController) status(c *gin.Context) {
	a.mu.Lock()
	a.lastGetStatusTime = time.Now()
	status := a.lastStatus
	a.mu.Unlock()

	if status == nil {
		a.refreshStatus()
		a.mu.Lock()
		status = a.lastStatus
		a.mu.Unlock()
	}
	jsonObj(c, status, nil)
}

func (a *ServerController) getLogs(c *gin.Context) {
	count, err := strconv.Atoi(c.Param("count"))
	if err != nil {
		count = 10
	}
	level := c.PostForm("level")
	logs := a.serverService.GetLogs(count, level)
	jsonObj(c, logs, nil)
}

// health is an unauthenticated liveness probe.
func (a *ServerController) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   config.GetVersion(),
		"timestamp": time.Now().Unix(),
	})
}
