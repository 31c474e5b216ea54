package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"recipe-box/logger"
	"recipe-box/web/service"
)

// RecipeController serves the search page and the recipe detail pages.
type RecipeController struct {
	BaseController

	recipeService  service.RecipeService
	historyService service.HistoryService
}

func NewRecipeController(g *gin.RouterGroup) *RecipeController {
	a := &RecipeController{}
	a.initRouter(g)
	return a
}

func (a *RecipeController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/")
	g.Use(a.checkLogin)

	g.GET("/", a.home)
	g.POST("/", a.home)
	g.GET("/home", a.home)
	g.POST("/home", a.home)
	g.GET("/recipe/:id", a.detail)
	g.GET("/recipe/:id/qr", a.shareQrCode)
}

// searchQuery extracts the submitted search term. The form field wins over
// the query string so a POST keeps working behind bookmarked URLs.
func searchQuery(c *gin.Context) (string, bool) {
	if query, ok := c.GetPostForm("search_query"); ok {
		return query, true
	}
	if query, ok := c.GetQuery("search_query"); ok {
		return query, true
	}
	return "", false
}

func (a *RecipeController) home(c *gin.Context) {
	user := loginUser(c)
	query, submitted := searchQuery(c)

	var recipes []service.Recipe
	if submitted {
		recipes = a.recipeService.SearchRecipes(query)
		if query != "" && user != nil {
			if err := a.historyService.RecordSearch(user.Id, query); err != nil {
				logger.Warning("record search err:", err)
			}
		}
	}

	recent, err := a.historyService.RecentSearches(user.Id)
	if err != nil {
		logger.Warning("load recent searches err:", err)
	}

	html(c, "index.html", "pages.index.title", gin.H{
		"recipes":      recipes,
		"search_query": query,
		"searched":     submitted,
		"recent":       recent,
	})
}

func (a *RecipeController) detail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		htmlStatus(c, http.StatusNotFound, "error.html", "pages.error.title", gin.H{
			"message": I18nWeb(c, "pages.error.recipeNotFound"),
		})
		return
	}

	recipe, err := a.recipeService.GetRecipe(id)
	if err != nil {
		if errors.Is(err, service.ErrRecipeNotFound) {
			htmlStatus(c, http.StatusNotFound, "error.html", "pages.error.title", gin.H{
				"message": I18nWeb(c, "pages.error.recipeNotFound"),
			})
			return
		}
		logger.Error("get recipe err:", err)
		htmlStatus(c, http.StatusInternalServerError, "error.html", "pages.error.title", gin.H{
			"message": I18nWeb(c, "pages.error.serverError"),
		})
		return
	}

	html(c, "recipe.html", "pages.recipe.title", gin.H{
		"recipe": recipe,
	})
}

// shareQrCode renders a QR code pointing at the recipe's detail page so the
// recipe can be pulled up on a phone.
func (a *RecipeController) shareQrCode(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	shareURL := fmt.Sprintf("%s://%s%srecipe/%d", scheme, c.Request.Host, c.GetString("base_path"), id)

	png, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
	if err != nil {
		logger.Warning("encode share qr code err:", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
