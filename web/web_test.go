package web

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/op/go-logging"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"

	"recipe-box/database"
	"recipe-box/logger"
	"recipe-box/web/global"
	"recipe-box/web/service"
)

// newTestServer wires a full engine against a scratch database and a stubbed
// recipe API, and returns an HTTP client with a cookie jar.
func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	logger.InitLogger(logging.DEBUG)
	os.Remove("test.db")
	assert.NoError(t, database.InitDB("test.db"))
	t.Cleanup(func() {
		db, _ := database.GetDB().DB()
		db.Close()
		os.Remove("test.db")
	})

	apiStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/complexSearch"):
			w.Write([]byte(`{"results":[{"id":7,"title":"Test Goulash","readyInMinutes":45,"servings":4}],"totalResults":1}`))
		case strings.Contains(r.URL.Path, "/recipes/7/"):
			w.Write([]byte(`{"id":7,"title":"Test Goulash","instructions":"Stew it.","servings":4}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(apiStub.Close)

	settingService := service.SettingService{}
	assert.NoError(t, settingService.SetRecipeApiURL(apiStub.URL))
	assert.NoError(t, settingService.SetRecipeApiKey("test-key"))

	server := NewServer()
	global.SetWebServer(server)

	loc, err := server.settingService.GetTimeLocation()
	assert.NoError(t, err)
	server.cron = cron.New(cron.WithLocation(loc), cron.WithSeconds())
	server.cron.Start()
	t.Cleanup(func() { server.cron.Stop() })

	engine, err := server.initRouter()
	assert.NoError(t, err)

	ts := httptest.NewServer(engine)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	assert.NoError(t, err)
	return ts, &http.Client{Jar: jar}
}

func TestHealthIsOpen(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.Get(ts.URL + "/health")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.Get(ts.URL + "/home")
	assert.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Equal(t, "/home", resp.Request.URL.Query().Get("next"))
}

func TestRegisterLoginSearchLogout(t *testing.T) {
	ts, client := newTestServer(t)

	// Register
	resp, err := client.PostForm(ts.URL+"/register", url.Values{
		"username":        {"alice"},
		"email":           {"alice@example.com"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
	})
	assert.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Contains(t, body, "Account created")

	// Login with a next target
	resp, err = client.PostForm(ts.URL+"/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"secret1"},
		"next":     {"/home"},
	})
	assert.NoError(t, err)
	body = readBody(t, resp)
	assert.Equal(t, "/home", resp.Request.URL.Path)
	assert.Contains(t, body, "Welcome back, alice!")

	// Search hits the stubbed API
	resp, err = client.PostForm(ts.URL+"/home", url.Values{
		"search_query": {"goulash"},
	})
	assert.NoError(t, err)
	body = readBody(t, resp)
	assert.Contains(t, body, "Test Goulash")
	assert.Contains(t, body, "/recipe/7")

	// Detail page
	resp, err = client.Get(ts.URL + "/recipe/7")
	assert.NoError(t, err)
	body = readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Stew it.")

	// Unknown recipe id renders the not found page
	resp, err = client.Get(ts.URL + "/recipe/12345")
	assert.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Status page is reachable when logged in
	resp, err = client.Get(ts.URL + "/status")
	assert.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Logout drops the session
	resp, err = client.Get(ts.URL + "/logout")
	assert.NoError(t, err)
	body = readBody(t, resp)
	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Contains(t, body, "logged out")

	resp, err = client.Get(ts.URL + "/home")
	assert.NoError(t, err)
	readBody(t, resp)
	assert.Equal(t, "/login", resp.Request.URL.Path)
}

func TestLoginRejectsMaliciousNextTarget(t *testing.T) {
	ts, client := newTestServer(t)

	_, err := client.PostForm(ts.URL+"/register", url.Values{
		"username":        {"bob"},
		"email":           {"bob@example.com"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
	})
	assert.NoError(t, err)

	resp, err := client.PostForm(ts.URL+"/login", url.Values{
		"email":    {"bob@example.com"},
		"password": {"secret1"},
		"next":     {"https://evil.example.com/"},
	})
	assert.NoError(t, err)
	readBody(t, resp)

	// The off-site target is ignored in favor of the home page
	assert.Equal(t, ts.URL, "http://"+resp.Request.URL.Host)
	assert.Equal(t, "/home", resp.Request.URL.Path)
}

func TestWrongCredentialsStayOnLogin(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.PostForm(ts.URL+"/login", url.Values{
		"email":    {"ghost@example.com"},
		"password": {"whatever1"},
	})
	assert.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Contains(t, body, "Invalid email or password")
}

func TestLegacySearchPathRedirects(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.Get(ts.URL + "/search")
	assert.NoError(t, err)
	readBody(t, resp)

	// 301 to /home, then the login redirect for the anonymous client
	assert.Equal(t, "/login", resp.Request.URL.Path)
	assert.Equal(t, "/home", resp.Request.URL.Query().Get("next"))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	buf := new(strings.Builder)
	_, err := io.Copy(buf, resp.Body)
	assert.NoError(t, err)
	return buf.String()
}
