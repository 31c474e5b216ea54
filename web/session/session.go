package session

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"recipe-box/database/model"
)

// SessionName is the cookie name carrying the session id.
const SessionName = "recipe-box"

const (
	loginUserId = "LOGIN_USER_ID"
	flashPrefix = "FLASH_"
)

// Flash is a one-shot message carried across a redirect.
type Flash struct {
	Kind string // "success" or "error"
	Msg  string
}

// SetLoginUser stores the user's id in the session. Only the id is kept;
// the user row is loaded fresh on every request.
func SetLoginUser(c *gin.Context, user *model.User) error {
	s := sessions.Default(c)
	s.Set(loginUserId, user.Id)
	return s.Save()
}

func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	return s.Save()
}

// GetLoginUserId returns the logged-in user's id, or 0 when the session
// carries none.
func GetLoginUserId(c *gin.Context) int {
	s := sessions.Default(c)
	if obj := s.Get(loginUserId); obj != nil {
		if id, ok := obj.(int); ok {
			return id
		}
	}
	return 0
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUserId(c) > 0
}

// Logout removes the login marker but keeps the session alive so a flash
// message can ride along to the login page.
func Logout(c *gin.Context) error {
	s := sessions.Default(c)
	s.Delete(loginUserId)
	return s.Save()
}

// AddFlash queues a one-shot message of the given kind for the next page render.
func AddFlash(c *gin.Context, kind string, msg string) error {
	s := sessions.Default(c)
	s.AddFlash(msg, flashPrefix+kind)
	return s.Save()
}

// TakeFlashes returns queued flash messages and removes them from the session.
func TakeFlashes(c *gin.Context) []Flash {
	s := sessions.Default(c)
	flashes := make([]Flash, 0)
	for _, kind := range []string{"success", "error"} {
		for _, v := range s.Flashes(flashPrefix + kind) {
			if msg, ok := v.(string); ok {
				flashes = append(flashes, Flash{Kind: kind, Msg: msg})
			}
		}
	}
	if len(flashes) > 0 {
		_ = s.Save()
	}
	return flashes
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	if err := s.Save(); err != nil {
		return err
	}
	c.SetCookie(SessionName, "", -1, "/", "", false, true)
	return nil
}
