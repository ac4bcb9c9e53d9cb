package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/badlog/internal/service"
)

const (
	// AuthSessionName 保存登录用户，沿用 store 上配置的有效期。
	AuthSessionName = "badlog_session"
	// VisitSessionName 只记录本次浏览器会话是否已计入浏览次数，cookie 不带过期时间。
	VisitSessionName = "badlog_visit"
)

const (
	sessionUserID    = "user_id"
	sessionUserName  = "user_name"
	sessionUserEmail = "user_email"
	sessionUserPhoto = "user_photo"
	sessionIsAdmin   = "is_admin"
	sessionViewFlag  = "viewCounted"
)

// sessionUser 是保存在会话里的登录用户。
type sessionUser struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	IsAdmin     bool   `json:"isAdmin"`
}

// SessionNames 返回需要注册到 sessions.SessionsMany 的会话。
func SessionNames() []string {
	return []string{AuthSessionName, VisitSessionName}
}

func authSession(c *gin.Context) sessions.Session {
	return sessions.DefaultMany(c, AuthSessionName)
}

func currentUser(c *gin.Context) *sessionUser {
	session := authSession(c)
	uid, _ := session.Get(sessionUserID).(string)
	if uid == "" {
		return nil
	}
	name, _ := session.Get(sessionUserName).(string)
	email, _ := session.Get(sessionUserEmail).(string)
	photo, _ := session.Get(sessionUserPhoto).(string)
	admin, _ := session.Get(sessionIsAdmin).(bool)
	return &sessionUser{UID: uid, DisplayName: name, Email: email, PhotoURL: photo, IsAdmin: admin}
}

func saveUser(c *gin.Context, user sessionUser) error {
	session := authSession(c)
	session.Set(sessionUserID, user.UID)
	session.Set(sessionUserName, user.DisplayName)
	session.Set(sessionUserEmail, user.Email)
	session.Set(sessionUserPhoto, user.PhotoURL)
	session.Set(sessionIsAdmin, user.IsAdmin)
	return session.Save()
}

// viewFlag 用浏览器会话 cookie 记录本次会话是否已计入浏览次数。
// 它与登录会话分开保存，关闭浏览器即清除，登出也不会影响它。
type viewFlag struct {
	session sessions.Session
}

var _ service.SessionFlag = viewFlag{}

func newViewFlag(c *gin.Context) viewFlag {
	return viewFlag{session: sessions.DefaultMany(c, VisitSessionName)}
}

func (f viewFlag) Counted() bool {
	counted, _ := f.session.Get(sessionViewFlag).(bool)
	return counted
}

func (f viewFlag) MarkCounted() error {
	// MaxAge 为 0 时不写 Max-Age/Expires，浏览器关闭后 cookie 失效
	f.session.Options(sessions.Options{
		Path:     "/",
		MaxAge:   0,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	f.session.Set(sessionViewFlag, true)
	return f.session.Save()
}
