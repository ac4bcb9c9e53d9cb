package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/badlog/internal/db"
	"github.com/badlog/internal/logx"
)

const oauthStateCookie = "badlog_oauth_state"

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// Login 处理后台账号密码登录，成功后写入管理员会话。
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "请输入用户名和密码") {
		return
	}
	if a.db == nil || a.mode.Local() {
		respondError(c, http.StatusServiceUnavailable, "后端暂不可用，无法登录")
		return
	}

	user, err := db.Authenticate(a.db.WithContext(c.Request.Context()), req.Username, req.Password)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "用户名或密码错误")
		return
	}

	su := sessionUser{
		UID:         fmt.Sprintf("user:%d", user.ID),
		DisplayName: user.Username,
		IsAdmin:     true,
	}
	if err := saveUser(c, su); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": su})
}

// GoogleLogin 生成 state 并跳转到 Google 授权页。
func (a *API) GoogleLogin(c *gin.Context) {
	if a.oauth == nil {
		respondError(c, http.StatusNotFound, "未启用 Google 登录")
		return
	}
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", false, true)
	c.Redirect(http.StatusFound, a.oauth.AuthCodeURL(state))
}

// GoogleCallback 校验 state、换取令牌并读取用户资料。
func (a *API) GoogleCallback(c *gin.Context) {
	if a.oauth == nil {
		respondError(c, http.StatusNotFound, "未启用 Google 登录")
		return
	}

	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || expected == "" || expected != c.Query("state") {
		respondError(c, http.StatusBadRequest, "登录状态无效，请重新登录")
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		respondError(c, http.StatusBadRequest, "缺少授权码")
		return
	}

	ctx := c.Request.Context()
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		logx.Error("auth", "google_exchange", "%v", err)
		respondError(c, http.StatusUnauthorized, "Google 登录失败")
		return
	}

	info, err := a.fetchGoogleUser(c, a.oauth.Client(ctx, token))
	if err != nil {
		logx.Error("auth", "google_userinfo", "%v", err)
		respondError(c, http.StatusUnauthorized, "Google 登录失败")
		return
	}

	email := strings.ToLower(strings.TrimSpace(info.Email))
	su := sessionUser{
		UID:         "google:" + info.Sub,
		DisplayName: info.Name,
		Email:       email,
		PhotoURL:    info.Picture,
		IsAdmin:     email != "" && a.isAdminEmail(email),
	}
	if err := saveUser(c, su); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}
	logx.Info("auth", "google_login", "signed in %s admin=%t", su.UID, su.IsAdmin)
	c.Redirect(http.StatusFound, a.siteBaseURL+"/")
}

func (a *API) fetchGoogleUser(c *gin.Context, client *http.Client) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, a.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned %s", resp.Status)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.Sub == "" {
		return nil, fmt.Errorf("userinfo has no subject")
	}
	return &info, nil
}

// Logout 清除会话。
func (a *API) Logout(c *gin.Context) {
	session := authSession(c)
	session.Clear()
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "会话保存失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me 返回当前登录用户，未登录时 user 为 null。
func (a *API) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentUser(c)})
}

// AuthRequired 要求已登录。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired 要求管理员身份。
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, "请先登录")
			c.Abort()
			return
		}
		if !user.IsAdmin {
			respondError(c, http.StatusForbidden, "需要管理员权限")
			c.Abort()
			return
		}
		c.Next()
	}
}
