package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"boarddash/internal/db/dbtest"
	"boarddash/internal/models"
	"boarddash/internal/services"
	"boarddash/internal/store"
	"boarddash/internal/utils"
	"boarddash/internal/views"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubHTML renders the template name followed by the data, so tests can
// assert on what a handler chose to show without parsing real templates.
type stubHTML struct {
	known map[string]bool
}

func newStubHTML() stubHTML {
	known := make(map[string]bool)
	for _, name := range views.Names() {
		known[name] = true
	}
	return stubHTML{known: known}
}

func (s stubHTML) Instance(name string, data any) render.Render {
	return stubRender{name: name, data: data, known: s.known[name]}
}

type stubRender struct {
	name  string
	data  any
	known bool
}

func (r stubRender) Render(w http.ResponseWriter) error {
	r.WriteContentType(w)
	if !r.known {
		return fmt.Errorf("unknown template %q", r.name)
	}
	_, err := fmt.Fprintf(w, "template:%s\n%+v", r.name, r.data)
	return err
}

func (r stubRender) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

type testApp struct {
	server   *httptest.Server
	store    *store.Store
	accounts *services.AccountService
	board    *services.BoardService
}

type appOption func(*Deps)

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()
	conn := dbtest.New(t)
	s := store.New(conn)
	reactions := services.NewReactionService(s)
	board := services.NewBoardService(s, reactions)
	accounts := services.NewAccountService(s)
	cache, err := utils.NewRenderCache(16)
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)

	deps := Deps{
		Store:         s,
		Analytics:     services.NewAnalyticsService(s, time.UTC),
		Accounts:      accounts,
		Board:         board,
		Reactions:     reactions,
		Renderer:      utils.NewContentRenderer(cache),
		DB:            sqlDB,
		SessionSecret: "test-secret",
	}
	for _, opt := range opts {
		opt(&deps)
	}

	r := gin.New()
	r.HTMLRender = newStubHTML()
	Setup(r, deps)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testApp{server: srv, store: s, accounts: accounts, board: board}
}

func (a *testApp) user(t *testing.T, username string, staff bool) *models.User {
	t.Helper()
	u, err := a.accounts.CreateUser(context.Background(), services.NewUserInput{
		Username: username, Password: "password123", Email: username + "@example.com", IsStaff: staff,
	})
	require.NoError(t, err)
	return u
}

// client returns an http client that keeps cookies and does not follow redirects.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) login(t *testing.T, username string) *http.Client {
	t.Helper()
	c := a.client(t)
	resp, err := c.PostForm(a.server.URL+"/dashboard/login/", url.Values{
		"username": {username},
		"password": {"password123"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	return c
}

type response struct {
	code     int
	body     string
	location string
}

func do(t *testing.T, c *http.Client, method, target string, form url.Values, headers ...string) response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, target, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{code: resp.StatusCode, body: string(b), location: resp.Header.Get("Location")}
}

func decode(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &out), body)
	return out
}

func TestDashboard_StaffOnly(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "admin", true)
	app.user(t, "member", false)

	anon := do(t, app.client(t), http.MethodGet, app.server.URL+"/dashboard/", nil)
	assert.Equal(t, http.StatusFound, anon.code)
	assert.Equal(t, "/dashboard/login/?next=%2Fdashboard%2F", anon.location)

	memberClient := app.login(t, "member")
	member := do(t, memberClient, http.MethodGet, app.server.URL+"/dashboard/", nil)
	assert.Equal(t, http.StatusFound, member.code)
	require.True(t, strings.HasPrefix(member.location, "/dashboard/login/"))

	// 已登录的非 staff 停在登录页，不会被送回 /dashboard/
	landing := do(t, memberClient, http.MethodGet, app.server.URL+member.location, nil)
	assert.Equal(t, http.StatusOK, landing.code)
	assert.True(t, strings.HasPrefix(landing.body, "template:"+views.Login))
	assert.Contains(t, landing.body, "doesn't have access")

	// 没有 next 时已登录用户直接进入版块
	plain := do(t, memberClient, http.MethodGet, app.server.URL+"/dashboard/login/", nil)
	assert.Equal(t, http.StatusFound, plain.code)
	assert.Equal(t, "/dashboard/board/", plain.location)

	staff := do(t, app.login(t, "admin"), http.MethodGet, app.server.URL+"/dashboard/", nil)
	assert.Equal(t, http.StatusOK, staff.code)
	assert.True(t, strings.HasPrefix(staff.body, "template:"+views.Dashboard))
}

func TestLogin_SessionCookieWorksOverHTTP(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "member", false)

	resp, err := app.client(t).PostForm(app.server.URL+"/dashboard/login/", url.Values{
		"username": {"member"},
		"password": {"password123"},
	})
	require.NoError(t, err)
	resp.Body.Close()

	var session *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionName {
			session = ck
		}
	}
	require.NotNil(t, session)
	assert.False(t, session.Secure)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, session.SameSite)
	assert.Equal(t, "/", session.Path)

	board := do(t, app.login(t, "member"), http.MethodGet, app.server.URL+"/dashboard/board/", nil)
	assert.Equal(t, http.StatusOK, board.code)
}

func TestLogin_RejectsBadPasswordAndUnsafeNext(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "member", false)
	c := app.client(t)

	bad := do(t, c, http.MethodPost, app.server.URL+"/dashboard/login/", url.Values{"username": {"member"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, bad.code)
	assert.True(t, strings.HasPrefix(bad.body, "template:"+views.Login))

	ok := do(t, c, http.MethodPost, app.server.URL+"/dashboard/login/", url.Values{
		"username": {"member"}, "password": {"password123"}, "next": {"//evil.example/"},
	})
	assert.Equal(t, http.StatusFound, ok.code)
	assert.Equal(t, "/dashboard/board/", ok.location)

	out := do(t, c, http.MethodGet, app.server.URL+"/dashboard/logout/", nil)
	assert.Equal(t, http.StatusFound, out.code)
	board := do(t, c, http.MethodGet, app.server.URL+"/dashboard/board/", nil)
	assert.Equal(t, http.StatusFound, board.code)
}

func TestLikeToggle_EndToEnd(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	author := app.user(t, "author", false)
	app.user(t, "reader", false)
	cat, err := app.board.CreateCategory(ctx, services.CategoryInput{Name: "general"})
	require.NoError(t, err)
	post, err := app.board.CreatePost(ctx, author, services.PostInput{Title: "hello", Content: "world", CategoryID: cat.ID})
	require.NoError(t, err)

	c := app.login(t, "reader")
	likeURL := fmt.Sprintf("%s/dashboard/board/post/%d/like/", app.server.URL, post.ID)

	first := do(t, c, http.MethodPost, likeURL, url.Values{})
	require.Equal(t, http.StatusOK, first.code)
	assert.JSONEq(t, `{"is_liked":true,"like_count":1}`, first.body)

	second := do(t, c, http.MethodPost, likeURL, url.Values{})
	require.Equal(t, http.StatusOK, second.code)
	assert.JSONEq(t, `{"is_liked":false,"like_count":0}`, second.body)

	mark := do(t, c, http.MethodPost, fmt.Sprintf("%s/dashboard/board/post/%d/bookmark/", app.server.URL, post.ID), url.Values{})
	require.Equal(t, http.StatusOK, mark.code)
	assert.JSONEq(t, `{"is_bookmarked":true,"bookmark_count":1}`, mark.body)

	missing := do(t, c, http.MethodPost, app.server.URL+"/dashboard/board/post/999/like/", url.Values{})
	assert.Equal(t, http.StatusNotFound, missing.code)
	assert.Contains(t, decode(t, missing.body), "error")

	anon := do(t, app.client(t), http.MethodPost, likeURL, url.Values{}, "Accept", "application/json")
	assert.Equal(t, http.StatusUnauthorized, anon.code)
}

func TestLikeToggle_RateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	app := newTestApp(t, func(d *Deps) {
		d.Redis = client
		d.RateLimit = 2
		d.RateWindow = time.Minute
	})
	ctx := context.Background()
	u := app.user(t, "clicker", false)
	cat, err := app.board.CreateCategory(ctx, services.CategoryInput{Name: "general"})
	require.NoError(t, err)
	post, err := app.board.CreatePost(ctx, u, services.PostInput{Title: "t", Content: "c", CategoryID: cat.ID})
	require.NoError(t, err)

	c := app.login(t, "clicker")
	likeURL := fmt.Sprintf("%s/dashboard/board/post/%d/like/", app.server.URL, post.ID)
	codes := []int{}
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, c, http.MethodPost, likeURL, url.Values{}).code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCreatePost_WithoutCategories(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "writer", false)
	c := app.login(t, "writer")

	show := do(t, c, http.MethodGet, app.server.URL+"/dashboard/board/post/new/", nil)
	assert.Equal(t, http.StatusFound, show.code)
	assert.Equal(t, "/dashboard/board/", show.location)

	create := do(t, c, http.MethodPost, app.server.URL+"/dashboard/board/post/new/", url.Values{
		"title": {"t"}, "content": {"c"}, "category": {"1"},
	})
	assert.Equal(t, http.StatusFound, create.code)
	assert.Equal(t, "/dashboard/board/", create.location)

	n, err := app.store.Posts.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	board := do(t, c, http.MethodGet, app.server.URL+"/dashboard/board/", nil)
	assert.Equal(t, http.StatusOK, board.code)
	assert.Contains(t, board.body, "No categories exist yet")
}

func TestCreatePost_AndEditByAuthorOnly(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.user(t, "author", false)
	app.user(t, "other", true)
	_, err := app.board.CreateCategory(ctx, services.CategoryInput{Name: "general"})
	require.NoError(t, err)

	author := app.login(t, "author")
	invalid := do(t, author, http.MethodPost, app.server.URL+"/dashboard/board/post/new/", url.Values{
		"title": {""}, "content": {"c"}, "category": {"1"},
	})
	assert.Equal(t, http.StatusBadRequest, invalid.code)
	assert.True(t, strings.HasPrefix(invalid.body, "template:"+views.PostForm))

	created := do(t, author, http.MethodPost, app.server.URL+"/dashboard/board/post/new/", url.Values{
		"title": {"first"}, "content": {"body"}, "category": {"1"},
	})
	require.Equal(t, http.StatusFound, created.code)
	assert.Equal(t, "/dashboard/board/post/1/", created.location)

	detail := do(t, author, http.MethodGet, app.server.URL+created.location, nil)
	assert.Equal(t, http.StatusOK, detail.code)
	assert.Contains(t, detail.body, "Post published.")

	other := app.login(t, "other")
	forbidden := do(t, other, http.MethodGet, app.server.URL+"/dashboard/board/post/1/edit/", nil)
	assert.Equal(t, http.StatusForbidden, forbidden.code)
	assert.True(t, strings.HasPrefix(forbidden.body, "template:"+views.Error))

	forbiddenPost := do(t, other, http.MethodPost, app.server.URL+"/dashboard/board/post/1/edit/", url.Values{
		"title": {"x"}, "content": {"y"}, "category": {"1"},
	})
	assert.Equal(t, http.StatusForbidden, forbiddenPost.code)

	edit := do(t, author, http.MethodPost, app.server.URL+"/dashboard/board/post/1/edit/", url.Values{
		"title": {"renamed"}, "content": {"body"}, "category": {"1"},
	})
	assert.Equal(t, http.StatusFound, edit.code)

	p, err := app.store.Posts.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "renamed", p.Title)

	missing := do(t, author, http.MethodGet, app.server.URL+"/dashboard/board/post/77/", nil)
	assert.Equal(t, http.StatusNotFound, missing.code)
}

func TestComment(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	u := app.user(t, "talker", false)
	cat, err := app.board.CreateCategory(ctx, services.CategoryInput{Name: "general"})
	require.NoError(t, err)
	post, err := app.board.CreatePost(ctx, u, services.PostInput{Title: "t", Content: "c", CategoryID: cat.ID})
	require.NoError(t, err)

	c := app.login(t, "talker")
	target := fmt.Sprintf("%s/dashboard/board/post/%d/", app.server.URL, post.ID)

	empty := do(t, c, http.MethodPost, target, url.Values{"content": {"  "}})
	assert.Equal(t, http.StatusBadRequest, empty.code)

	ok := do(t, c, http.MethodPost, target, url.Values{"content": {"first!"}})
	assert.Equal(t, http.StatusFound, ok.code)

	comments, err := app.store.Comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "first!", comments[0].Content)
}

func TestBoardList_FragmentForHtmx(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "reader", false)
	c := app.login(t, "reader")

	full := do(t, c, http.MethodGet, app.server.URL+"/dashboard/board/?page=abc", nil)
	assert.True(t, strings.HasPrefix(full.body, "template:"+views.BoardList))

	frag := do(t, c, http.MethodGet, app.server.URL+"/dashboard/board/?page=2", nil, "HX-Request", "true")
	assert.True(t, strings.HasPrefix(frag.body, "template:"+views.PostRows))
	assert.Contains(t, frag.body, "Number:1")
}

func TestToggleUserStatus(t *testing.T) {
	app := newTestApp(t)
	admin := app.user(t, "admin", true)
	member := app.user(t, "member", false)
	c := app.login(t, "admin")

	self := do(t, c, http.MethodPost, fmt.Sprintf("%s/dashboard/toggle_user_status/%d/", app.server.URL, admin.ID), url.Values{})
	assert.Equal(t, http.StatusForbidden, self.code)
	assert.Equal(t, "error", decode(t, self.body)["status"])

	other := do(t, c, http.MethodPost, fmt.Sprintf("%s/dashboard/toggle_user_status/%d/", app.server.URL, member.ID), url.Values{})
	assert.Equal(t, http.StatusOK, other.code)
	assert.JSONEq(t, `{"status":"success","is_active":false}`, other.body)

	missing := do(t, c, http.MethodPost, app.server.URL+"/dashboard/toggle_user_status/999/", url.Values{})
	assert.Equal(t, http.StatusNotFound, missing.code)

	// 被停用的用户无法再登录
	bad := do(t, app.client(t), http.MethodPost, app.server.URL+"/dashboard/login/", url.Values{
		"username": {"member"}, "password": {"password123"},
	})
	assert.Equal(t, http.StatusUnauthorized, bad.code)
}

func TestUserListPartial_SearchAndPaging(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "admin", true)
	for i := 0; i < 12; i++ {
		app.user(t, fmt.Sprintf("user%02d", i), false)
	}
	c := app.login(t, "admin")

	for _, page := range []string{"0", "-1", "abc", "99"} {
		res := do(t, c, http.MethodGet, app.server.URL+"/dashboard/user_list_partial/?page="+page, nil)
		assert.Equal(t, http.StatusOK, res.code)
		assert.True(t, strings.HasPrefix(res.body, "template:"+views.UserRows))
		assert.Contains(t, res.body, "Number:1", "page=%s", page)
	}

	second := do(t, c, http.MethodGet, app.server.URL+"/dashboard/user_list_partial/?page=2", nil)
	assert.Contains(t, second.body, "Number:2")

	found := do(t, c, http.MethodGet, app.server.URL+"/dashboard/user_list_partial/?search=USER07%40EXAMPLE", nil)
	assert.Contains(t, found.body, "user07")
	assert.NotContains(t, found.body, "user08")
	assert.Contains(t, found.body, "Total:1 TotalPages:1")
}

func TestCategories(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "admin", true)
	app.user(t, "member", false)

	member := do(t, app.login(t, "member"), http.MethodPost, app.server.URL+"/dashboard/categories/", url.Values{"name": {"x"}})
	assert.Equal(t, http.StatusFound, member.code)

	c := app.login(t, "admin")
	created := do(t, c, http.MethodPost, app.server.URL+"/dashboard/categories/", url.Values{"name": {"news"}})
	assert.Equal(t, http.StatusFound, created.code)

	dup := do(t, c, http.MethodPost, app.server.URL+"/dashboard/categories/", url.Values{"name": {"News"}})
	assert.Equal(t, http.StatusBadRequest, dup.code)

	list := do(t, c, http.MethodGet, app.server.URL+"/dashboard/categories/", nil)
	assert.Contains(t, list.body, "news")

	deleted := do(t, c, http.MethodPost, app.server.URL+"/dashboard/categories/1/delete/", url.Values{})
	assert.Equal(t, http.StatusFound, deleted.code)
	n, err := app.store.Categories.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	missing := do(t, c, http.MethodPost, app.server.URL+"/dashboard/categories/1/delete/", url.Values{})
	assert.Equal(t, http.StatusNotFound, missing.code)
}

func TestProfile(t *testing.T) {
	app := newTestApp(t)
	u := app.user(t, "member", false)
	c := app.login(t, "member")

	bad := do(t, c, http.MethodPost, app.server.URL+"/dashboard/profile/", url.Values{
		"first_name": {"A"}, "last_name": {"B"}, "email": {""},
	})
	assert.Equal(t, http.StatusBadRequest, bad.code)

	ok := do(t, c, http.MethodPost, app.server.URL+"/dashboard/profile/", url.Values{
		"first_name": {"Ada"}, "last_name": {"Lovelace"}, "email": {"ada@example.com"},
	})
	assert.Equal(t, http.StatusFound, ok.code)

	stored, err := app.store.Users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.FullName())
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	health := do(t, c, http.MethodGet, app.server.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, health.code)
	assert.JSONEq(t, `{"status":"ok"}`, health.body)

	metrics := do(t, c, http.MethodGet, app.server.URL+"/metrics", nil)
	assert.Equal(t, http.StatusOK, metrics.code)
	assert.Contains(t, metrics.body, "boarddash_http_requests_total")
}
