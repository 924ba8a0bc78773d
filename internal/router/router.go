package router

import (
	"net/http"
	"time"

	"boarddash/internal/handlers"
	"boarddash/internal/middleware"
	"boarddash/internal/services"
	"boarddash/internal/store"
	"boarddash/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const (
	sessionName   = "boarddash_session"
	sessionMaxAge = 7 * 24 * 60 * 60
)

// Deps are the collaborators the routes need.
type Deps struct {
	Store         *store.Store
	Analytics     *services.AnalyticsService
	Accounts      *services.AccountService
	Board         *services.BoardService
	Reactions     *services.ReactionService
	Renderer      *utils.ContentRenderer
	DB            handlers.Pinger
	SessionSecret string
	CookieSecure  bool          // 仅在 HTTPS 部署时开启
	Redis         *redis.Client // nil disables rate limiting
	RateLimit     int
	RateWindow    time.Duration
}

// Setup installs the global middleware and all routes on r.
func Setup(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestID(), middleware.AccessLog(), gin.Recovery())
	sessionStore := cookie.NewStore([]byte(d.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   d.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, sessionStore))
	r.Use(middleware.LoadUser(d.Accounts))

	RegisterRoutes(r, d)
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Accounts)
	dashboardHandler := handlers.NewDashboardHandler(d.Analytics, d.Accounts)
	categoryHandler := handlers.NewCategoryHandler(d.Board)
	boardHandler := handlers.NewBoardHandler(d.Board, d.Renderer)
	reactionHandler := handlers.NewReactionHandler(d.Reactions)
	profileHandler := handlers.NewProfileHandler(d.Accounts)
	healthHandler := handlers.NewHealthHandler(d.DB)

	r.GET("/metrics", gin.WrapH(promhttp.Handler())) // Prometheus 指标
	r.GET("/healthz", healthHandler.Check)           // 健康检查

	// 公共路由
	r.GET("/dashboard/login/", authHandler.ShowLogin) // 登录页面
	r.POST("/dashboard/login/", authHandler.Login)    // 提交登录
	r.GET("/dashboard/logout/", authHandler.Logout)   // 退出登录

	// 管理后台 (staff only)
	staff := r.Group("/dashboard")
	staff.Use(middleware.StaffRequired())
	{
		staff.GET("/", dashboardHandler.Index)                                    // 仪表盘
		staff.POST("/toggle_user_status/:id/", dashboardHandler.ToggleUserStatus) // 启用/停用用户
		staff.GET("/user_list_partial/", dashboardHandler.UserListPartial)        // 用户列表片段 (htmx)
		staff.GET("/categories/", categoryHandler.List)                           // 分类管理
		staff.POST("/categories/", categoryHandler.Create)                        // 新建分类
		staff.POST("/categories/:id/delete/", categoryHandler.Delete)             // 删除分类
	}

	// 会员版块
	member := r.Group("/dashboard")
	member.Use(middleware.AuthRequired())
	{
		member.GET("/board/", boardHandler.List)                    // 帖子列表
		member.GET("/board/post/new/", boardHandler.ShowCreate)     // 发帖页面
		member.POST("/board/post/new/", boardHandler.Create)        // 提交发帖
		member.GET("/board/post/:id/", boardHandler.Detail)         // 帖子详情
		member.POST("/board/post/:id/", boardHandler.CreateComment) // 发表评论
		member.GET("/board/post/:id/edit/", boardHandler.ShowEdit)  // 编辑页面 (仅作者)
		member.POST("/board/post/:id/edit/", boardHandler.Update)   // 提交编辑
		member.GET("/profile/", profileHandler.Show)                // 个人资料
		member.POST("/profile/", profileHandler.Update)             // 更新个人资料

		toggles := member.Group("/board/post/:id")
		toggles.Use(middleware.RateLimit(d.Redis, d.RateLimit, d.RateWindow))
		{
			toggles.POST("/like/", reactionHandler.ToggleLike)         // 点赞/取消点赞
			toggles.POST("/bookmark/", reactionHandler.ToggleBookmark) // 收藏/取消收藏
		}
	}
}
