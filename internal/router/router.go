package router

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"grocerbot/internal/catalog"
	"grocerbot/internal/chat"
	"grocerbot/internal/metrics"
	"grocerbot/internal/middleware"
	"grocerbot/internal/report"
	"grocerbot/internal/session"
	"grocerbot/internal/shop"
)

type Deps struct {
	Logger      *log.Logger
	Metrics     *metrics.Metrics
	CORSOrigins []string

	Sessions *session.Manager
	Cookies  *session.Cookies

	Catalog *catalog.Catalog
	Chat    *chat.Service
	Shop    *shop.Service
	Reports *report.Generator
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(d.Logger),
		middleware.Metrics(d.Metrics),
		middleware.RequestLogger(d.Logger),
	)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Report-URL"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// ───────────────────────── PUBLIC ─────────────────────────
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "GroceryBot API is running"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	catalogHandler := catalog.NewHandler(d.Catalog)
	r.GET("/prices", catalogHandler.Prices)
	r.GET("/prices/lookup", catalogHandler.Lookup)

	// ───────────────────────── SESSION-BOUND ─────────────────────────
	chatHandler := chat.NewHandler(d.Chat, d.Logger.With("component", "chat"))
	shopHandler := shop.NewHandler(d.Shop)
	sessionHandler := session.NewHandler(d.Sessions, d.Cookies)
	reportHandler := report.NewHandler(d.Reports)

	s := r.Group("/")
	s.Use(middleware.Session(d.Sessions, d.Cookies, d.Logger.With("component", "session"), d.Metrics))
	{
		s.POST("/ai", chatHandler.Ask)

		s.GET("/cart", shopHandler.GetCart)
		s.POST("/cart/add", shopHandler.Add)
		s.POST("/cart/clear", shopHandler.Clear)
		s.POST("/cart/checkout", shopHandler.Checkout)
		s.GET("/orders", shopHandler.Orders)

		s.GET("/history", sessionHandler.History)
		s.POST("/session/reset", sessionHandler.Reset)
		s.GET("/session/info", sessionHandler.Info)

		s.GET("/download-pdf", reportHandler.Download)
	}

	return r
}
