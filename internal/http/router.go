// Package http assembles the gin engine serving the JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/cartcookie"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/dismiss"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/flash"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/handlers"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/handlers/admin"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/http/middleware"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/auth"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/cart"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/customers"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/dashboard"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/exports"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/feedback"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/live"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/payments"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/settings"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/storage"
)

// Deps are the long-lived collaborators built by main.
type Deps struct {
	Log *logrus.Logger
	DB  *gorm.DB
	// Redis is optional; without it the catalog reads straight from the DB.
	Redis *redis.Client

	Storage  storage.Storage
	Provider payments.Provider
	Auth     *auth.Service
	Orders   *orders.Service
	Hub      *live.Hub

	SessionSecret []byte
	CookieSecure  bool
	CORSOrigins   []string
	// UploadsDir/UploadsPrefix serve the local storage driver's files.
	UploadsDir    string
	UploadsPrefix string
}

func NewRouter(d Deps) *gin.Engine {
	log := d.Log

	r := gin.New()
	r.MaxMultipartMemory = storage.MaxImageBytes + 1<<20
	r.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log),
		middleware.CORS(d.CORSOrigins),
		middleware.ErrorHandler(log),
		middleware.Authenticate(d.Auth, d.CookieSecure),
	)
	if d.UploadsDir != "" && d.UploadsPrefix != "" {
		r.Static(d.UploadsPrefix, d.UploadsDir)
	}

	// repositories
	catalogRepo := catalog.NewRepo(d.DB)
	var (
		publicCatalog catalog.Repository = catalog.NewGormRepository(d.DB)
		invalidator   catalog.Invalidator
	)
	if d.Redis != nil {
		cached := catalog.NewCachedRepository(publicCatalog, d.Redis, log)
		publicCatalog, invalidator = cached, cached
	}
	cartRepo := cart.NewRepo(d.DB)
	siteRepo := content.NewSettingsRepo(d.DB)
	noticeRepo := content.NewNoticeRepo(d.DB)
	feedbackRepo := feedback.NewRepo(d.DB)
	customerRepo := customers.NewRepo(d.DB)
	paySettings := settings.NewRepo(d.DB)
	orderRepo := orders.NewRepo(d.DB)

	// services
	cartSvc := cart.NewService(d.DB, cartRepo)
	catalogAdmin := catalog.NewAdminService(catalogRepo, d.Storage, invalidator, log)
	orderAdmin := orders.NewAdminService(d.DB, d.Orders, log)
	paySvc := payments.NewService(d.DB, d.Provider, paySettings, siteRepo, d.Orders, log)
	webhookSvc := payments.NewWebhookService(paySvc, log)
	refundSvc := payments.NewRefundService(paySvc, log)
	dashSvc := dashboard.NewService(d.DB, catalogRepo, customerRepo)

	// cookies
	flashCK := flash.NewCodec(d.SessionSecret, flash.DefaultName, d.CookieSecure)
	cartCK := cartcookie.New(d.SessionSecret, cartcookie.DefaultName, d.CookieSecure)
	dismissCK := dismiss.New(d.SessionSecret, dismiss.DefaultName, d.CookieSecure)

	// handlers
	contentH := handlers.NewContentHandler(siteRepo, noticeRepo, feedbackRepo, dismissCK, flashCK, log)
	catalogH := handlers.NewCatalogHandler(publicCatalog)
	cartH := handlers.NewCartHandler(cartSvc, cartCK, siteRepo)
	checkoutH := handlers.NewCheckoutHandler(d.Orders, paySvc, paySettings, cartCK, flashCK, log)
	trackH := handlers.NewTrackHandler(orderRepo, siteRepo)
	payH := handlers.NewPaymentHandler(paySvc, webhookSvc, paySettings, orderRepo, flashCK, log)
	authH := handlers.NewAuthHandler(d.Auth, cartSvc, cartCK, flashCK, d.CookieSecure, log)
	accountH := handlers.NewAccountHandler(d.Auth, orderRepo, flashCK)

	api := r.Group("/api")

	api.GET("/health", health(d.DB, d.Redis))

	api.GET("/site", contentH.GetSite)
	api.GET("/store-location", contentH.StoreLocation)
	api.GET("/notices", contentH.ListNotices)
	api.POST("/notices/:id/dismiss", contentH.DismissNotice)
	api.GET("/flash", contentH.PopFlash)
	api.GET("/feedback", contentH.ListFeedback)
	api.POST("/feedback", contentH.SubmitFeedback)

	api.GET("/categories", catalogH.Categories)
	api.GET("/products", catalogH.Products)
	api.GET("/products/:slug", catalogH.Product)
	api.GET("/gift-boxes", catalogH.GiftBoxes)
	api.GET("/gift-boxes/:slug", catalogH.GiftBox)

	api.GET("/cart", cartH.Get)
	api.POST("/cart/items", cartH.Add)
	api.PATCH("/cart/items", cartH.SetQty)
	api.POST("/cart/items/decrement", cartH.Decrement)
	api.DELETE("/cart/items", cartH.Remove)
	api.DELETE("/cart", cartH.Clear)

	api.POST("/checkout", checkoutH.Post)
	api.GET("/orders/track", trackH.Track)
	api.GET("/orders/track/challan.pdf", trackH.Challan)

	api.POST("/payments/razorpay/start", payH.Start)
	api.POST("/payments/razorpay/verify", payH.Verify)
	api.POST("/payments/razorpay/failure", payH.Failure)
	api.GET("/payments/manual", payH.Manual)
	api.POST("/webhooks/razorpay", payH.Webhook)

	api.POST("/auth/signup", authH.Signup)
	api.POST("/auth/login", authH.Login)
	api.POST("/auth/logout", authH.Logout)
	api.GET("/auth/me", authH.Me)

	account := api.Group("/account", middleware.RequireAuth())
	{
		account.GET("/orders", accountH.Orders)
		account.GET("/orders/:number", accountH.Order)
		account.POST("/password", accountH.ChangePassword)
	}

	adm := api.Group("/admin", middleware.RequireAdmin())
	{
		dashH := admin.NewDashboardHandler(dashSvc)
		adm.GET("/dashboard", dashH.Get)

		catH := admin.NewCatalogHandler(catalogAdmin, flashCK, log)
		adm.GET("/categories", catH.ListCategories)
		adm.POST("/categories", catH.CreateCategory)
		adm.PUT("/categories/:id", catH.UpdateCategory)
		adm.DELETE("/categories/:id", catH.DeleteCategory)

		adm.GET("/products", catH.ListProducts)
		adm.POST("/products", catH.CreateProduct)
		adm.GET("/products/:id", catH.GetProduct)
		adm.PUT("/products/:id", catH.UpdateProduct)
		adm.DELETE("/products/:id", catH.DeleteProduct)
		adm.POST("/products/:id/image", catH.ProductImage)

		adm.GET("/gift-boxes", catH.ListGiftBoxes)
		adm.POST("/gift-boxes", catH.CreateGiftBox)
		adm.GET("/gift-boxes/:id", catH.GetGiftBox)
		adm.PUT("/gift-boxes/:id", catH.UpdateGiftBox)
		adm.DELETE("/gift-boxes/:id", catH.DeleteGiftBox)
		adm.POST("/gift-boxes/:id/image", catH.GiftBoxImage)

		ordH := admin.NewOrdersHandler(orderRepo, orderAdmin, paySvc, refundSvc, siteRepo, flashCK, log)
		adm.GET("/orders", ordH.List)
		adm.GET("/orders/:id", ordH.Detail)
		adm.POST("/orders/:id/actions/:action", ordH.Action)
		adm.POST("/orders/:id/refund", ordH.Refund)
		adm.GET("/orders/:id/challan.pdf", ordH.Challan)

		custH := admin.NewCustomersHandler(customerRepo, orderRepo, flashCK)
		adm.GET("/customers", custH.List)
		adm.GET("/customers/:id", custH.Detail)
		adm.PUT("/customers/:id", custH.Update)

		contH := admin.NewContentHandler(siteRepo, noticeRepo, feedbackRepo, d.Storage, flashCK, log)
		adm.GET("/site", contH.GetSite)
		adm.PUT("/site", contH.PutSite)
		adm.POST("/site/banner", contH.UploadBanner)
		adm.GET("/notices", contH.ListNotices)
		adm.POST("/notices", contH.CreateNotice)
		adm.PUT("/notices/:id", contH.UpdateNotice)
		adm.DELETE("/notices/:id", contH.DeleteNotice)
		adm.GET("/feedback", contH.ListFeedback)
		adm.POST("/feedback/:id/approve", contH.ApproveFeedback)
		adm.POST("/feedback/:id/hide", contH.HideFeedback)
		adm.DELETE("/feedback/:id", contH.DeleteFeedback)

		psH := admin.NewPaymentSettingsHandler(paySettings, flashCK, log)
		adm.GET("/payment-settings", psH.Get)
		adm.PUT("/payment-settings", psH.Put)

		expH := admin.NewExportsHandler(exports.New(catalogRepo, orderRepo))
		adm.GET("/exports/products.xlsx", expH.Products)
		adm.GET("/exports/orders.xlsx", expH.Orders)

		liveH := admin.NewLiveHandler(d.Hub, log)
		adm.GET("/live", liveH.Stream)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found.", "request_id": middleware.GetRequestID(c)})
	})
	return r
}

func health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		out := gin.H{"status": "ok", "db": "ok"}
		status := http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			out["db"], out["status"] = "down", "degraded"
			status = http.StatusServiceUnavailable
		}
		if rdb != nil {
			out["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				// cache is optional
				out["redis"] = "down"
			}
		}
		c.JSON(status, out)
	}
}
