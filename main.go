package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"cakeshop/internal/cache"
	"cakeshop/internal/config"
	"cakeshop/internal/database"
	"cakeshop/internal/handlers"
	"cakeshop/internal/mailer"
	"cakeshop/internal/middleware"
	"cakeshop/internal/payment"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureCakeIndexes(db); err != nil {
		log.Printf("cake index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureCouponIndexes(db); err != nil {
		log.Printf("coupon index warning: %v", err)
	}
	if err := database.EnsureCounterIndexes(db); err != nil {
		log.Printf("counter index warning: %v", err)
	}
	if err := database.EnsureReviewIndexes(db); err != nil {
		log.Printf("review index warning: %v", err)
	}
	if err := database.EnsureWishlistIndexes(db); err != nil {
		log.Printf("wishlist index warning: %v", err)
	}

	gateway := payment.NewRazorpayGateway(config.AppEnv.RazorpayKeyID, config.AppEnv.RazorpayKeySecret)

	var mail mailer.Mailer = mailer.LogMailer{}
	if config.AppEnv.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(
			config.AppEnv.SMTPHost,
			config.AppEnv.SMTPPort,
			config.AppEnv.SMTPUser,
			config.AppEnv.SMTPPass,
			config.AppEnv.MailFrom,
		)
	}

	var store cache.Store = cache.Disabled{}
	if config.AppEnv.RedisAddr != "" {
		store = cache.NewRedisStore(config.AppEnv.RedisAddr, config.AppEnv.RedisPassword)
	}

	r := gin.Default()

	r.POST("/auth/register", handlers.Register(db))
	r.POST("/auth/login", handlers.Login(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.GET("/auth/me", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.GetMe(db))
	r.POST("/auth/refresh", handlers.Refresh(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))
	r.POST("/auth/logout", handlers.Logout(db))

	r.POST("/admin/login", handlers.AdminLogin(
		db,
		config.AppEnv.JWTSecret,
		config.AppEnv.AccessTokenTTL,
		config.AppEnv.RefreshTokenTTL,
	))

	r.GET("/cakes", handlers.GetCakes(db))
	r.GET("/cakes/featured", handlers.GetFeaturedCakes(db))
	r.GET("/cakes/:slug", handlers.GetCakeBySlug(db))
	r.GET("/cakes/:slug/reviews", handlers.GetCakeReviews(db))
	r.GET("/categories", handlers.GetCategories(db))
	r.GET("/content/home", handlers.GetHomeContent(db, store))

	// Razorpay calls this; authenticated by the webhook signature, not
	// by a session.
	r.POST("/payments/webhook", handlers.PaymentWebhook(db, mail, config.AppEnv.RazorpayWebhookSecret))

	userAuth := middleware.UserAuth(config.AppEnv.JWTSecret)

	r.POST("/orders", userAuth, handlers.CreateOrder(db, gateway))
	r.GET("/orders", userAuth, handlers.GetMyOrders(db))
	r.GET("/orders/:id", userAuth, handlers.GetMyOrder(db))
	r.POST("/payments/verify", userAuth, handlers.VerifyPayment(db, gateway, mail, config.AppEnv.RazorpayKeySecret))
	r.POST("/coupons/validate", userAuth, handlers.ValidateCoupon(db))
	r.POST("/cakes/:slug/reviews", userAuth, handlers.CreateCakeReview(db))
	r.DELETE("/cakes/:slug/reviews", userAuth, handlers.DeleteCakeReview(db))

	user := r.Group("/user")
	user.Use(userAuth)
	{
		user.GET("/addresses", handlers.GetUserAddresses(db))
		user.POST("/addresses", handlers.CreateUserAddress(db))
		user.PUT("/addresses/:id", handlers.UpdateUserAddress(db))
		user.DELETE("/addresses/:id", handlers.DeleteUserAddress(db))

		user.GET("/wishlist", handlers.GetWishlist(db))
		user.POST("/wishlist/:cakeId", handlers.AddToWishlist(db))
		user.DELETE("/wishlist/:cakeId", handlers.RemoveFromWishlist(db))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/cakes", handlers.GetAllCakes(db))
		admin.POST("/cakes", handlers.CreateCake(db))
		admin.PUT("/cakes/:id", handlers.UpdateCake(db))
		admin.DELETE("/cakes/:id", handlers.DeleteCake(db))

		admin.GET("/categories", handlers.GetAllCategories(db))
		admin.POST("/categories", handlers.CreateCategory(db))
		admin.PUT("/categories/:id", handlers.UpdateCategory(db))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(db))

		admin.GET("/coupons", handlers.GetAllCoupons(db))
		admin.POST("/coupons", handlers.CreateCoupon(db))
		admin.PUT("/coupons/:id", handlers.UpdateCoupon(db))
		admin.DELETE("/coupons/:id", handlers.DeleteCoupon(db))

		admin.GET("/orders", handlers.GetAllOrders(db))
		admin.PATCH("/orders/:id/status", handlers.UpdateOrderStatus(db))

		admin.GET("/users", handlers.GetAllUsers(db))

		admin.GET("/settings", handlers.GetSettings(db))
		admin.PUT("/settings", handlers.UpdateSettings(db, store))
		admin.PUT("/content/home", handlers.UpdateHomeContent(db, store))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
