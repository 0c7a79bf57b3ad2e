package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires the public, guest-only and authenticated route
// groups. Logout stays outside the authenticated group: logging out an
// unauthenticated session must still redirect cleanly.
func registerRoutes(engine *gin.Engine, p Params) {
	engine.GET("/up", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	engine.GET("/posts", p.PostHandler.Index)
	engine.GET("/posts/:id", p.PostHandler.Show)

	engine.POST("/logout", p.AuthHandler.Logout)

	guest := engine.Group("", p.AuthMiddleware.RequireGuest())
	{
		guest.GET("/login", p.AuthHandler.ShowLogin)
		guest.POST("/login", p.AuthHandler.Login)
		guest.GET("/register", p.AuthHandler.ShowRegister)
		guest.POST("/register", p.AuthHandler.Register)
		guest.GET("/forgot-password", p.AuthHandler.ShowForgotPassword)
		guest.POST("/forgot-password", p.AuthHandler.ForgotPassword)
		guest.GET("/reset-password", p.AuthHandler.ShowResetPassword)
		guest.POST("/reset-password", p.AuthHandler.ResetPassword)
	}

	authed := engine.Group("", p.AuthMiddleware.RequireAuth())
	{
		authed.GET("/dashboard", p.AuthHandler.Dashboard)
		authed.GET("/email/verify", p.AuthHandler.VerificationNotice)
		authed.GET("/email/verify/:id/:hash", p.AuthHandler.VerifyEmail)
		authed.POST("/email/verify/resend", p.AuthHandler.ResendVerification)
	}
}
