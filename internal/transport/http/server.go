package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vishnuvardhan833199/chattify/internal/auth"
	"github.com/vishnuvardhan833199/chattify/internal/config"
	"github.com/vishnuvardhan833199/chattify/internal/media"
	"github.com/vishnuvardhan833199/chattify/internal/relay"
	"github.com/vishnuvardhan833199/chattify/internal/service/calls"
	"github.com/vishnuvardhan833199/chattify/internal/service/messages"
	"github.com/vishnuvardhan833199/chattify/internal/store"
)

// NewServer builds the HTTP server: REST API, static uploads, and the
// WebSocket endpoint feeding the relay.
func NewServer(
	r *relay.Relay,
	authService *auth.Service,
	st store.Store,
	msgSvc *messages.Service,
	callSvc *calls.Service,
	mediaStore *media.Store,
	cfg *config.Config,
	logger *zerolog.Logger,
) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	authH := NewAuthHandlers(authService, st, logger)
	userH := NewUserHandlers(msgSvc, st, mediaStore, r, logger)
	msgH := NewMessageHandlers(msgSvc, logger)
	callH := NewCallHandlers(callSvc, r, logger)

	router.GET("/healthz", func(c *gin.Context) {
		c.String(stdhttp.StatusOK, "ok")
	})
	router.Static(media.PublicPrefix, mediaStore.Dir())
	router.GET("/ws", gin.WrapH(NewWSHandler(r, authService, cfg.WSSignalLimit, logger)))

	api := router.Group("/api")
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)

	protected := api.Group("", AuthMiddleware(authService, logger))
	protected.GET("/auth/me", authH.Me)
	protected.GET("/users", userH.List)
	protected.GET("/users/online", userH.Online)
	protected.PUT("/users/avatar", userH.UpdateAvatar)
	protected.GET("/messages/:id", msgH.Conversation)
	protected.POST("/messages/:id", msgH.Send)
	protected.POST("/calls", callH.Start)
	protected.POST("/calls/:id/finish", callH.Finish)
	protected.GET("/calls", callH.History)
	protected.GET("/calls/active", callH.Active)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
