package http

import (
	"github.com/gin-gonic/gin"

	"docqa/internal/bootstrap"
	"docqa/internal/transport/http/handler"
	"docqa/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLog(app.Logger),
		middleware.CORS(app.Config.App.CORSOrigins),
	)
	// Leave headroom over the file limit for the multipart envelope.
	router.MaxMultipartMemory = app.Config.Upload.MaxFileSize + 1<<20

	healthHandler := handler.NewHealthHandler(app.Config.App.Name, app.Config.App.Env, app.StartedAt, app)
	documentHandler := handler.NewDocumentHandler(app.Documents, app.Config.Upload.MaxFileSize, app.Logger)
	chatHandler := handler.NewChatHandler(app.Chat, app.Logger)

	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Check)

	router.POST("/upload", documentHandler.Upload)
	router.DELETE("/clear/:session_id", documentHandler.Clear)
	router.GET("/sessions", documentHandler.List)

	router.POST("/chat", chatHandler.Chat)
	router.POST("/summarize", chatHandler.Summarize)
	router.GET("/sessions/:session_id/history", chatHandler.History)

	return router
}
