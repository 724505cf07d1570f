package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rahul-J-IT/stream-app/internal/handler"
	"github.com/Rahul-J-IT/stream-app/pkg/constants"
)

// New builds the HTTP router.
func New(
	streams *handler.StreamHandler,
	socket *handler.SocketHandler,
	health *handler.HealthHandler,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(constants.PathHealth, health.Health)
	r.GET(constants.PathReady, health.Ready)

	api := r.Group(constants.PathStreams)
	{
		api.POST("", streams.CreateStream)
		api.GET("", streams.GetStreams)
		api.GET("/:id", streams.GetStream)
	}

	r.GET(constants.PathWS, socket.ServeWS)

	return r
}
