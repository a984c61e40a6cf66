package internal

import (
	"net/http"

	"nodup/internal/controllers"
	"nodup/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/items", http.HandlerFunc(apiController.ReceiveItem))
	routers.Get("/top", http.HandlerFunc(apiController.GetTopUsers))
	routers.Get("/topics", http.HandlerFunc(apiController.GetTopTopics))
	routers.Get("/me", http.HandlerFunc(apiController.GetMe))
	return routers
}
