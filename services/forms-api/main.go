package main

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/finnscodingadventure/digilizeforms/pkg/forms"
	"github.com/finnscodingadventure/digilizeforms/pkg/session"
	"github.com/finnscodingadventure/digilizeforms/pkg/sheets"
	"github.com/finnscodingadventure/digilizeforms/services/forms-api/apihandlers"
)

var conf FormsApiConfig

func main() {

	// Start webserver
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     conf.GinConfig.AllowOrigins,
		AllowMethods:     []string{"POST", "GET", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Content-Length"},
		ExposeHeaders:    []string{"Authorization", "Content-Type", "Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var sink sheets.Sink
	if conf.SheetsConfig.RootURL != "" {
		sink = conf.SheetsConfig
	}

	// shared store serving the anonymous routes
	publicStore := forms.NewStore(formsDBService, sink, forms.DEFAULT_FETCH_TIMEOUT)

	authGateway := session.NewDBGateway(
		userDBService,
		nil,
		conf.UserManagementConfig.UserJWTConfig.SignKey,
		conf.UserManagementConfig.UserJWTConfig.ExpiresIn,
	)

	// Add handlers
	router.GET("/", apihandlers.HealthCheckHandle)
	v1Root := router.Group("/v1")

	v1APIHandlers := apihandlers.NewHTTPHandler(
		conf.UserManagementConfig.UserJWTConfig.SignKey,
		conf.UserManagementConfig.UserJWTConfig.ExpiresIn,
		formsDBService,
		userDBService,
		authGateway,
		publicStore,
	)
	v1APIHandlers.AddAuthAPI(v1Root)
	v1APIHandlers.AddProfileAPI(v1Root)
	v1APIHandlers.AddFormsAPI(v1Root)
	v1APIHandlers.AddPublicAPI(v1Root)

	// Start the server
	slog.Info("Starting Forms API", slog.String("port", conf.GinConfig.Port))
	if err := router.Run(":" + conf.GinConfig.Port); err != nil {
		slog.Error("Exited Forms API", slog.String("error", err.Error()))
		return
	}
}
