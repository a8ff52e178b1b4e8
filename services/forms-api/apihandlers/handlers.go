package apihandlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	formsDB "github.com/finnscodingadventure/digilizeforms/pkg/db/forms"
	userDB "github.com/finnscodingadventure/digilizeforms/pkg/db/users"
	"github.com/finnscodingadventure/digilizeforms/pkg/forms"
	"github.com/finnscodingadventure/digilizeforms/pkg/session"
)

func HealthCheckHandle(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type HttpEndpoints struct {
	formsDBConn    *formsDB.FormsDBService
	userDBConn     *userDB.UserDBService
	authGateway    *session.DBGateway
	publicStore    *forms.Store
	tokenSignKey   string
	tokenExpiresIn time.Duration
}

func NewHTTPHandler(
	tokenSignKey string,
	tokenExpiresIn time.Duration,
	formsDBConn *formsDB.FormsDBService,
	userDBConn *userDB.UserDBService,
	authGateway *session.DBGateway,
	publicStore *forms.Store,
) *HttpEndpoints {
	return &HttpEndpoints{
		tokenSignKey:   tokenSignKey,
		tokenExpiresIn: tokenExpiresIn,
		formsDBConn:    formsDBConn,
		userDBConn:     userDBConn,
		authGateway:    authGateway,
		publicStore:    publicStore,
	}
}
