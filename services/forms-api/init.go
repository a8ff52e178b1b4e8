package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v2"

	"github.com/finnscodingadventure/digilizeforms/pkg/db"
	"github.com/finnscodingadventure/digilizeforms/pkg/sheets"
	"github.com/finnscodingadventure/digilizeforms/pkg/user-management/pwhash"
	"github.com/finnscodingadventure/digilizeforms/pkg/utils"

	formsDB "github.com/finnscodingadventure/digilizeforms/pkg/db/forms"
	userDB "github.com/finnscodingadventure/digilizeforms/pkg/db/users"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "CONFIG_FILE_PATH"

	// Variables to override "secrets" in the config file
	ENV_FORMS_DB_USERNAME = "FORMS_DB_USERNAME"
	ENV_FORMS_DB_PASSWORD = "FORMS_DB_PASSWORD"
	ENV_USER_DB_USERNAME  = "USER_DB_USERNAME"
	ENV_USER_DB_PASSWORD  = "USER_DB_PASSWORD"

	ENV_USER_JWT_SIGN_KEY = "USER_JWT_SIGN_KEY"
	ENV_SHEETS_API_KEY    = "SHEETS_API_KEY"
)

type FormsApiConfig struct {
	// Logging configs
	Logging utils.LoggerConfig `json:"logging" yaml:"logging"`

	// Gin configs
	GinConfig struct {
		DebugMode    bool     `json:"debug_mode" yaml:"debug_mode"`
		AllowOrigins []string `json:"allow_origins" yaml:"allow_origins"`
		Port         string   `json:"port" yaml:"port"`
	} `json:"gin_config" yaml:"gin_config"`

	// user management configs
	UserManagementConfig struct {
		PWHashing struct {
			Argon2Memory      uint32 `json:"argon2_memory" yaml:"argon2_memory"`
			Argon2Iterations  uint32 `json:"argon2_iterations" yaml:"argon2_iterations"`
			Argon2Parallelism uint8  `json:"argon2_parallelism" yaml:"argon2_parallelism"`
		} `json:"pw_hashing" yaml:"pw_hashing"`
		UserJWTConfig struct {
			SignKey   string        `json:"sign_key" yaml:"sign_key"`
			ExpiresIn time.Duration `json:"expires_in" yaml:"expires_in"`
		} `json:"user_jwt_config" yaml:"user_jwt_config"`
	} `json:"user_management_config" yaml:"user_management_config"`

	// DB configs
	DBConfigs struct {
		FormsDB db.DBConfigYaml `json:"forms_db" yaml:"forms_db"`
		UserDB  db.DBConfigYaml `json:"user_db" yaml:"user_db"`
	} `json:"db_configs" yaml:"db_configs"`

	// Spreadsheet forwarding config; forwarding is disabled when the
	// root url is left empty.
	SheetsConfig sheets.ClientConfig `json:"sheets_config" yaml:"sheets_config"`
}

var (
	formsDBService *formsDB.FormsDBService
	userDBService  *userDB.UserDBService
)

func init() {
	// Read config from file
	yamlFile, err := os.ReadFile(os.Getenv(ENV_CONFIG_FILE_PATH))
	if err != nil {
		panic(err)
	}

	err = yaml.UnmarshalStrict(yamlFile, &conf)
	if err != nil {
		panic(err)
	}

	// Init logger:
	utils.InitLogger(
		conf.Logging.LogLevel,
		conf.Logging.IncludeSrc,
		conf.Logging.LogToFile,
		conf.Logging.Filename,
		conf.Logging.MaxSize,
		conf.Logging.MaxAge,
		conf.Logging.MaxBackups,
		conf.Logging.CompressOldLogs,
	)

	// Override secrets from environment variables
	secretsOverride()

	// Init DBs
	initDBs()

	if !conf.GinConfig.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// init argon2
	pwhash.InitArgonParams(
		conf.UserManagementConfig.PWHashing.Argon2Memory,
		conf.UserManagementConfig.PWHashing.Argon2Iterations,
		conf.UserManagementConfig.PWHashing.Argon2Parallelism,
	)
}

func secretsOverride() {
	if dbUsername := os.Getenv(ENV_FORMS_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.FormsDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_FORMS_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.FormsDB.Password = dbPassword
	}

	if dbUsername := os.Getenv(ENV_USER_DB_USERNAME); dbUsername != "" {
		conf.DBConfigs.UserDB.Username = dbUsername
	}

	if dbPassword := os.Getenv(ENV_USER_DB_PASSWORD); dbPassword != "" {
		conf.DBConfigs.UserDB.Password = dbPassword
	}

	if signKey := os.Getenv(ENV_USER_JWT_SIGN_KEY); signKey != "" {
		conf.UserManagementConfig.UserJWTConfig.SignKey = signKey
	}

	if apiKey := os.Getenv(ENV_SHEETS_API_KEY); apiKey != "" {
		conf.SheetsConfig.APIKey = apiKey
	}
}

func initDBs() {
	var err error
	formsDBService, err = formsDB.NewFormsDBService(db.DBConfigFromYamlObj(conf.DBConfigs.FormsDB))
	if err != nil {
		slog.Error("Error connecting to forms DB", slog.String("error", err.Error()))
		panic(err)
	}

	userDBService, err = userDB.NewUserDBService(db.DBConfigFromYamlObj(conf.DBConfigs.UserDB))
	if err != nil {
		slog.Error("Error connecting to user DB", slog.String("error", err.Error()))
		panic(err)
	}
}
