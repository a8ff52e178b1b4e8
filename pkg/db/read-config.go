package db

import (
	"fmt"
	"log/slog"
)

// DBConfigFromYamlObj converts the yaml representation of a DB config into
// the connection config used by the DB services.
func DBConfigFromYamlObj(yamlObj DBConfigYaml) DBConfig {
	if yamlObj.ConnectionStr == "" || yamlObj.Username == "" || yamlObj.Password == "" {
		slog.Error("couldn't read DB credentials")
		panic("couldn't read DB credentials")
	}
	uri := fmt.Sprintf(`mongodb%s://%s:%s@%s`, yamlObj.ConnectionPrefix, yamlObj.Username, yamlObj.Password, yamlObj.ConnectionStr)

	timeout := yamlObj.Timeout
	if timeout < 1 {
		timeout = 30
	}

	return DBConfig{
		URI:             uri,
		Timeout:         timeout,
		IdleConnTimeout: yamlObj.IdleConnTimeout,
		MaxPoolSize:     uint64(yamlObj.MaxPoolSize),
		DBNamePrefix:    yamlObj.DBNamePrefix,
	}
}
