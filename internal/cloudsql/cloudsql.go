package cloudsql

import (
	"fmt"
	"net/url"

	"github.com/STRATINT/fightintel/internal/config"
)

// DatabaseURL resolves the storage connection URL. An explicit DatabaseURL is
// returned as is. Otherwise, when a Cloud SQL instance is configured, a
// postgres URL over the Cloud Run socket mount is built. An empty result
// means no database is configured.
func DatabaseURL(cfg config.StorageConfig) (string, error) {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL, nil
	}
	if cfg.CloudSQLInstance == "" {
		return "", nil
	}

	if cfg.DBUser == "" || cfg.DBName == "" {
		return "", fmt.Errorf("DB_USER and DB_NAME must be set when using INSTANCE_CONNECTION_NAME")
	}

	// no password means IAM authentication
	user := url.User(cfg.DBUser)
	if cfg.DBPassword != "" {
		user = url.UserPassword(cfg.DBUser, cfg.DBPassword)
	}

	u := url.URL{
		Scheme: "postgres",
		User:   user,
		Path:   "/" + cfg.DBName,
		RawQuery: url.Values{
			"host":    {socketPath(cfg.CloudSQLInstance)},
			"sslmode": {"disable"},
		}.Encode(),
	}
	return u.String(), nil
}

// ConnectionInfo describes the resolved connection for logging, with any
// password redacted.
func ConnectionInfo(cfg config.StorageConfig) map[string]string {
	info := make(map[string]string)

	switch {
	case cfg.DatabaseURL != "":
		info["connection_type"] = "direct"
		info["database_url"] = redact(cfg.DatabaseURL)
	case cfg.CloudSQLInstance != "":
		info["connection_type"] = "cloud_sql"
		info["instance"] = cfg.CloudSQLInstance
		info["user"] = cfg.DBUser
		info["database"] = cfg.DBName
		info["socket_path"] = socketPath(cfg.CloudSQLInstance)
	default:
		info["connection_type"] = "none"
	}

	return info
}

func socketPath(instance string) string {
	return "/cloudsql/" + instance
}

func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
