package cloudsql

import (
	"net/url"
	"strings"
	"testing"

	"github.com/STRATINT/fightintel/internal/config"
)

func TestDatabaseURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StorageConfig
		want    string
		wantErr bool
	}{
		{
			name: "explicit url wins",
			cfg:  config.StorageConfig{DatabaseURL: "sqlite://runs.db", CloudSQLInstance: "p:r:i"},
			want: "sqlite://runs.db",
		},
		{
			name: "nothing configured",
			cfg:  config.StorageConfig{},
			want: "",
		},
		{
			name:    "instance without user",
			cfg:     config.StorageConfig{CloudSQLInstance: "p:r:i", DBName: "fights"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DatabaseURL(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DatabaseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("DatabaseURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDatabaseURLForCloudSQL(t *testing.T) {
	raw, err := DatabaseURL(config.StorageConfig{
		CloudSQLInstance: "proj:us-central1:main",
		DBUser:           "fightintel",
		DBPassword:       "s3cret",
		DBName:           "fights",
	})
	if err != nil {
		t.Fatalf("DatabaseURL returned error: %v", err)
	}

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url %q: %v", raw, err)
	}
	if u.Scheme != "postgres" || u.Path != "/fights" {
		t.Errorf("unexpected url %q", raw)
	}
	if pw, _ := u.User.Password(); u.User.Username() != "fightintel" || pw != "s3cret" {
		t.Errorf("unexpected credentials in %q", raw)
	}
	if host := u.Query().Get("host"); host != "/cloudsql/proj:us-central1:main" {
		t.Errorf("host = %q", host)
	}
}

func TestConnectionInfoRedactsPassword(t *testing.T) {
	info := ConnectionInfo(config.StorageConfig{DatabaseURL: "postgres://user:hunter2@db:5432/fights"})
	if info["connection_type"] != "direct" {
		t.Errorf("connection_type = %q", info["connection_type"])
	}
	if strings.Contains(info["database_url"], "hunter2") {
		t.Errorf("password leaked: %q", info["database_url"])
	}

	if got := ConnectionInfo(config.StorageConfig{})["connection_type"]; got != "none" {
		t.Errorf("connection_type = %q, want none", got)
	}
}
