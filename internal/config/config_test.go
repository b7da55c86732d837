package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite(t *testing.T) {
	cfg := NewConfig("/srv/journeyd")
	cfg.Server.Addr = ":9090"
	cfg.Server.AllowedOrigins = []string{"https://app.example.com"}
	cfg.Archive = ArchiveConfig{
		Type:     "s3",
		S3Bucket: "journey-snapshots",
		S3Prefix: "prod",
		S3Region: "eu-west-1",
	}

	m := &Manager{}
	var buf bytes.Buffer
	if err := m.Write(&buf, cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != cfg.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, cfg.BaseDir)
	}
	if got.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", got.Server.Addr)
	}
	if len(got.Server.AllowedOrigins) != 1 || got.Server.AllowedOrigins[0] != "https://app.example.com" {
		t.Errorf("AllowedOrigins = %v", got.Server.AllowedOrigins)
	}
	if got.Database.Type != "sqlite" || got.Database.DataDir != filepath.Join("/srv/journeyd", "data") {
		t.Errorf("Database = %+v", got.Database)
	}
	if got.Archive != cfg.Archive {
		t.Errorf("Archive = %+v, want %+v", got.Archive, cfg.Archive)
	}
}

func TestReadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journeyd.toml")

	content := `
base_dir = "/data/journeyd"
log_dir = "/data/journeyd/log"

[server]
addr = ":8000"

[database]
type = "memory"

[archive]
type = "none"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("ReadFromFile() error = %v", err)
	}
	if cfg.Database.Type != "memory" {
		t.Errorf("Database.Type = %q", cfg.Database.Type)
	}
	if cfg.Archive.Type != "none" {
		t.Errorf("Archive.Type = %q", cfg.Archive.Type)
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "journeyd.toml")
	cfg := NewConfig(dir)

	if err := Init(path, cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	// A second init must refuse to overwrite.
	if err := Init(path, cfg); err == nil {
		t.Error("Init() over existing config expected error")
	}
}
