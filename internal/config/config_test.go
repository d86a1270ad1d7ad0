package config

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "test_user")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "greeneats")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("SMTP_PORT", "2525")

	cfg := Load()

	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, "test_user", cfg.DBUser)
	assert.Equal(t, "greeneats", cfg.DBName)
	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, 2525, cfg.SMTPPort)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("APP_PORT", "")
	t.Setenv("SMTP_PORT", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestEnvInt_Invalid(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-number")
	assert.Equal(t, 587, envInt("SMTP_PORT", 587))
}

func TestLoad_MissingDBHost(t *testing.T) {
	// Load calls log.Fatal when DB_HOST is absent, so run it in a subprocess.
	if os.Getenv("BE_CRASHER") == "1" {
		os.Unsetenv("DB_HOST")
		Load()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestLoad_MissingDBHost")
	cmd.Env = append(os.Environ(), "BE_CRASHER=1", "DB_HOST=")
	err := cmd.Run()

	if e, ok := err.(*exec.ExitError); ok && !e.Success() {
		return
	}
	t.Fatalf("process ran with err %v, want exit status 1", err)
}
