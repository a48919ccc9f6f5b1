package mail

import (
	"testing"

	"github.com/SandipanKhanra/letschat/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestMailConfig() *config.MailConfig {
	return &config.MailConfig{
		Enabled:     true,
		Host:        "localhost",
		Port:        587,
		Encryption:  "starttls",
		FromAddress: "noreply@letschat.example",
		FromName:    "letschat",
	}
}

func getTestAppConfig() *config.AppConfig {
	return &config.AppConfig{
		Name: "letschat",
		URL:  "http://localhost:8080",
	}
}

func TestNewService(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		service, err := NewService(getTestMailConfig(), getTestAppConfig(), nil)
		require.NoError(t, err)
		assert.NotNil(t, service.client)
	})

	t.Run("missing from address", func(t *testing.T) {
		cfg := getTestMailConfig()
		cfg.FromAddress = ""

		_, err := NewService(cfg, getTestAppConfig(), nil)
		assert.Error(t, err)
	})

	t.Run("ssl encryption", func(t *testing.T) {
		cfg := getTestMailConfig()
		cfg.Encryption = "ssl"

		_, err := NewService(cfg, getTestAppConfig(), nil)
		assert.NoError(t, err)
	})
}
