package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, BaseURL, config.BaseURL)
	assert.Equal(t, 10*time.Second, config.Timeout)
	assert.Equal(t, 3, config.MaxRetries)
	assert.NoError(t, config.Validate())
}

func TestConfig_Validate_BadURL(t *testing.T) {
	config := DefaultConfig().WithBaseURL("not a url")

	assert.Error(t, config.Validate())
}

func TestConfig_Validate_MissingURL(t *testing.T) {
	config := DefaultConfig()
	config.BaseURL = ""

	assert.Error(t, config.Validate())
}

func TestConfig_Chaining(t *testing.T) {
	creds := &Credentials{APIKey: "key", SecretKey: "secret"}
	config := DefaultConfig().
		WithBaseURL("https://example.com").
		WithCredentials(creds).
		WithTimeout(5 * time.Second)

	require.NotNil(t, config.Credentials)
	assert.Equal(t, "https://example.com", config.BaseURL)
	assert.Equal(t, "key", config.Credentials.APIKey)
	assert.Equal(t, 5*time.Second, config.Timeout)
}
