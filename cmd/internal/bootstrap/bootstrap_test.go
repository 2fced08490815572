package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedback-ai/config"
	"feedback-ai/eventbus"
)

func TestBuildWithSQLStore(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.StorageDriverSQL
	cfg.Storage.DatabaseURL = "file:bootstrap_build?mode=memory&cache=shared"
	cfg.Gemini.APIKey = "test-key"

	app, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close(context.Background())

	assert.NotNil(t, app.Submission)
	assert.NotNil(t, app.Admin)
	require.NotNil(t, app.HealthCheck)
	assert.NoError(t, app.HealthCheck(context.Background()))

	items, err := app.Admin.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBuildFailsWithoutAPIKey(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.StorageDriverSQL
	cfg.Storage.DatabaseURL = "file:bootstrap_nokey?mode=memory&cache=shared"
	cfg.Gemini.APIKey = ""

	_, err := Build(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNewPublisherDisabledWithoutBrokers(t *testing.T) {
	p := newPublisher(config.KafkaConfig{Topic: "t"})
	assert.IsType(t, eventbus.NoopPublisher{}, p)
}
