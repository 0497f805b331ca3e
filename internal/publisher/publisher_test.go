package publisher

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/aristath/tradecopy-relay/internal/domain"
)

func discardLogger() zerolog.Logger { return zerolog.Nop() }

func TestConfigTopic(t *testing.T) {
	assert.Equal(t, "config/ACC1", ConfigTopic(domain.Account("ACC1")))
}

func TestTradeTopic(t *testing.T) {
	assert.Equal(t, "trade/M1/S1", TradeTopic(domain.Account("M1"), domain.Account("S1")))
}

func TestGlobalConfigTopic(t *testing.T) {
	assert.Equal(t, "config/global", GlobalConfigTopic())
}

func TestEnqueue_FullQueueReturnsBackpressure(t *testing.T) {
	p := New(nil, discardLogger(), Config{QueueCapacity: 1})
	require := assert.New(t)

	require.NoError(p.Enqueue("config/ACC1", map[string]string{"a": "b"}))
	err := p.Enqueue("config/ACC1", map[string]string{"a": "b"})
	require.ErrorIs(err, domain.ErrPublisherBackpressure)
}

func TestEnqueue_AfterCloseReturnsBackpressure(t *testing.T) {
	p := New(nil, discardLogger(), Config{QueueCapacity: 4})
	close(p.stop)
	p.closed = true

	err := p.Enqueue("config/ACC1", map[string]string{"a": "b"})
	assert.ErrorIs(t, err, domain.ErrPublisherBackpressure)
}
