package infra_test

import (
	"errors"
	"testing"
	"time"

	"distripos/internal/infra"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errGateway = errors.New("gateway caído")

func cbConProbe(openTimeout time.Duration) *infra.CircuitBreaker {
	return infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		OpenTimeout:      openTimeout,
	})
}

func TestCircuitBreaker_AbreTrasFallasConsecutivas(t *testing.T) {
	cb := cbConProbe(time.Hour)

	for i := 0; i < 3; i++ {
		assert.Equal(t, infra.CBClosed, cb.State())
		err := cb.Execute(func() error { return errGateway })
		assert.ErrorIs(t, err, errGateway)
	}
	assert.Equal(t, infra.CBOpen, cb.State())

	// abierto: fast-fail sin ejecutar fn
	ejecutado := false
	err := cb.Execute(func() error { ejecutado = true; return nil })
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
	assert.False(t, ejecutado)
}

func TestCircuitBreaker_UnExitoReseteaElConteo(t *testing.T) {
	cb := cbConProbe(time.Hour)

	require.Error(t, cb.Execute(func() error { return errGateway }))
	require.Error(t, cb.Execute(func() error { return errGateway }))
	require.NoError(t, cb.Execute(func() error { return nil }))

	// dos fallas más no alcanzan el umbral: el conteo arrancó de cero
	require.Error(t, cb.Execute(func() error { return errGateway }))
	require.Error(t, cb.Execute(func() error { return errGateway }))
	assert.Equal(t, infra.CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenCierraConExitos(t *testing.T) {
	cb := cbConProbe(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(func() error { return errGateway }))
	}
	require.Equal(t, infra.CBOpen, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, infra.CBHalfOpen, cb.State())

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, infra.CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, infra.CBClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenReabreConUnaFalla(t *testing.T) {
	cb := cbConProbe(10 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(func() error { return errGateway }))
	}
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, infra.CBHalfOpen, cb.State())

	require.Error(t, cb.Execute(func() error { return errGateway }))
	assert.Equal(t, infra.CBOpen, cb.State())
}
