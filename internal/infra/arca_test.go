package infra_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"distripos/internal/infra"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newARCA(t *testing.T, handler http.HandlerFunc) (*infra.ARCAClient, *infra.CircuitBreaker) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cb := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	return infra.NewARCAClient(srv.URL, "30700000000", cb), cb
}

func TestARCAClient_EmitirOK(t *testing.T) {
	var recibido map[string]any
	client, _ := newARCA(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/facturar", r.URL.Path)
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		require.NoError(t, dec.Decode(&recibido))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"cae": "75123456789012",
				"vto_cae": "2026-09-15",
				"nro_comprobante": "00003-00001234",
				"tipo_comprobante": "FACTURA_B"
			}
		}`))
	})

	cuit := "20345678901"
	comp, err := client.Emitir(context.Background(), decimal.RequireFromString("400.00"), &cuit)
	require.NoError(t, err)

	assert.Equal(t, "75123456789012", comp.CAE)
	assert.Equal(t, "00003-00001234", comp.NroComprobante)
	assert.Equal(t, "FACTURA_B", comp.TipoComprobante)
	assert.Equal(t, "2026-09-15", comp.CAEVencimiento.Format("2006-01-02"))

	assert.Equal(t, "400", recibido["total"].(json.Number).String())
	assert.Equal(t, "20345678901", recibido["cuit_cliente"])
}

func TestARCAClient_EmitirOK_SinCuit(t *testing.T) {
	client, _ := newARCA(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		// consumidor final: el cuit no viaja
		_, tiene := payload["cuit_cliente"]
		assert.False(t, tiene)

		_, _ = w.Write([]byte(`{"success":true,"data":{"cae":"75000000000001","vto_cae":"2026-09-20","nro_comprobante":"00003-00000001","tipo_comprobante":"FACTURA_B"}}`))
	})

	_, err := client.Emitir(context.Background(), decimal.NewFromInt(100), nil)
	require.NoError(t, err)
}

func TestARCAClient_Rechazo(t *testing.T) {
	client, cb := newARCA(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"CUIT del cliente invalido"}`))
	})

	_, err := client.Emitir(context.Background(), decimal.NewFromInt(100), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CUIT del cliente invalido")

	// un rechazo de negocio no cuenta como falla de transporte
	assert.Equal(t, infra.CBClosed, cb.State())
}

func TestARCAClient_ErrorHTTP(t *testing.T) {
	client, _ := newARCA(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Emitir(context.Background(), decimal.NewFromInt(100), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestARCAClient_GatewayCaidoAbreElBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	srv.Close() // conexión rechazada desde el primer intento

	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{FailureThreshold: 2, SuccessThreshold: 1, OpenTimeout: 0})
	client := infra.NewARCAClient(srv.URL, "30700000000", cb)

	_, err := client.Emitir(context.Background(), decimal.NewFromInt(100), nil)
	require.Error(t, err)
	_, err = client.Emitir(context.Background(), decimal.NewFromInt(100), nil)
	require.Error(t, err)

	// dos fallas de transporte con umbral 2: abierto
	assert.Equal(t, infra.CBOpen, cb.State())
}

func TestARCAClient_VtoCAEInvalido(t *testing.T) {
	client, _ := newARCA(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"cae":"75000000000002","vto_cae":"15/09/2026","nro_comprobante":"00003-00000002","tipo_comprobante":"FACTURA_B"}}`))
	})

	_, err := client.Emitir(context.Background(), decimal.NewFromInt(100), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vto_cae")
}
