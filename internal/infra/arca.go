package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ComprobanteFiscal is the authorization returned by the tax authority for
// one voucher.
type ComprobanteFiscal struct {
	CAE             string
	CAEVencimiento  time.Time // vto_cae, day precision
	NroComprobante  string    // "NNNNN-NNNNNNNN"
	TipoComprobante string
}

// FacturacionGateway is the external fiscal-authority boundary the sale
// engine depends on. A sale that requests invoicing is never persisted
// without the CAE this call returns.
type FacturacionGateway interface {
	Emitir(ctx context.Context, total decimal.Decimal, cuitCliente *string) (*ComprobanteFiscal, error)
}

// arcaRequest is the wire payload sent to the ARCA service.
type arcaRequest struct {
	Total       decimal.Decimal `json:"total"`
	CuitCliente *string         `json:"cuit_cliente,omitempty"`
	CuitEmisor  string          `json:"cuit_emisor,omitempty"`
}

// arcaResponse is the wire response; Data is present only on success.
type arcaResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    *struct {
		CAE             string `json:"cae"`
		VtoCAE          string `json:"vto_cae"` // YYYY-MM-DD
		NroComprobante  string `json:"nro_comprobante"`
		TipoComprobante string `json:"tipo_comprobante"`
	} `json:"data"`
}

// ARCAClient talks to the tax-authority HTTP service (real or simulated).
// Calls go through a circuit breaker so a dead gateway fast-fails sale
// creation instead of hanging it for the full timeout on every request.
type ARCAClient struct {
	baseURL    string
	cuitEmisor string
	httpClient *http.Client
	cb         *CircuitBreaker
}

func NewARCAClient(baseURL, cuitEmisor string, cb *CircuitBreaker) *ARCAClient {
	return &ARCAClient{
		baseURL:    baseURL,
		cuitEmisor: cuitEmisor,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cb:         cb,
	}
}

// Emitir sends a POST /facturar and returns the authorized voucher.
// A {success:false} body is a rejection, not a transport failure, and does
// not trip the breaker.
func (c *ARCAClient) Emitir(ctx context.Context, total decimal.Decimal, cuitCliente *string) (*ComprobanteFiscal, error) {
	body, err := json.Marshal(arcaRequest{Total: total, CuitCliente: cuitCliente, CuitEmisor: c.cuitEmisor})
	if err != nil {
		return nil, fmt.Errorf("arca: marshal payload: %w", err)
	}

	var result arcaResponse
	callErr := c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/facturar", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("arca: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("arca: gateway unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("arca: gateway returned %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&result)
	})
	if callErr != nil {
		return nil, callErr
	}

	if !result.Success || result.Data == nil {
		if result.Error == "" {
			result.Error = "solicitud rechazada sin motivo"
		}
		return nil, fmt.Errorf("arca: comprobante rechazado: %s", result.Error)
	}

	vto, err := time.Parse("2006-01-02", result.Data.VtoCAE)
	if err != nil {
		return nil, fmt.Errorf("arca: vto_cae inválido %q: %w", result.Data.VtoCAE, err)
	}

	return &ComprobanteFiscal{
		CAE:             result.Data.CAE,
		CAEVencimiento:  vto,
		NroComprobante:  result.Data.NroComprobante,
		TipoComprobante: result.Data.TipoComprobante,
	}, nil
}
