// =============================================================================
// Oficina Recibos - Postal Code Lookup
// =============================================================================
//
// Completes a client address from its CEP (Brazilian postal code) using a
// ViaCEP-compatible web service:
//
//   GET {base}/{8 digits}/json/
//
//   200 {"cep": "21540-500", "logradouro": "...", "bairro": "...",
//        "localidade": "...", "uf": "RJ"}
//   200 {"erro": true}                       (unknown code)
//
// ERRORS:
//   - input without exactly 8 digits     -> Validation
//   - "erro" in the response             -> NotFound
//   - transport, status or JSON failure  -> Connectivity
//
// Requests are never retried; the context and the client timeout bound how
// long a lookup may block.
//
// =============================================================================

package cep

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ginjaninja78/oficina-recibos/internal/idgen"
	"github.com/ginjaninja78/oficina-recibos/internal/logging"
	"github.com/ginjaninja78/oficina-recibos/pkg/apperror"
)

// Defaults for Client.
const (
	DefaultBaseURL = "https://viacep.com.br/ws"
	DefaultTimeout = 5 * time.Second
)

// codeDigits is the length of a CEP.
const codeDigits = 8

// maxBody caps the response size read from the service.
const maxBody = 64 << 10

// Address is the part of an address the service knows about.
type Address struct {
	PostalCode string `json:"cep"`
	Street     string `json:"logradouro"`
	District   string `json:"bairro"`
	City       string `json:"localidade"`
	State      string `json:"uf"`
}

// Lookuper resolves postal codes. *Client implements it.
type Lookuper interface {
	Lookup(ctx context.Context, code string) (Address, error)
}

// Client queries the postal code service.
type Client struct {
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// NewClient creates a client. An empty baseURL or zero timeout selects the
// defaults; log may be nil.
func NewClient(baseURL string, timeout time.Duration, log logging.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logging.OrNop(log),
	}
}

// response is the wire form of a lookup result.
type response struct {
	Address
	Erro json.RawMessage `json:"erro"`
}

// Lookup returns the address of a postal code. Punctuation in code is
// ignored; exactly eight digits must remain.
func (c *Client) Lookup(ctx context.Context, code string) (Address, error) {
	const op = "cep.lookup"

	digits := idgen.Digits(code)
	if len(digits) != codeDigits || strings.TrimSpace(code) == "" {
		return Address{}, apperror.NewValidationError(op, "invalid postal code",
			apperror.FieldError{Field: "postal_code", Message: fmt.Sprintf("must contain %d digits", codeDigits)})
	}

	url := fmt.Sprintf("%s/%s/json/", c.baseURL, digits)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Address{}, apperror.NewConnectivityError(op, fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debugf("looking up postal code %s", digits)
	resp, err := c.http.Do(req)
	if err != nil {
		return Address{}, apperror.NewConnectivityError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Address{}, apperror.NewConnectivityError(op, fmt.Errorf("unexpected status %s", resp.Status))
	}

	var body response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&body); err != nil {
		return Address{}, apperror.NewConnectivityError(op, fmt.Errorf("failed to decode response: %w", err))
	}
	if len(body.Erro) > 0 && string(body.Erro) != "false" && string(body.Erro) != "null" {
		return Address{}, apperror.NewNotFoundError(op, "postal code "+digits)
	}

	if body.PostalCode == "" {
		body.PostalCode = digits
	}
	return body.Address, nil
}
