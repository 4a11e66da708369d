package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/precifica/backend/config"
	"github.com/precifica/backend/internal/domain"
	"github.com/precifica/backend/internal/infrastructure/cache"
	"github.com/precifica/backend/internal/usecase"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe35170812345678000195550010000001231000001234" versao="4.00">
      <ide><nNF>123</nNF><dhEmi>2017-08-15T10:30:00-03:00</dhEmi></ide>
      <emit><xNome>Confeccoes Alfa LTDA</xNome></emit>
      <det nItem="1">
        <prod>
          <cProd>REF-2037-07</cProd>
          <xProd>CAMISA MASCULINA-12-AZUL TAM M</xProd>
          <uCom>UN</uCom>
          <qCom>1.0000</qCom>
          <vUnCom>10.00</vUnCom>
          <vProd>10.00</vProd>
        </prod>
      </det>
      <total><ICMSTot><vNF>10.00</vNF></ICMSTot></total>
    </infNFe>
  </NFe>
</nfeProc>`

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// memoryRepo is an in-memory InvoiceRepository for handler tests.
type memoryRepo struct {
	invoices map[string]*domain.Invoice
	priced   map[string][]domain.PricedProduct
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		invoices: make(map[string]*domain.Invoice),
		priced:   make(map[string][]domain.PricedProduct),
	}
}

func (r *memoryRepo) Save(ctx context.Context, invoice *domain.Invoice, priced []domain.PricedProduct) error {
	r.invoices[invoice.Key] = invoice
	r.priced[invoice.Key] = priced
	return nil
}

func (r *memoryRepo) GetByKey(ctx context.Context, key string) (*domain.Invoice, error) {
	invoice, ok := r.invoices[key]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	return invoice, nil
}

func (r *memoryRepo) GetPriced(ctx context.Context, key string) ([]domain.PricedProduct, error) {
	return r.priced[key], nil
}

func (r *memoryRepo) ListRecent(ctx context.Context, limit int) ([]domain.Invoice, error) {
	var out []domain.Invoice
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	return out, nil
}

// memoryQueue records enqueued jobs.
type memoryQueue struct {
	jobs []domain.IngestJob
}

func (q *memoryQueue) Enqueue(ctx context.Context, job domain.IngestJob) error {
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *memoryQueue) Dequeue(ctx context.Context) (*domain.IngestJob, error) { return nil, nil }

func (q *memoryQueue) MarkFailed(ctx context.Context, job domain.IngestJob, reason string) error {
	return nil
}

func setupTestRouter(t *testing.T) (*gin.Engine, *memoryRepo, *memoryQueue) {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}

	repo := newMemoryRepo()
	queue := &memoryQueue{}

	service := usecase.NewInvoiceService(repo, cache.NewInvoiceCache(), usecase.InvoiceServiceConfig{
		Defaults: domain.PricingParameters{
			EntryTaxPercent: decimal.NewFromInt(12),
			MarkupXapuri:    decimal.NewFromInt(160),
			MarkupEpita:     decimal.NewFromInt(130),
			Rounding:        domain.RoundNone,
		},
	})

	handler := NewHandler(service, queue)
	return SetupRouter(cfg, handler, zerolog.Nop()), repo, queue
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestImportInvoice(t *testing.T) {
	router, repo, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/invoices/import", sampleXML)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Invoice  domain.Invoice         `json:"invoice"`
		Products []domain.PricedProduct `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "35170812345678000195550010000001231000001234", resp.Invoice.Key)
	require.Len(t, resp.Products, 1)

	p := resp.Products[0]
	assert.True(t, p.NetCost.Equal(decimal.RequireFromString("11.20")), "net cost %s", p.NetCost)
	assert.True(t, p.PriceXapuri.Equal(decimal.RequireFromString("17.92")), "xapuri %s", p.PriceXapuri)
	assert.Equal(t, "07", p.Size)
	assert.Equal(t, "AZUL", p.Color)

	// Persisted through the repository.
	_, ok := repo.invoices[resp.Invoice.Key]
	assert.True(t, ok)
}

func TestImportInvoiceWithQueryOverrides(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodPost,
		"/api/v1/invoices/import?entry_tax=12&markup_xapuri=160&markup_epita=130&rounding=90", sampleXML)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Products []domain.PricedProduct `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.True(t, resp.Products[0].PriceXapuri.Equal(decimal.RequireFromString("18.90")),
		"xapuri %s", resp.Products[0].PriceXapuri)
}

func TestImportMalformedInvoice(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/invoices/import", "<recibo><valor>10</valor></recibo>")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestImportEmptyBody(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/invoices/import", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetInvoice(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	doRequest(router, http.MethodPost, "/api/v1/invoices/import", sampleXML)

	w := doRequest(router, http.MethodGet, "/api/v1/invoices/35170812345678000195550010000001231000001234", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetInvoiceNotFound(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/v1/invoices/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEnqueueInvoice(t *testing.T) {
	router, _, queue := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/invoices/enqueue", sampleXML)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, sampleXML, queue.jobs[0].XML)
	assert.NotEmpty(t, queue.jobs[0].ID)
}

func TestReviewColumns(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	doRequest(router, http.MethodPost, "/api/v1/invoices/import", sampleXML)

	w := doRequest(router, http.MethodGet,
		"/api/v1/invoices/35170812345678000195550010000001231000001234/review", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Columns []usecase.ProfitColumns `json:"columns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Columns, 1)
	assert.Equal(t, "REF-2037-07", resp.Columns[0].Code)
}

func TestPreviewPricing(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	body := `{
		"products": [{"code": "A-01", "description": "CAMISETA BRANCA GG", "unitPrice": "10.00"}],
		"params": {
			"entryTaxPercent": "12",
			"markupXapuri": "160",
			"markupEpita": "130",
			"rounding": "90"
		}
	}`

	w := doRequest(router, http.MethodPost, "/api/v1/pricing/preview", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Products []domain.PricedProduct `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Products, 1)
	assert.True(t, resp.Products[0].PriceXapuri.Equal(decimal.RequireFromString("18.90")))
	assert.Equal(t, "GG", resp.Products[0].Size)
}

func TestTraceSize(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/tools/size-trace",
		`{"description": "CAMISA MASCULINA-12-AZUL TAM M"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Size  string                  `json:"size"`
		Color string                  `json:"color"`
		Trace []usecase.SizeRuleTrace `json:"trace"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "12", resp.Size)
	assert.Equal(t, "AZUL", resp.Color)
	require.NotEmpty(t, resp.Trace)
	assert.True(t, resp.Trace[len(resp.Trace)-1].Accepted)
}

func TestCORSPreflightIsHandled(t *testing.T) {
	router, _, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/invoices/import", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
