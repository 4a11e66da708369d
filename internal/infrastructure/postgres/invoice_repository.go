package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/precifica/backend/internal/domain"
)

//go:embed schema.sql
var schema string

// Connect opens a pgx pool against the given URL and verifies connectivity.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return pool, nil
}

// InvoiceRepository persists invoices and their priced rows in postgres.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

// EnsureSchema creates the invoice tables when they do not exist yet.
func (r *InvoiceRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// Save upserts the invoice header and replaces its priced rows in one
// transaction, so a re-imported invoice never mixes rows from two imports.
func (r *InvoiceRepository) Save(ctx context.Context, invoice *domain.Invoice, priced []domain.PricedProduct) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (key, number, issue_date, supplier, total, item_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO UPDATE SET
			number = EXCLUDED.number,
			issue_date = EXCLUDED.issue_date,
			supplier = EXCLUDED.supplier,
			total = EXCLUDED.total,
			item_count = EXCLUDED.item_count
	`, invoice.Key, invoice.Number, invoice.IssueDate, invoice.Supplier,
		invoice.Total.String(), invoice.ItemCount)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_products WHERE invoice_key = $1`, invoice.Key); err != nil {
		return err
	}

	for position, p := range priced {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoice_products (
				invoice_key, position, code, description, ncm, cfop, unit,
				quantity, unit_price, line_total,
				icms_base, icms_value, icms_rate,
				ipi_base, ipi_value, ipi_rate,
				net_cost, price_xapuri, price_epita, rounding,
				size, color
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
		`, invoice.Key, position, p.Code, p.Description, p.NCM, p.CFOP, p.Unit,
			p.Quantity.String(), p.UnitPrice.String(), p.LineTotal.String(),
			p.ICMSBase.String(), p.ICMSValue.String(), p.ICMSRate.String(),
			p.IPIBase.String(), p.IPIValue.String(), p.IPIRate.String(),
			p.NetCost.String(), p.PriceXapuri.String(), p.PriceEpita.String(), p.Rounding.String(),
			p.Size, p.Color)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByKey loads an invoice header and its raw line items.
func (r *InvoiceRepository) GetByKey(ctx context.Context, key string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	var total string

	err := r.pool.QueryRow(ctx, `
		SELECT key, number, issue_date, supplier, total::text, item_count
		FROM invoices WHERE key = $1
	`, key).Scan(&invoice.Key, &invoice.Number, &invoice.IssueDate, &invoice.Supplier, &total, &invoice.ItemCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}
	invoice.Total = mustDecimal(total)

	priced, err := r.GetPriced(ctx, key)
	if err != nil {
		return nil, err
	}
	for _, p := range priced {
		invoice.Products = append(invoice.Products, p.RawProduct)
	}

	return &invoice, nil
}

// GetPriced loads the stored priced rows for an invoice key, in line order.
func (r *InvoiceRepository) GetPriced(ctx context.Context, key string) ([]domain.PricedProduct, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT code, description, ncm, cfop, unit,
			quantity::text, unit_price::text, line_total::text,
			icms_base::text, icms_value::text, icms_rate::text,
			ipi_base::text, ipi_value::text, ipi_rate::text,
			net_cost::text, price_xapuri::text, price_epita::text, rounding,
			size, color
		FROM invoice_products
		WHERE invoice_key = $1
		ORDER BY position
	`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var priced []domain.PricedProduct
	for rows.Next() {
		var p domain.PricedProduct
		var qty, unitPrice, lineTotal string
		var icmsBase, icmsValue, icmsRate string
		var ipiBase, ipiValue, ipiRate string
		var netCost, priceXapuri, priceEpita, rounding string

		if err := rows.Scan(
			&p.Code, &p.Description, &p.NCM, &p.CFOP, &p.Unit,
			&qty, &unitPrice, &lineTotal,
			&icmsBase, &icmsValue, &icmsRate,
			&ipiBase, &ipiValue, &ipiRate,
			&netCost, &priceXapuri, &priceEpita, &rounding,
			&p.Size, &p.Color,
		); err != nil {
			return nil, err
		}

		p.Quantity = mustDecimal(qty)
		p.UnitPrice = mustDecimal(unitPrice)
		p.LineTotal = mustDecimal(lineTotal)
		p.ICMSBase = mustDecimal(icmsBase)
		p.ICMSValue = mustDecimal(icmsValue)
		p.ICMSRate = mustDecimal(icmsRate)
		p.IPIBase = mustDecimal(ipiBase)
		p.IPIValue = mustDecimal(ipiValue)
		p.IPIRate = mustDecimal(ipiRate)
		p.NetCost = mustDecimal(netCost)
		p.PriceXapuri = mustDecimal(priceXapuri)
		p.PriceEpita = mustDecimal(priceEpita)
		if policy, err := domain.ParseRoundingPolicy(rounding); err == nil {
			p.Rounding = policy
		}

		priced = append(priced, p)
	}

	return priced, rows.Err()
}

// ListRecent returns up to limit invoice headers, newest first.
func (r *InvoiceRepository) ListRecent(ctx context.Context, limit int) ([]domain.Invoice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT key, number, issue_date, supplier, total::text, item_count
		FROM invoices
		ORDER BY issue_date DESC, key
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		var invoice domain.Invoice
		var total string
		if err := rows.Scan(&invoice.Key, &invoice.Number, &invoice.IssueDate,
			&invoice.Supplier, &total, &invoice.ItemCount); err != nil {
			return nil, err
		}
		invoice.Total = mustDecimal(total)
		invoices = append(invoices, invoice)
	}

	return invoices, rows.Err()
}

// mustDecimal parses a numeric column rendered as text; stored values were
// written by decimal.String so a parse failure means corrupt data, which we
// surface as zero rather than a panic in a read path.
func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
