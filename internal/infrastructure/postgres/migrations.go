package postgres

import (
	"context"
	"fmt"
)

// migrationStatements son idempotentes y corren en orden.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS counters (
		name TEXT PRIMARY KEY,
		value BIGINT NOT NULL DEFAULT 0 CHECK (value >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE OR REPLACE FUNCTION next_counter_value(p_name TEXT) RETURNS BIGINT
	LANGUAGE sql AS $$
		INSERT INTO counters (name, value) VALUES (p_name, 1)
		ON CONFLICT (name) DO UPDATE SET value = counters.value + 1, updated_at = now()
		RETURNING value;
	$$;`,
	`CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		company_name TEXT,
		email TEXT,
		phone TEXT,
		address TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS customers_email_key ON customers (lower(email)) WHERE email IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS services (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		options JSONB NOT NULL DEFAULT '{}'::jsonb,
		active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS finish_options (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'other'
			CHECK (category IN ('coating','cutting','binding','finishing','texture','special','other')),
		base_price NUMERIC(14,4) NOT NULL DEFAULT 0 CHECK (base_price >= 0),
		price_unit TEXT,
		active BOOLEAN NOT NULL DEFAULT true
	);`,
	`CREATE TABLE IF NOT EXISTS paper_types (
		name TEXT PRIMARY KEY,
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS paper_weights (
		gsm INT PRIMARY KEY CHECK (gsm > 0)
	);`,
	`CREATE TABLE IF NOT EXISTS size_presets (
		name TEXT PRIMARY KEY,
		width NUMERIC(10,3) NOT NULL,
		height NUMERIC(10,3) NOT NULL,
		unit TEXT NOT NULL,
		sort_order INT NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS estimates (
		id UUID PRIMARY KEY,
		estimate_number TEXT NOT NULL,
		customer_id UUID NOT NULL REFERENCES customers(id),
		service_id TEXT REFERENCES services(id),
		title TEXT NOT NULL,
		description TEXT,
		specifications JSONB NOT NULL,
		unit_price NUMERIC(14,4) NOT NULL CHECK (unit_price >= 0),
		quantity INT NOT NULL CHECK (quantity > 0),
		subtotal NUMERIC(14,2) NOT NULL,
		tax_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_amount NUMERIC(14,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'draft'
			CHECK (status IN ('draft','sent','viewed','approved','rejected','expired','converted')),
		priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low','medium','high','urgent')),
		version INT NOT NULL DEFAULT 1,
		is_current_version BOOLEAN NOT NULL DEFAULT true,
		parent_estimate_id UUID REFERENCES estimates(id),
		lineage_id UUID NOT NULL,
		converted_to_job_id UUID,
		customer_response TEXT,
		expires_at TIMESTAMPTZ,
		sent_at TIMESTAMPTZ,
		viewed_at TIMESTAMPTZ,
		responded_at TIMESTAMPTZ,
		created_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (estimate_number, version)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS estimates_one_current_per_lineage
		ON estimates (lineage_id) WHERE is_current_version;`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY,
		job_no TEXT NOT NULL UNIQUE,
		customer_id UUID NOT NULL REFERENCES customers(id),
		service_id TEXT REFERENCES services(id),
		estimate_id UUID REFERENCES estimates(id),
		title TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		priority TEXT NOT NULL DEFAULT 'medium' CHECK (priority IN ('low','medium','high','urgent')),
		quantity INT NOT NULL CHECK (quantity > 0),
		specifications JSONB,
		unit_price NUMERIC(14,4),
		estimate_price NUMERIC(14,2),
		estimated_cost NUMERIC(14,2),
		final_cost NUMERIC(14,2),
		final_price NUMERIC(14,2),
		estimate JSONB,
		invoiced BOOLEAN NOT NULL DEFAULT false,
		invoice_id UUID,
		invoice_no TEXT,
		due_date TIMESTAMPTZ,
		completed_at TIMESTAMPTZ,
		created_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS jobs_one_per_estimate ON jobs (estimate_id) WHERE estimate_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS jobs_customer_idx ON jobs (customer_id, created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY,
		invoice_no TEXT NOT NULL UNIQUE,
		customer_id UUID NOT NULL REFERENCES customers(id),
		subtotal NUMERIC(14,2) NOT NULL,
		tax_rate NUMERIC(7,4) NOT NULL DEFAULT 0,
		tax NUMERIC(14,2) NOT NULL DEFAULT 0,
		discount NUMERIC(14,2) NOT NULL DEFAULT 0,
		total NUMERIC(14,2) NOT NULL,
		grand_total NUMERIC(14,2) NOT NULL,
		amount_paid NUMERIC(14,2) NOT NULL DEFAULT 0,
		amount_due NUMERIC(14,2) NOT NULL,
		status TEXT NOT NULL DEFAULT 'issued' CHECK (status IN ('draft','issued','cancelled')),
		payment_status TEXT NOT NULL DEFAULT 'unpaid' CHECK (payment_status IN ('unpaid','partial','paid')),
		notes TEXT,
		due_date TIMESTAMPTZ,
		created_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CHECK (total = subtotal + tax - discount),
		CHECK (amount_due = total - amount_paid)
	);`,
	`CREATE TABLE IF NOT EXISTS invoice_line_items (
		id UUID PRIMARY KEY,
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		line_no INT NOT NULL DEFAULT 0,
		job_id UUID REFERENCES jobs(id),
		description TEXT NOT NULL,
		quantity INT NOT NULL CHECK (quantity > 0),
		unit_price NUMERIC(14,4) NOT NULL,
		total_price NUMERIC(14,2) NOT NULL,
		tax_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
		discount NUMERIC(14,2) NOT NULL DEFAULT 0
	);`,
	`ALTER TABLE invoice_line_items ADD COLUMN IF NOT EXISTS voided BOOLEAN NOT NULL DEFAULT false;`,
	`DROP INDEX IF EXISTS invoice_line_items_job_once;`,
	`CREATE UNIQUE INDEX IF NOT EXISTS invoice_line_items_job_live
		ON invoice_line_items (job_id) WHERE job_id IS NOT NULL AND NOT voided;`,
	`CREATE TABLE IF NOT EXISTS invoice_payments (
		id UUID PRIMARY KEY,
		invoice_id UUID NOT NULL REFERENCES invoices(id),
		amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
		method TEXT,
		reference TEXT,
		received_at TIMESTAMPTZ NOT NULL,
		created_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE TABLE IF NOT EXISTS file_records (
		id UUID PRIMARY KEY,
		entity_type TEXT NOT NULL CHECK (entity_type IN ('job','estimate')),
		entity_id UUID NOT NULL,
		file_name TEXT NOT NULL,
		storage_path TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL,
		size BIGINT NOT NULL DEFAULT 0,
		content_type TEXT,
		uploaded_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS file_records_entity_idx ON file_records (entity_type, entity_id, created_at);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'estimates_converted_job_fk') THEN
			ALTER TABLE estimates ADD CONSTRAINT estimates_converted_job_fk
				FOREIGN KEY (converted_to_job_id) REFERENCES jobs(id);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'jobs_invoice_fk') THEN
			ALTER TABLE jobs ADD CONSTRAINT jobs_invoice_fk
				FOREIGN KEY (invoice_id) REFERENCES invoices(id);
		END IF;
	END
	$$;`,
}

// Migrate aplica el esquema. Cada sentencia se puede volver a ejecutar sin riesgo.
func Migrate(ctx context.Context, q Querier) error {
	for i, stmt := range migrationStatements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, mapError("migrate", err))
		}
	}
	return nil
}
