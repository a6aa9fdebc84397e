package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL CHECK (role IN ('client', 'admin', 'developer', 'sales_manager')),
		skills TEXT[] NOT NULL DEFAULT '{}',
		time_zone VARCHAR(100),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL,
		priority SMALLINT NOT NULL DEFAULT 3 CHECK (priority BETWEEN 0 AND 3),
		start_date DATE NOT NULL,
		end_date DATE,
		client_id UUID REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS project_developers (
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		developer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		PRIMARY KEY (project_id, developer_id)
	)`,

	`CREATE TABLE IF NOT EXISTS project_rates (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		developer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		rate NUMERIC(10, 2) NOT NULL CHECK (rate >= 0),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(project_id, developer_id)
	)`,

	`CREATE TABLE IF NOT EXISTS features (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'backlog',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS functions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		feature_id UUID NOT NULL REFERENCES features(id) ON DELETE CASCADE,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'backlog',
		developer_id UUID REFERENCES users(id) ON DELETE SET NULL,
		estimated_time NUMERIC(5, 2),
		cost NUMERIC(10, 2),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY,
		client_id UUID REFERENCES users(id) ON DELETE CASCADE,
		amount NUMERIC(12, 2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		from_date DATE,
		to_date DATE,
		generated_date DATE NOT NULL DEFAULT CURRENT_DATE,
		document_ref VARCHAR(500),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS work_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		function_id UUID NOT NULL REFERENCES functions(id) ON DELETE CASCADE,
		developer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date_logged DATE NOT NULL DEFAULT CURRENT_DATE,
		hours_worked NUMERIC(5, 2) NOT NULL CHECK (hours_worked > 0),
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'review',
		reason TEXT,
		billed_status VARCHAR(20) NOT NULL DEFAULT 'unbilled',
		processed_date DATE,
		billed_date DATE,
		invoice_id UUID REFERENCES invoices(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS invoice_line_items (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		work_log_id UUID REFERENCES work_logs(id) ON DELETE SET NULL,
		project_id UUID REFERENCES projects(id) ON DELETE SET NULL,
		project_title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		hours NUMERIC(5, 2) NOT NULL,
		rate NUMERIC(10, 2) NOT NULL,
		cost NUMERIC(12, 2) NOT NULL,
		position INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS history (
		id BIGSERIAL PRIMARY KEY,
		entity VARCHAR(20) NOT NULL,
		entity_id UUID NOT NULL,
		action VARCHAR(10) NOT NULL CHECK (action IN ('create', 'update', 'delete')),
		changed_by UUID REFERENCES users(id) ON DELETE SET NULL,
		snapshot JSONB NOT NULL,
		changed_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_projects_client_id ON projects(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_project_developers_developer_id ON project_developers(developer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_features_project_id ON features(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_functions_feature_id ON functions(feature_id)`,
	`CREATE INDEX IF NOT EXISTS idx_functions_developer_id ON functions(developer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_work_logs_function_id ON work_logs(function_id)`,
	`CREATE INDEX IF NOT EXISTS idx_work_logs_developer_id ON work_logs(developer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_work_logs_billing ON work_logs(billed_status, date_logged)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_client_id ON invoices(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_line_items_invoice_id ON invoice_line_items(invoice_id)`,
	`CREATE INDEX IF NOT EXISTS idx_invoice_line_items_project_id ON invoice_line_items(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_history_entity ON history(entity, entity_id, changed_at)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
