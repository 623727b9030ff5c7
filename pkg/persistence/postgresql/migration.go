package postgresql

// migrations returns the ordered schema migrations for the PostgreSQL
// backend. The unique index on extractions(document_id) backs the extract
// step's read-then-write dedup check against concurrent duplicate inserts.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id UUID PRIMARY KEY,
				org_id TEXT NOT NULL,
				name TEXT NOT NULL,
				doc_type TEXT NOT NULL DEFAULT '',
				active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE TABLE IF NOT EXISTS workflow_nodes (
				node_id TEXT NOT NULL,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				node_type TEXT NOT NULL,
				position_x INTEGER NOT NULL DEFAULT 0,
				position_y INTEGER NOT NULL DEFAULT 0,
				config JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (workflow_id, node_id)
			);

			CREATE TABLE IF NOT EXISTS workflow_edges (
				edge_id TEXT NOT NULL,
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				source_node_id TEXT NOT NULL,
				target_node_id TEXT NOT NULL,
				source_handle TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				PRIMARY KEY (workflow_id, edge_id)
			);

			CREATE TABLE IF NOT EXISTS documents (
				id UUID PRIMARY KEY,
				org_id TEXT NOT NULL,
				filename TEXT NOT NULL,
				mime_type TEXT NOT NULL DEFAULT '',
				model_id TEXT,
				status TEXT NOT NULL DEFAULT 'uploaded',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS extractions (
				id UUID PRIMARY KEY,
				document_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
				full_text TEXT NOT NULL DEFAULT '',
				data JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE UNIQUE INDEX IF NOT EXISTS extractions_document_id_key
				ON extractions(document_id);

			CREATE TABLE IF NOT EXISTS extraction_fields (
				id UUID PRIMARY KEY,
				extraction_id UUID NOT NULL REFERENCES extractions(id) ON DELETE CASCADE,
				key TEXT NOT NULL,
				value TEXT NOT NULL DEFAULT '',
				confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
				bbox JSONB,
				page INTEGER NOT NULL DEFAULT 0
			);

			CREATE INDEX IF NOT EXISTS extraction_fields_extraction_id_idx
				ON extraction_fields(extraction_id);

			CREATE TABLE IF NOT EXISTS extraction_tokens (
				id UUID PRIMARY KEY,
				extraction_id UUID NOT NULL REFERENCES extractions(id) ON DELETE CASCADE,
				page INTEGER NOT NULL DEFAULT 0,
				text TEXT NOT NULL DEFAULT '',
				bbox JSONB,
				line_number INTEGER NOT NULL DEFAULT 0,
				block_number INTEGER NOT NULL DEFAULT 0,
				confidence DOUBLE PRECISION NOT NULL DEFAULT 0
			);

			CREATE INDEX IF NOT EXISTS extraction_tokens_extraction_id_idx
				ON extraction_tokens(extraction_id);

			CREATE TABLE IF NOT EXISTS workflow_runs (
				id UUID PRIMARY KEY,
				workflow_id UUID NOT NULL REFERENCES workflows(id),
				document_id UUID NOT NULL REFERENCES documents(id),
				status TEXT NOT NULL DEFAULT 'running',
				started_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				finished_at TIMESTAMP WITH TIME ZONE
			);

			CREATE TABLE IF NOT EXISTS workflow_logs (
				id UUID PRIMARY KEY,
				workflow_run_id UUID NOT NULL REFERENCES workflow_runs(id) ON DELETE CASCADE,
				step_order INTEGER NOT NULL,
				node_id TEXT NOT NULL,
				status TEXT NOT NULL,
				message TEXT NOT NULL DEFAULT '',
				data JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS workflow_logs_run_order_idx
				ON workflow_logs(workflow_run_id, step_order);

			CREATE TABLE IF NOT EXISTS notification_preferences (
				org_id TEXT NOT NULL,
				email TEXT NOT NULL,
				document_approved BOOLEAN NOT NULL DEFAULT FALSE,
				needs_review BOOLEAN NOT NULL DEFAULT FALSE,
				workflow_error BOOLEAN NOT NULL DEFAULT FALSE,
				PRIMARY KEY (org_id, email)
			);

			CREATE TABLE IF NOT EXISTS audit_log (
				id UUID PRIMARY KEY,
				org_id TEXT NOT NULL,
				action TEXT NOT NULL,
				entity_type TEXT NOT NULL,
				entity_id TEXT NOT NULL,
				details JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);
		`,
	}
}
