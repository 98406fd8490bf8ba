package tools

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"
)

// ContractStore serves SQL over the contract dataset. The CSV is loaded once
// at startup into an in-memory SQLite database; every column is TEXT and the
// table is named "contracts".
type ContractStore struct {
	db      *sql.DB
	columns []string
}

func OpenContractStore(csvPath string) (*ContractStore, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open contract data: %w", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse contract data: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("contract data %s is empty", csvPath)
	}
	header := records[0]
	for i := range header {
		header[i] = sanitizeColumn(header[i])
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// One connection only: the dataset lives in that connection's memory.
	db.SetMaxOpenConns(1)

	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = h + " TEXT"
	}
	if _, err := db.Exec("CREATE TABLE contracts (" + strings.Join(cols, ", ") + ")"); err != nil {
		db.Close()
		return nil, fmt.Errorf("create contracts table: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(header)), ", ")
	insert := fmt.Sprintf("INSERT INTO contracts (%s) VALUES (%s)", strings.Join(header, ", "), placeholders)
	for _, rec := range records[1:] {
		vals := make([]any, len(header))
		for i := range header {
			if i < len(rec) {
				vals[i] = strings.TrimSpace(rec[i])
			} else {
				vals[i] = ""
			}
		}
		if _, err := db.Exec(insert, vals...); err != nil {
			db.Close()
			return nil, fmt.Errorf("load contract row: %w", err)
		}
	}
	return &ContractStore{db: db, columns: header}, nil
}

func (s *ContractStore) Close() error { return s.db.Close() }

func (s *ContractStore) query(ctx context.Context, query string, args ...any) ([]map[string]any, []string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	out := make([]map[string]any, 0, 16)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = vals[i]
			}
		}
		out = append(out, row)
	}
	return out, cols, rows.Err()
}

func sanitizeColumn(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "col"
	}
	return b.String()
}

// QueryContractsTool executes a read-only SQL query against the contracts
// table.
type QueryContractsTool struct {
	Store *ContractStore
}

func (t *QueryContractsTool) Name() string { return "query_contracts" }
func (t *QueryContractsTool) Description() string {
	return "Execute a SQL query against the contracts table; arguments: {\"sql\": string}"
}

func (t *QueryContractsTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	q, _ := args["sql"].(string)
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("missing sql")
	}
	if !strings.HasPrefix(strings.ToUpper(q), "SELECT") {
		return nil, fmt.Errorf("only SELECT queries are allowed")
	}
	rows, cols, err := t.Store.query(ctx, q)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"row_count": len(rows),
		"columns":   cols,
		"rows":      rows,
	}, nil
}

// GetContractTool looks one contract up by id.
type GetContractTool struct {
	Store *ContractStore
}

func (t *GetContractTool) Name() string { return "get_contract" }
func (t *GetContractTool) Description() string {
	return "Retrieve a single contract record; arguments: {\"contract_id\": string}"
}

func (t *GetContractTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	id, _ := args["contract_id"].(string)
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("missing contract_id")
	}
	rows, _, err := t.Store.query(ctx, "SELECT * FROM contracts WHERE contract_id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("contract %s not found", id)
	}
	return map[string]any{"record": rows[0]}, nil
}

// ContractSchemaTool reports the table layout so a reasoning loop can write
// queries against real column names instead of guessing.
type ContractSchemaTool struct {
	Store *ContractStore
}

func (t *ContractSchemaTool) Name() string { return "get_schema" }
func (t *ContractSchemaTool) Description() string {
	return "Describe the contracts table: column names and row count; no arguments"
}

func (t *ContractSchemaTool) Execute(ctx context.Context, _ map[string]any) (any, error) {
	rows, _, err := t.Store.query(ctx, "SELECT COUNT(*) AS n FROM contracts")
	if err != nil {
		return nil, err
	}
	var count any
	if len(rows) > 0 {
		count = rows[0]["n"]
	}
	return map[string]any{"columns": t.Store.columns, "row_count": count}, nil
}
