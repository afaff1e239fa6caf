// Package transfer copies the Writify tables between Postgres databases as
// JSON-lines files: one file per table, one object per row.
package transfer

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/writify/writify-backend/internal/domain/ports"
)

// Table describes one exported table.
type Table struct {
	Name    string
	Columns []string
	OrderBy string
}

// FileName is the JSON-lines file holding the table.
func (t Table) FileName() string {
	return t.Name + ".jsonl"
}

// Tables lists the schema in foreign key order: parents before children.
var Tables = []Table{
	{
		Name: "users",
		Columns: []string{"id", "google_id", "email", "name", "profile_picture", "role",
			"writer_status", "rating", "total_ratings", "whatsapp_number", "created_at", "updated_at"},
		OrderBy: "created_at, id",
	},
	{
		Name: "assignment_requests",
		Columns: []string{"id", "client_id", "course_name", "course_code", "assignment_type",
			"num_pages", "deadline", "estimated_cost", "status", "created_at", "expiration_deadline"},
		OrderBy: "created_at, id",
	},
	{
		Name:    "assignments",
		Columns: []string{"id", "request_id", "writer_id", "client_id", "status", "created_at", "completed_at"},
		OrderBy: "created_at, id",
	},
	{
		Name: "ratings",
		Columns: []string{"id", "rater_id", "rated_id", "rating", "comment",
			"assignment_request_id", "created_at", "updated_at"},
		OrderBy: "created_at, id",
	},
	{
		Name:    "writer_portfolios",
		Columns: []string{"writer_id", "sample_work_image", "description", "updated_at"},
		OrderBy: "writer_id",
	},
}

// Row is one exported row. Values are Postgres text representations; nil is NULL.
type Row map[string]*string

// Exporter reads tables through gorm.
type Exporter struct {
	db     *gorm.DB
	logger ports.Logger
}

func NewExporter(db *gorm.DB, logger ports.Logger) *Exporter {
	return &Exporter{db: db, logger: logger}
}

// Export writes every table into dir and returns the row count per table.
func (e *Exporter) Export(ctx context.Context, dir string) (map[string]int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	counts := make(map[string]int, len(Tables))
	for _, t := range Tables {
		n, err := e.exportFile(ctx, t, filepath.Join(dir, t.FileName()))
		if err != nil {
			return counts, err
		}
		counts[t.Name] = n
		e.logger.Info("table exported", "table", t.Name, "rows", n)
	}
	return counts, nil
}

func (e *Exporter) exportFile(ctx context.Context, t Table, path string) (n int, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w := bufio.NewWriter(f)
	n, err = e.ExportTable(ctx, t, w)
	if err != nil {
		return n, err
	}
	return n, w.Flush()
}

// ExportTable streams one table to w. Columns are cast to text so that every
// type round-trips through COPY unchanged.
func (e *Exporter) ExportTable(ctx context.Context, t Table, w io.Writer) (int, error) {
	rows, err := e.db.WithContext(ctx).Raw(selectText(t)).Rows()
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", t.Name, err)
	}
	defer rows.Close()

	enc := json.NewEncoder(w)
	values := make([]sql.NullString, len(t.Columns))
	dest := make([]any, len(t.Columns))
	for i := range values {
		dest[i] = &values[i]
	}

	n := 0
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return n, fmt.Errorf("scan %s: %w", t.Name, err)
		}
		row := make(Row, len(t.Columns))
		for i, col := range t.Columns {
			if values[i].Valid {
				v := values[i].String
				row[col] = &v
			} else {
				row[col] = nil
			}
		}
		if err := enc.Encode(row); err != nil {
			return n, fmt.Errorf("write %s: %w", t.Name, err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("read %s: %w", t.Name, err)
	}
	return n, nil
}

func selectText(t Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = fmt.Sprintf("%s::text", pq.QuoteIdentifier(c))
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(cols, ", "), pq.QuoteIdentifier(t.Name), t.OrderBy)
}

// Importer bulk-loads tables with COPY. It needs a lib/pq connection.
type Importer struct {
	db     *sql.DB
	logger ports.Logger
}

func NewImporter(db *sql.DB, logger ports.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// ImportOptions tunes Import.
type ImportOptions struct {
	// Truncate empties every table before loading.
	Truncate bool
}

// Import loads every table file found in dir inside one transaction.
// Missing files are skipped; any failure rolls the whole import back.
func (im *Importer) Import(ctx context.Context, dir string, opts ImportOptions) (counts map[string]int, err error) {
	tx, err := im.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if opts.Truncate {
		if _, err = tx.ExecContext(ctx, truncateAll()); err != nil {
			return nil, fmt.Errorf("truncate tables: %w", err)
		}
		im.logger.Info("target tables truncated")
	}

	counts = make(map[string]int, len(Tables))
	for _, t := range Tables {
		var n int
		n, err = im.importFile(ctx, tx, t, filepath.Join(dir, t.FileName()))
		if errors.Is(err, os.ErrNotExist) {
			im.logger.Warn("table file missing, skipped", "table", t.Name)
			err = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		counts[t.Name] = n
		im.logger.Info("table imported", "table", t.Name, "rows", n)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	return counts, nil
}

func (im *Importer) importFile(ctx context.Context, tx *sql.Tx, t Table, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ImportTable(ctx, tx, t, f)
}

// ImportTable copies the JSON lines read from r into t.
func ImportTable(ctx context.Context, tx *sql.Tx, t Table, r io.Reader) (n int, err error) {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(t.Name, t.Columns...))
	if err != nil {
		return 0, fmt.Errorf("prepare copy %s: %w", t.Name, err)
	}
	defer func() {
		if cerr := stmt.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close copy %s: %w", t.Name, cerr)
		}
	}()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16<<20)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		values, err := DecodeRow([]byte(raw), t.Columns)
		if err != nil {
			return n, fmt.Errorf("%s line %d: %w", t.FileName(), line, err)
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return n, fmt.Errorf("copy %s line %d: %w", t.Name, line, err)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("read %s: %w", t.FileName(), err)
	}

	// An argument-less Exec flushes the COPY buffer.
	if _, err := stmt.ExecContext(ctx); err != nil {
		return n, fmt.Errorf("finish copy %s: %w", t.Name, err)
	}
	return n, nil
}

// DecodeRow turns one JSON line into COPY arguments ordered like columns.
// Absent keys and nulls become NULL; keys outside columns are rejected.
func DecodeRow(data []byte, columns []string) ([]any, error) {
	var row Row
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}

	known := make(map[string]struct{}, len(columns))
	values := make([]any, len(columns))
	for i, col := range columns {
		known[col] = struct{}{}
		if v := row[col]; v != nil {
			values[i] = *v
		}
	}
	for key := range row {
		if _, ok := known[key]; !ok {
			return nil, fmt.Errorf("unknown column %q", key)
		}
	}
	return values, nil
}

func truncateAll() string {
	names := make([]string, len(Tables))
	for i, t := range Tables {
		names[i] = pq.QuoteIdentifier(t.Name)
	}
	return "TRUNCATE " + strings.Join(names, ", ") + " CASCADE"
}
