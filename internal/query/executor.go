package query

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// Executor runs validated read-only queries against the TAS database.
// Execution failures surface as ResultSet{Success: false}, never as a
// propagated error, so the pipeline always has something to respond with.
type Executor struct {
	DB     *sql.DB
	logger *log.Logger
}

// NewExecutor wraps an existing database handle.
func NewExecutor(db *sql.DB) *Executor {
	return &Executor{
		DB:     db,
		logger: log.New(log.Writer(), "[QUERY] ", log.LstdFlags),
	}
}

// NewExecutorWithDSN opens a Postgres connection and verifies it.
func NewExecutorWithDSN(ctx context.Context, dsn string) (*Executor, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewExecutor(db), nil
}

// Execute validates and runs one query, capturing columns, rows and duration.
func (e *Executor) Execute(ctx context.Context, sqlText string) *ResultSet {
	e.logger.Printf("executing query: %s", firstLine(sqlText))

	result := &ResultSet{Query: sqlText}
	start := time.Now()
	defer func() { result.Duration = time.Since(start) }()

	if err := ValidateReadOnly(sqlText); err != nil {
		result.ErrorMessage = err.Error()
		return result
	}

	rows, err := e.DB.QueryContext(ctx, sqlText)
	if err != nil {
		e.logger.Printf("query failed: %v", err)
		result.ErrorMessage = err.Error()
		return result
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		result.ErrorMessage = err.Error()
		return result
	}
	result.Columns = cols

	for rows.Next() {
		cells := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			result.ErrorMessage = err.Error()
			result.Rows = nil
			return result
		}
		for i, v := range cells {
			if b, ok := v.([]byte); ok {
				cells[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		result.ErrorMessage = err.Error()
		result.Rows = nil
		return result
	}

	result.RowCount = len(result.Rows)
	result.Success = true
	e.logger.Printf("query returned %d rows in %s", result.RowCount, time.Since(start).Round(time.Millisecond))
	return result
}

// TestConnection reports whether the database answers a trivial probe.
func (e *Executor) TestConnection(ctx context.Context) bool {
	var one int
	if err := e.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		e.logger.Printf("connection test failed: %v", err)
		return false
	}
	return true
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i] + " ..."
		}
	}
	return s
}
