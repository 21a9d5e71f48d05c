package corpus

import (
	"context"
	"fmt"
	"regexp"

	"github.com/oarkflow/squealx"
	_ "modernc.org/sqlite"
)

// DefaultTable is the table read when a sqlite source names none.
const DefaultTable = "words"

var reTable = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type wordRow struct {
	Rank int    `db:"rank"`
	Word string `db:"word"`
}

func openDB(dsn string) (*squealx.DB, error) {
	db, err := squealx.Open("sqlite", dsn, "corpus")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		return DefaultTable, nil
	}
	if !reTable.MatchString(table) {
		return "", fmt.Errorf("corpus: invalid table name %q", table)
	}
	return table, nil
}

// LoadSQLite reads words ordered by their rank column from table in the
// SQLite database at dsn.
func LoadSQLite(ctx context.Context, dsn, table string) ([]string, error) {
	table, err := tableName(table)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	db, err := openDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("open corpus db %s: %w", dsn, err)
	}
	defer db.Close()

	var rows []wordRow
	query := fmt.Sprintf("SELECT rank, word FROM %s ORDER BY rank ASC", table)
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("query corpus %s: %w", table, err)
	}
	words := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.Word != "" {
			words = append(words, r.Word)
		}
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("corpus db %s: %w", dsn, ErrEmptyCorpus)
	}
	return words, nil
}

// WriteSQLite stores words into table, replacing its contents. Rank is the
// index in words. The table is replaced in a single transaction, so a failed
// write leaves the previous contents in place.
func WriteSQLite(ctx context.Context, dsn, table string, words []string) (err error) {
	table, err = tableName(table)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return ErrEmptyCorpus
	}
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("open corpus db %s: %w", dsn, err)
	}
	defer db.Close()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin corpus import: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmts := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (rank INTEGER PRIMARY KEY, word TEXT NOT NULL)", table),
		fmt.Sprintf("DELETE FROM %s", table),
	}
	for _, q := range stmts {
		if _, err = tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("prepare corpus table %s: %w", table, err)
		}
	}
	insert := fmt.Sprintf("INSERT INTO %s (rank, word) VALUES (:rank, :word)", table)
	for i, w := range words {
		if err = ctx.Err(); err != nil {
			return err
		}
		if _, err = tx.NamedExecContext(ctx, insert, map[string]any{"rank": i, "word": w}); err != nil {
			return fmt.Errorf("insert %q: %w", w, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit corpus import: %w", err)
	}
	return nil
}
