package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"rightswatch/config"
	"rightswatch/core/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DB is a SQL handle that knows which dialect it speaks.
type DB struct {
	*sql.DB
	dialect dialect
}

func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		db, err := sql.Open("pgx", cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(5 * time.Minute)
		if err := pingDB(db); err != nil {
			db.Close()
			return nil, err
		}
		if logger != nil {
			logger.Printf("connected to postgres")
		}
		return &DB{DB: db, dialect: postgresDialect}, nil
	case "sqlite":
		path := strings.TrimPrefix(cfg.DBURL, "file:")
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(1)
		if err := pingDB(db); err != nil {
			db.Close()
			return nil, err
		}
		if logger != nil {
			logger.Printf("opened sqlite database %s", path)
		}
		return &DB{DB: db, dialect: sqliteDialect}, nil
	default:
		return nil, fmt.Errorf("driver %q is not a SQL backend", cfg.DBDriver)
	}
}

func pingDB(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (db *DB) IsPostgres() bool { return db.dialect.postgres }

func (db *DB) rebind(query string) string { return db.dialect.rebind(query) }

type dialect struct {
	postgres bool
}

var (
	sqliteDialect   = dialect{}
	postgresDialect = dialect{postgres: true}
)

// rebind rewrites ? placeholders to $n for postgres.
func (d dialect) rebind(query string) string {
	if !d.postgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		ch := query[i]
		if ch == '\'' {
			inQuote = !inQuote
		}
		if ch == '?' && !inQuote {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// jsonText extracts a scalar at path from a JSON document column as text.
func (d dialect) jsonText(column string, path ...string) string {
	if d.postgres {
		return column + jsonPathPG(path, true)
	}
	return fmt.Sprintf("json_extract(%s, '$.%s')", column, strings.Join(path, "."))
}

// jsonRaw extracts the JSON value at path without unquoting it.
func (d dialect) jsonRaw(column string, path ...string) string {
	if d.postgres {
		return column + jsonPathPG(path, false)
	}
	return fmt.Sprintf("json_extract(%s, '$.%s')", column, strings.Join(path, "."))
}

// jsonArrayContains tests membership of one bound value in a JSON string array.
func (d dialect) jsonArrayContains(column string, path ...string) string {
	if d.postgres {
		return fmt.Sprintf("COALESCE(%s @> jsonb_build_array(CAST(? AS text)), false)", column+jsonPathPG(path, false))
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM json_each(%s, '$.%s') WHERE json_each.value = ?)", column, strings.Join(path, "."))
}

// jsonArrayElements is a FROM-clause source yielding one row per array element
// in a column named value.
func (d dialect) jsonArrayElements(column string, path ...string) string {
	if d.postgres {
		return fmt.Sprintf("jsonb_array_elements_text(CASE WHEN jsonb_typeof(%[1]s) = 'array' THEN %[1]s ELSE '[]'::jsonb END) AS je(value)", column+jsonPathPG(path, false))
	}
	return fmt.Sprintf("json_each(%s, '$.%s') AS je", column, strings.Join(path, "."))
}

// yearMonthPrefix matches text values starting with YYYY-MM.
func (d dialect) yearMonthPrefix(column string) string {
	if d.postgres {
		return column + ` ~ '^[0-9]{4}-[0-9]{2}'`
	}
	return column + ` GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]*'`
}

func jsonPathPG(path []string, text bool) string {
	var b strings.Builder
	for i, p := range path {
		if text && i == len(path)-1 {
			b.WriteString("->>'")
		} else {
			b.WriteString("->'")
		}
		b.WriteString(p)
		b.WriteString("'")
	}
	return b.String()
}

func storeID(id int64) string { return strconv.FormatInt(id, 10) }

func parseStoreID(id string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
