package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// InitReaderDB opens a read-only pool on the talent cache for the facet queries, so they do not
// queue behind the single GORM writer connection. The schema must already exist.
func InitReaderDB(dataSourceName string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", "file:"+dataSourceName+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open read-only database: %w", err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open read-only database at %s: %w", dataSourceName, err)
	}

	log.Println("read-only database opened at", dataSourceName)
	return db, nil
}

// FacetCount is the number of cached talents sharing one attribute value.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Facets are the aggregate counts behind the filter selectors.
type Facets struct {
	Genders     []FacetCount `json:"genders"`
	States      []FacetCount `json:"states"`
	Ethnicities []FacetCount `json:"ethnicities"`
	AgeMin      int          `json:"age_min"`
	AgeMax      int          `json:"age_max"`
	Total       int          `json:"total"`
}

// facet columns, as laid out by the Talent model's GORM mapping
const (
	talentsTable    = "talents"
	genderColumn    = "gender"
	stateColumn     = "state"
	ethnicityColumn = "detail_ethnicity"
)

// FacetCounts aggregates the cached record set for the filter options endpoint
func FacetCounts(ctx context.Context, db *sql.DB) (Facets, error) {
	var f Facets
	var err error

	if f.Genders, err = countBy(ctx, db, genderColumn); err != nil {
		return Facets{}, err
	}
	if f.States, err = countBy(ctx, db, stateColumn); err != nil {
		return Facets{}, err
	}
	if f.Ethnicities, err = countBy(ctx, db, ethnicityColumn); err != nil {
		return Facets{}, err
	}

	queryBuilder := psql.Select("COALESCE(MIN(age), 0)", "COALESCE(MAX(age), 0)", "COUNT(*)").
		From(talentsTable)

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return Facets{}, fmt.Errorf("failed to build SQL query for age bounds: %w", err)
	}
	err = db.QueryRowContext(ctx, sqlStr, args...).Scan(&f.AgeMin, &f.AgeMax, &f.Total)
	if err != nil {
		return Facets{}, fmt.Errorf("failed to query age bounds: %w", err)
	}
	return f, nil
}

func countBy(ctx context.Context, db *sql.DB, column string) ([]FacetCount, error) {
	queryBuilder := psql.Select(column, "COUNT(*) AS n").
		From(talentsTable).
		Where(sq.NotEq{column: ""}).
		GroupBy(column).
		OrderBy("n DESC", column+" ASC")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL facet query for %s: %w", column, err)
	}

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query facet %s: %w", column, err)
	}
	defer rows.Close()

	counts := []FacetCount{}
	for rows.Next() {
		var fc FacetCount
		if err := rows.Scan(&fc.Value, &fc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan facet %s: %w", column, err)
		}
		counts = append(counts, fc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate facet %s: %w", column, err)
	}
	return counts, nil
}
