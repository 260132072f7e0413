package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"jarvismcp/internal/pgread"
	"jarvismcp/internal/registry"
)

// Database builds the read-only Postgres inspection group.
func Database(store *pgread.Store) registry.Group {
	return registry.Group{
		Name: "db",
		Tools: []registry.Tool{
			{
				Descriptor: registry.Descriptor{
					Name:        "db_list_databases",
					Description: "List available PostgreSQL databases (read-only).",
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					start := time.Now()
					names, err := store.ListDatabases(ctx)
					if err != nil {
						return "", err
					}
					header := []string{
						"=== Databases ===",
						elapsedLine(time.Since(start).Milliseconds()),
						fmt.Sprintf("Count: %d", len(names)),
					}
					return block(header, listOrEmpty(names, "No databases found.")), nil
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "db_list_schemas",
					Description: "List schemas for a database (read-only).",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"database": stringProp("Database name"),
					}),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					database := argString(args, "database", "")
					start := time.Now()
					names, err := store.ListSchemas(ctx, database)
					if err != nil {
						return "", err
					}
					header := []string{
						"=== Schemas ===",
						"Database: " + orDefault(database, store.DefaultDatabase()),
						elapsedLine(time.Since(start).Milliseconds()),
						fmt.Sprintf("Count: %d", len(names)),
					}
					return block(header, listOrEmpty(names, "No schemas found.")), nil
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "db_list_tables",
					Description: "List tables for a database (optionally filter by schema).",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"database": stringProp("Database name"),
						"schema":   stringProp("Schema name (default: all)"),
					}),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					database := argString(args, "database", "")
					schema := argString(args, "schema", "")
					start := time.Now()
					names, err := store.ListTables(ctx, database, schema)
					if err != nil {
						return "", err
					}
					header := []string{
						"=== Tables ===",
						"Database: " + orDefault(database, store.DefaultDatabase()),
						"Schema: " + orDefault(schema, "all"),
						elapsedLine(time.Since(start).Milliseconds()),
						fmt.Sprintf("Count: %d", len(names)),
					}
					return block(header, listOrEmpty(names, "No tables found.")), nil
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "db_describe_table",
					Description: "Describe a table (columns, types, nullability, defaults).",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"database": stringProp("Database name"),
						"schema":   stringProp("Schema name"),
						"table":    stringProp("Table name"),
					}, "schema", "table"),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					database := argString(args, "database", "")
					schema := argString(args, "schema", "")
					table := argString(args, "table", "")
					start := time.Now()
					result, err := store.DescribeTable(ctx, database, schema, table)
					if err != nil {
						return "", err
					}
					header := []string{
						"=== Table Description ===",
						"Database: " + orDefault(database, store.DefaultDatabase()),
						fmt.Sprintf("Table: %s.%s", schema, table),
						elapsedLine(time.Since(start).Milliseconds()),
						fmt.Sprintf("Columns: %d", len(result.Rows)),
					}
					return block(header, rowsToText(result.Rows)), nil
				},
			},
			{
				Descriptor: registry.Descriptor{
					Name:        "db_query",
					Description: "Run a read-only SELECT query with safety limits.",
					InputSchema: objectSchema(map[string]*jsonschema.Schema{
						"database": stringProp("Database name"),
						"query":    stringProp("SELECT query to execute"),
						"max_rows": intProp("Maximum rows to return (default: 100, max: 500)"),
					}, "query"),
				},
				Handler: func(ctx context.Context, args map[string]any) (string, error) {
					database := argString(args, "database", "")
					maxRows := argInt(args, "max_rows", pgread.DefaultMaxRows)
					if maxRows > pgread.MaxRowsLimit {
						maxRows = pgread.MaxRowsLimit
					}
					start := time.Now()
					result, err := store.Query(ctx, database, argString(args, "query", ""), maxRows)
					if err != nil {
						return "", err
					}
					header := []string{
						"=== Query Result ===",
						"Database: " + orDefault(database, store.DefaultDatabase()),
						elapsedLine(time.Since(start).Milliseconds()),
						fmt.Sprintf("Rows: %d (max %d)", len(result.Rows), maxRows),
					}
					return block(header, rowsToText(result.Rows)), nil
				},
			},
		},
	}
}

func listOrEmpty(names []string, empty string) string {
	if len(names) == 0 {
		return empty
	}
	return strings.Join(names, "\n")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func rowsToText(rows []map[string]any) string {
	if len(rows) == 0 {
		return "No rows returned."
	}
	raw, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", rows)
	}
	return string(raw)
}
