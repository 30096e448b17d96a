// Package postgres implements the store interfaces on PostgreSQL through the
// pgx database/sql driver. Task listings are built as parameterized queries
// and scanned with sqlx; PostgreSQL error codes are mapped onto the store
// sentinels; the schema ships as embedded goose migrations.
package postgres
