package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConditions(t *testing.T) {
	var c conditions
	assert.Empty(t, c.where())

	c.addRaw("is_active = true")
	c.add("status = $%d", "AVAILABLE")
	c.add("(make ILIKE $%[1]d OR model ILIKE $%[1]d)", "%skoda%")

	assert.Equal(t, " WHERE is_active = true AND status = $1 AND (make ILIKE $2 OR model ILIKE $2)", c.where())
	assert.Equal(t, " LIMIT $3 OFFSET $4", c.page(20, 40))
	assert.Equal(t, []any{"AVAILABLE", "%skoda%", 20, 40}, c.args)
}

func TestConditions_NoLimit(t *testing.T) {
	var c conditions
	c.add("vehicle_id = $%d", 1)

	assert.Empty(t, c.page(0, 10))
	assert.Len(t, c.args, 1)
}

func TestPgErrorCodes(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: codeUniqueViolation})
	fk := &pgconn.PgError{Code: codeForeignKeyViolation}

	assert.True(t, isUniqueViolation(unique))
	assert.False(t, isUniqueViolation(fk))
	assert.True(t, isForeignKeyViolation(fk))
	assert.False(t, isForeignKeyViolation(errors.New("connection refused")))
}
