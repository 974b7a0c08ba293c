// Package repository implements the catalog stores and the physical table
// layer on top of SQLite.
package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"wrangler/internal/domain"
)

// mapDBError converts driver-level constraint violations into domain errors
// so callers can branch on duplicate names without knowing the driver.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return domain.ErrConflict("duplicate value: %v", err)
		case sqlite3.ErrConstraintForeignKey:
			return domain.ErrValidation("referenced row does not exist: %v", err)
		}
	}
	return err
}

func marshalJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal json column: %w", err)
	}
	return string(b), nil
}

func unmarshalJSON(data string, v interface{}) error {
	if data == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("unmarshal json column: %w", err)
	}
	return nil
}
