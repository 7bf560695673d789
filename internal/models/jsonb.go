package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

//
// jsonb helpers
//
// MemoryUsage and CPUUsage are stored in Postgres jsonb columns, so both
// implement driver.Valuer and sql.Scanner and work with sqlx / database/sql.

func (m MemoryUsage) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *MemoryUsage) Scan(value any) error {
	return scanJSON("MemoryUsage", value, m)
}

func (c CPUUsage) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *CPUUsage) Scan(value any) error {
	return scanJSON("CPUUsage", value, c)
}

func scanJSON(name string, value any, dst any) error {
	if value == nil {
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("%s: expected []byte, got %T", name, value)
	}

	if len(b) == 0 {
		return nil
	}

	return json.Unmarshal(b, dst)
}
