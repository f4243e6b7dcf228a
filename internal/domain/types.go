package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// MapOfAny is persisted as JSON in the database
type MapOfAny map[string]any

// Scan implements the sql.Scanner interface
func (m *MapOfAny) Scan(val interface{}) error {
	data, err := scanJSONBytes(val)
	if err != nil || data == nil {
		return err
	}
	return json.Unmarshal(data, m)
}

// Value implements the driver.Valuer interface
func (m MapOfAny) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// StringList is a list of strings persisted as a JSON array
type StringList []string

// Scan implements the sql.Scanner interface
func (l *StringList) Scan(val interface{}) error {
	data, err := scanJSONBytes(val)
	if err != nil {
		return err
	}
	if data == nil {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Value implements the driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

func scanJSONBytes(val interface{}) ([]byte, error) {
	switch v := val.(type) {
	case nil:
		return nil, nil
	case []byte:
		// the driver reuses the buffer for the next row
		return bytes.Clone(v), nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSON column type %T", val)
	}
}
