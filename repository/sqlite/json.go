package sqlite

import (
	"database/sql"
	"encoding/json"
)

// marshalJSON renders v into a nullable TEXT column, storing NULL for empty
// values so unset maps and slices round-trip as nil.
func marshalJSON(v interface{}) (sql.NullString, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		if len(val) == 0 {
			return sql.NullString{}, nil
		}
	case map[string]string:
		if len(val) == 0 {
			return sql.NullString{}, nil
		}
	case []string:
		if len(val) == 0 {
			return sql.NullString{}, nil
		}
	case nil:
		return sql.NullString{}, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func unmarshalJSON(col sql.NullString, dest interface{}) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dest)
}
