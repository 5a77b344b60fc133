package dbchanges

import (
	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

type valueJSON struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// MarshalJSON renders the value with its category. Numbers are rendered as exact decimal text.
func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{Type: v.valueType.String()}

	switch v.valueType {
	case TypeNotIdentified:
		out.Value = nil
	case TypeBoolean:
		out.Value = v.boolean
	case TypeBytes:
		out.Value = v.bytes
	default:
		out.Value = v.String()
	}

	return jsonAPI.Marshal(out)
}

// MarshalJSON renders the row as an ordered list of column/value pairs.
func (r Row) MarshalJSON() ([]byte, error) {
	type column struct {
		Name  string `json:"name"`
		Value Value  `json:"value"`
	}

	columns := make([]column, 0, len(r.values))
	for i, v := range r.values {
		columns = append(columns, column{Name: r.columnNames[i], Value: v})
	}

	return jsonAPI.Marshal(columns)
}

type changeJSON struct {
	DataName        string   `json:"data_name"`
	Kind            string   `json:"kind"`
	ChangeType      string   `json:"change_type"`
	PrimaryKey      []string `json:"primary_key,omitempty"`
	ModifiedColumns []string `json:"modified_columns,omitempty"`
	RowAtStart      *Row     `json:"row_at_start"`
	RowAtEnd        *Row     `json:"row_at_end"`
}

func (c Change) MarshalJSON() ([]byte, error) {
	return jsonAPI.Marshal(changeJSON{
		DataName:        c.dataName,
		Kind:            c.kind.String(),
		ChangeType:      c.changeType.String(),
		PrimaryKey:      c.primaryKeyNames,
		ModifiedColumns: c.ModifiedColumnNames(),
		RowAtStart:      c.rowAtStart,
		RowAtEnd:        c.rowAtEnd,
	})
}

func (cs Changes) MarshalJSON() ([]byte, error) {
	if cs.changes == nil {
		return []byte("[]"), nil
	}

	return jsonAPI.Marshal(cs.changes)
}
