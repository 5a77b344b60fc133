package dbchanges

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewColumnValue classifies a raw driver value using the database type name of its column as a hint.
//
// Drivers do not agree on the Go types they hand out: lib/pq returns NUMERIC and UUID columns as text
// bytes, SQLite returns DATE columns as strings or time.Time, and most drivers return DATE and TIME
// columns as time.Time. The hint moves such raws into their proper category before classification.
// A hint whose conversion fails leaves the raw untouched.
func NewColumnValue(raw any, databaseTypeName string) Value {
	converted, ok := convertByHint(raw, hintedType(databaseTypeName))
	if !ok {
		return NewValue(raw)
	}

	v := classify(converted)
	v.raw = raw

	return v
}

//nolint:gocyclo
func hintedType(databaseTypeName string) ValueType {
	name := strings.ToUpper(strings.TrimSpace(databaseTypeName))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	name = strings.TrimPrefix(name, "_")

	switch name {
	case "":
		return TypeNotIdentified
	case "BOOL", "BOOLEAN", "BIT":
		return TypeBoolean
	case "INT", "INT2", "INT4", "INT8", "INTEGER", "SMALLINT", "BIGINT", "TINYINT", "MEDIUMINT",
		"SERIAL", "BIGSERIAL", "SMALLSERIAL", "NUMERIC", "DECIMAL", "NUMBER", "REAL",
		"FLOAT", "FLOAT4", "FLOAT8", "DOUBLE", "DOUBLE PRECISION", "MONEY":
		return TypeNumber
	case "DATE":
		return TypeDate
	case "TIME", "TIMETZ", "TIME WITHOUT TIME ZONE", "TIME WITH TIME ZONE":
		return TypeTime
	case "TIMESTAMP", "TIMESTAMPTZ", "DATETIME", "DATETIME2", "SMALLDATETIME",
		"TIMESTAMP WITHOUT TIME ZONE", "TIMESTAMP WITH TIME ZONE":
		return TypeDateTime
	case "UUID", "UNIQUEIDENTIFIER":
		return TypeUUID
	case "BYTEA", "BLOB", "BINARY", "VARBINARY", "LONGBLOB", "MEDIUMBLOB", "TINYBLOB", "IMAGE":
		return TypeBytes
	case "TEXT", "VARCHAR", "CHAR", "BPCHAR", "CHARACTER", "CHARACTER VARYING", "NCHAR", "NVARCHAR",
		"CLOB", "NAME", "CITEXT", "JSON", "JSONB", "XML", "INET", "CIDR", "MACADDR", "INTERVAL":
		return TypeText
	default:
		return TypeNotIdentified
	}
}

//nolint:gocyclo
func convertByHint(raw any, hint ValueType) (any, bool) {
	if raw == nil || hint == TypeNotIdentified {
		return nil, false
	}

	text, isText := textOf(raw)

	switch hint {
	case TypeNumber:
		if isText {
			if n, err := ParseNumber(text); err == nil {
				return n, true
			}
		}

	case TypeBoolean:
		switch r := raw.(type) {
		case int64:
			return r != 0, true
		case int32:
			return r != 0, true
		case int:
			return r != 0, true
		}
		if isText {
			if b, err := strconv.ParseBool(strings.TrimSpace(text)); err == nil {
				return b, true
			}
		}

	case TypeDate:
		if t, ok := raw.(time.Time); ok {
			return DateFrom(t), true
		}
		if isText {
			if d, err := ParseDate(text); err == nil {
				return d, true
			}
			if dt, err := ParseDateTime(text); err == nil {
				return dt.Date(), true
			}
		}

	case TypeTime:
		if t, ok := raw.(time.Time); ok {
			return TimeFrom(t), true
		}
		if isText {
			if t, err := ParseTime(stripZone(text)); err == nil {
				return t, true
			}
		}

	case TypeDateTime:
		if isText {
			if dt, err := ParseDateTime(text); err == nil {
				return dt, true
			}
		}

	case TypeUUID:
		if b, ok := raw.([]byte); ok && len(b) == 16 {
			if id, err := uuid.FromBytes(b); err == nil {
				return id, true
			}
		}
		if isText {
			if id, err := uuid.Parse(strings.TrimSpace(text)); err == nil {
				return id, true
			}
		}

	case TypeText:
		if b, ok := raw.([]byte); ok {
			return string(b), true
		}
	}

	return nil, false
}

func textOf(raw any) (string, bool) {
	switch r := raw.(type) {
	case string:
		return r, true
	case []byte:
		return string(r), true
	default:
		return "", false
	}
}

// stripZone removes a trailing numeric zone offset as rendered by Postgres for TIMETZ ("12:30:00+02").
func stripZone(s string) string {
	trimmed := strings.TrimSpace(s)
	if i := strings.LastIndexAny(trimmed, "+-"); i > 0 {
		return trimmed[:i]
	}

	return trimmed
}
