package dbchanges

// ValueType is the canonical category of a cell value.
type ValueType int

const (
	// TypeNotIdentified is the type of NULL cells and of raw values that can not be categorized.
	TypeNotIdentified ValueType = iota
	TypeBoolean
	TypeNumber
	TypeText
	TypeDate
	TypeTime
	TypeDateTime
	TypeBytes
	TypeUUID
)

// textComparableTypes are the categories a text literal may be a rendering of.
var textComparableTypes = []ValueType{TypeText, TypeNumber, TypeDate, TypeTime, TypeDateTime, TypeUUID}

// String provides a string representation of ValueType for logging and failure messages.
func (vt ValueType) String() string {
	switch vt {
	case TypeNotIdentified:
		return "NOT_IDENTIFIED"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeNumber:
		return "NUMBER"
	case TypeText:
		return "TEXT"
	case TypeDate:
		return "DATE"
	case TypeTime:
		return "TIME"
	case TypeDateTime:
		return "DATE_TIME"
	case TypeBytes:
		return "BYTES"
	case TypeUUID:
		return "UUID"
	default:
		return "unknown"
	}
}

// IsTemporal reports whether the type is one of DATE, TIME or DATE_TIME.
func (vt ValueType) IsTemporal() bool {
	return vt == TypeDate || vt == TypeTime || vt == TypeDateTime
}
