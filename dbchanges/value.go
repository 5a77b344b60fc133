package dbchanges

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Value is the canonical, immutable representation of one database cell.
//
// It is a tagged union: the ValueType decides which of the payload fields is meaningful.
// The type is always the result of classifying the raw value and can not be set independently.
type Value struct {
	valueType ValueType
	raw       any

	boolean  bool
	number   Number
	text     string
	bytes    []byte
	date     DateValue
	time     TimeValue
	dateTime DateTimeValue
	uuid     uuid.UUID
}

// NewValue classifies a raw driver value or literal and builds the Value for it.
// Classification is total: NULL and NULL-valued driver types become NOT_IDENTIFIED,
// unknown non-nil types are rendered as TEXT.
func NewValue(raw any) Value {
	v := classify(raw)
	v.raw = raw

	return v
}

//nolint:gocyclo,funlen
func classify(raw any) Value {
	switch r := raw.(type) {
	case nil:
		return Value{valueType: TypeNotIdentified}

	case []byte:
		if r == nil {
			return Value{valueType: TypeNotIdentified}
		}
		return Value{valueType: TypeBytes, bytes: bytes.Clone(r)}

	case bool:
		return Value{valueType: TypeBoolean, boolean: r}

	case int:
		return numberValue(NumberFromInt64(int64(r)))
	case int8:
		return numberValue(NumberFromInt64(int64(r)))
	case int16:
		return numberValue(NumberFromInt64(int64(r)))
	case int32:
		return numberValue(NumberFromInt64(int64(r)))
	case int64:
		return numberValue(NumberFromInt64(r))
	case uint:
		return numberValue(NumberFromUint64(uint64(r)))
	case uint8:
		return numberValue(NumberFromUint64(uint64(r)))
	case uint16:
		return numberValue(NumberFromUint64(uint64(r)))
	case uint32:
		return numberValue(NumberFromUint64(uint64(r)))
	case uint64:
		return numberValue(NumberFromUint64(r))
	case float32:
		return numberValue(NumberFromFloat32(r))
	case float64:
		return numberValue(NumberFromFloat64(r))
	case *big.Int:
		if r == nil {
			return Value{valueType: TypeNotIdentified}
		}
		return numberValue(NumberFromBigInt(r))
	case *big.Rat:
		if r == nil {
			return Value{valueType: TypeNotIdentified}
		}
		return numberValue(NumberFromRat(r))
	case *big.Float:
		if r == nil {
			return Value{valueType: TypeNotIdentified}
		}
		return numberValue(NumberFromBigFloat(r))
	case Number:
		return numberValue(r)
	case pgtype.Numeric:
		return classifyPGNumeric(r)

	case DateValue:
		return Value{valueType: TypeDate, date: r}
	case pgtype.Date:
		if !r.Valid {
			return Value{valueType: TypeNotIdentified}
		}
		return Value{valueType: TypeDate, date: DateFrom(r.Time)}

	case TimeValue:
		return Value{valueType: TypeTime, time: r}
	case pgtype.Time:
		if !r.Valid {
			return Value{valueType: TypeNotIdentified}
		}
		return Value{valueType: TypeTime, time: TimeOf(0, 0, 0, int(r.Microseconds*int64(time.Microsecond)))}

	case DateTimeValue:
		return Value{valueType: TypeDateTime, dateTime: r}
	case time.Time:
		return Value{valueType: TypeDateTime, dateTime: DateTimeFrom(r)}
	case pgtype.Timestamp:
		if !r.Valid {
			return Value{valueType: TypeNotIdentified}
		}
		return Value{valueType: TypeDateTime, dateTime: DateTimeFrom(r.Time)}
	case pgtype.Timestamptz:
		if !r.Valid {
			return Value{valueType: TypeNotIdentified}
		}
		return Value{valueType: TypeDateTime, dateTime: DateTimeFrom(r.Time)}

	case uuid.UUID:
		return Value{valueType: TypeUUID, uuid: r}
	case [16]byte:
		return Value{valueType: TypeUUID, uuid: uuid.UUID(r)}
	case pgtype.UUID:
		if !r.Valid {
			return Value{valueType: TypeNotIdentified}
		}
		return Value{valueType: TypeUUID, uuid: uuid.UUID(r.Bytes)}

	case string:
		return Value{valueType: TypeText, text: r}

	case driver.Valuer:
		return classifyValuer(r)

	default:
		return Value{valueType: TypeText, text: fmt.Sprint(r)}
	}
}

func numberValue(n Number) Value {
	return Value{valueType: TypeNumber, number: n}
}

func classifyPGNumeric(n pgtype.Numeric) Value {
	switch {
	case !n.Valid:
		return Value{valueType: TypeNotIdentified}
	case n.NaN:
		return numberValue(Number{special: nan()})
	case n.InfinityModifier == pgtype.Infinity:
		return numberValue(Number{special: posInf()})
	case n.InfinityModifier == pgtype.NegativeInfinity:
		return numberValue(Number{special: negInf()})
	default:
		return numberValue(NumberFromScaled(n.Int, n.Exp))
	}
}

// classifyValuer unwraps sql.Null* and similar driver types. The unwrapped value is classified again,
// guarding against valuers that return themselves.
func classifyValuer(valuer driver.Valuer) (v Value) {
	defer func() {
		if recover() != nil {
			v = Value{valueType: TypeText, text: fmt.Sprint(valuer)}
		}
	}()

	inner, err := valuer.Value()
	if err != nil {
		return Value{valueType: TypeText, text: fmt.Sprint(valuer)}
	}

	if _, isValuer := inner.(driver.Valuer); isValuer {
		return Value{valueType: TypeText, text: fmt.Sprint(inner)}
	}

	return classify(inner)
}

// Type returns the category of the value.
func (v Value) Type() ValueType {
	return v.valueType
}

// Raw returns the raw object the value was built from.
func (v Value) Raw() any {
	return v.raw
}

// IsNull reports whether the value is NOT_IDENTIFIED.
func (v Value) IsNull() bool {
	return v.valueType == TypeNotIdentified
}

// Bool returns the payload of a BOOLEAN value.
func (v Value) Bool() (bool, bool) {
	return v.boolean, v.valueType == TypeBoolean
}

// Number returns the payload of a NUMBER value.
func (v Value) Number() (Number, bool) {
	return v.number, v.valueType == TypeNumber
}

// Text returns the payload of a TEXT value.
func (v Value) Text() (string, bool) {
	return v.text, v.valueType == TypeText
}

// Bytes returns a copy of the payload of a BYTES value.
func (v Value) Bytes() ([]byte, bool) {
	if v.valueType != TypeBytes {
		return nil, false
	}
	return bytes.Clone(v.bytes), true
}

// Date returns the payload of a DATE value.
func (v Value) Date() (DateValue, bool) {
	return v.date, v.valueType == TypeDate
}

// Time returns the payload of a TIME value.
func (v Value) Time() (TimeValue, bool) {
	return v.time, v.valueType == TypeTime
}

// DateTime returns the payload of a DATE_TIME value.
func (v Value) DateTime() (DateTimeValue, bool) {
	return v.dateTime, v.valueType == TypeDateTime
}

// UUID returns the payload of a UUID value.
func (v Value) UUID() (uuid.UUID, bool) {
	return v.uuid, v.valueType == TypeUUID
}

// String renders the value for diagnostics.
func (v Value) String() string {
	switch v.valueType {
	case TypeNotIdentified:
		if v.raw == nil {
			return "null"
		}
		return fmt.Sprint(v.raw)
	case TypeBoolean:
		return fmt.Sprint(v.boolean)
	case TypeNumber:
		return v.number.String()
	case TypeText:
		return v.text
	case TypeDate:
		return v.date.String()
	case TypeTime:
		return v.time.String()
	case TypeDateTime:
		return v.dateTime.String()
	case TypeBytes:
		return fmt.Sprintf("[%d bytes]", len(v.bytes))
	case TypeUUID:
		return v.uuid.String()
	default:
		return fmt.Sprint(v.raw)
	}
}
