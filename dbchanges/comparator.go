package dbchanges

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

/***** Literals *****/

// literalValue builds the Value for a literal supplied by a caller.
// Unlike NewValue it rejects classes of objects that can not be meaningfully compared.
func literalValue(literal any) (Value, error) {
	switch l := literal.(type) {
	case Value:
		return l, nil
	case nil, []byte, bool, string,
		int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64,
		*big.Int, *big.Rat, *big.Float, Number,
		DateValue, TimeValue, DateTimeValue, time.Time, uuid.UUID:
		return NewValue(l), nil
	default:
		return Value{}, errors.Join(ErrUnsupportedLiteral, fmt.Errorf("literal of type %T", literal))
	}
}

// PossibleTypesForComparison returns the categories of values a literal can legitimately be compared with.
// Text is comparable with almost everything, because it may be the rendering of another category.
func PossibleTypesForComparison(literal any) ([]ValueType, error) {
	lit, err := literalValue(literal)
	if err != nil {
		return nil, err
	}

	switch lit.valueType {
	case TypeBytes:
		return []ValueType{TypeBytes}, nil
	case TypeBoolean:
		return []ValueType{TypeBoolean}, nil
	case TypeNumber:
		return []ValueType{TypeNumber}, nil
	case TypeDate:
		return []ValueType{TypeDate, TypeDateTime}, nil
	case TypeTime:
		return []ValueType{TypeTime}, nil
	case TypeDateTime:
		return []ValueType{TypeDateTime}, nil
	case TypeUUID:
		return []ValueType{TypeUUID}, nil
	case TypeText:
		return slices.Clone(textComparableTypes), nil
	default:
		return []ValueType{TypeNotIdentified}, nil
	}
}

/***** Equality *****/

// Equal is the type-aware, symmetric equality of two values.
//
// Numbers compare by mathematical value, temporal values by their calendar and clock fields.
// A DATE equals a DATE_TIME at exactly midnight of the same day. A TEXT equals a NUMBER, DATE, TIME,
// DATE_TIME or UUID when it parses into that category to an equal value; a parse failure is inequality.
// BYTES only ever equal BYTES.
//
//nolint:gocyclo
func (v Value) Equal(other Value) bool {
	if v.valueType == TypeText && other.valueType != TypeText {
		return textEquals(v.text, other)
	}

	if other.valueType == TypeText && v.valueType != TypeText {
		return textEquals(other.text, v)
	}

	switch v.valueType {
	case TypeNotIdentified:
		return other.valueType == TypeNotIdentified
	case TypeBoolean:
		return other.valueType == TypeBoolean && v.boolean == other.boolean
	case TypeNumber:
		return other.valueType == TypeNumber && v.number.Equal(other.number)
	case TypeText:
		return v.text == other.text
	case TypeDate:
		switch other.valueType {
		case TypeDate:
			return v.date == other.date
		case TypeDateTime:
			return other.dateTime.IsMidnight() && other.dateTime.Date() == v.date
		default:
			return false
		}
	case TypeTime:
		return other.valueType == TypeTime && v.time == other.time
	case TypeDateTime:
		switch other.valueType {
		case TypeDateTime:
			return v.dateTime == other.dateTime
		case TypeDate:
			return v.dateTime.IsMidnight() && v.dateTime.Date() == other.date
		default:
			return false
		}
	case TypeBytes:
		return other.valueType == TypeBytes && bytes.Equal(v.bytes, other.bytes)
	case TypeUUID:
		return other.valueType == TypeUUID && v.uuid == other.uuid
	default:
		return false
	}
}

func textEquals(text string, other Value) bool {
	switch other.valueType {
	case TypeNumber:
		n, err := ParseNumber(text)
		return err == nil && n.Equal(other.number)
	case TypeDate:
		if d, err := ParseDate(text); err == nil {
			return d == other.date
		}
		dt, err := ParseDateTime(text)
		return err == nil && dt.IsMidnight() && dt.Date() == other.date
	case TypeTime:
		t, err := ParseTime(text)
		return err == nil && t == other.time
	case TypeDateTime:
		dt, err := ParseDateTime(text)
		return err == nil && dt == other.dateTime
	case TypeUUID:
		id, err := uuid.Parse(strings.TrimSpace(text))
		return err == nil && id == other.uuid
	default:
		return false
	}
}

// AreEqual compares a value with a literal supplied by a caller.
// It only fails for literals of an unsupported class; incomparable categories are simply unequal.
func AreEqual(value Value, literal any) (bool, error) {
	lit, err := literalValue(literal)
	if err != nil {
		return false, err
	}

	return value.Equal(lit), nil
}

// IsComparisonPossible separates "these two are unequal" from "these two can not be compared".
// It is true when the literal may be compared with the category of the value, when the value is NULL,
// or when both are BYTES. A TEXT value is comparable with every literal category text can render.
func IsComparisonPossible(value Value, literal any) (bool, error) {
	possibleTypes, err := PossibleTypesForComparison(literal)
	if err != nil {
		return false, err
	}

	if value.valueType == TypeNotIdentified || slices.Contains(possibleTypes, value.valueType) {
		return true, nil
	}

	if value.valueType == TypeText {
		for _, t := range possibleTypes {
			if slices.Contains(textComparableTypes, t) {
				return true, nil
			}
		}
	}

	return false, nil
}

/***** Numbers *****/

func numberFromLiteral(literal any) (Number, error) {
	if s, ok := literal.(string); ok {
		return ParseNumber(s)
	}

	lit, err := literalValue(literal)
	if err != nil {
		return Number{}, err
	}

	switch lit.valueType {
	case TypeNumber:
		return lit.number, nil
	case TypeText:
		return ParseNumber(lit.text)
	default:
		return Number{}, errors.Join(ErrUnsupportedLiteral, fmt.Errorf("expected a number but got %s", lit.valueType))
	}
}

// Compare orders a NUMBER value against a numeric literal (or its text rendering) by mathematical value.
func Compare(value Value, number any) (int, error) {
	if value.valueType != TypeNumber {
		return 0, errors.Join(ErrComparisonNotPossible, fmt.Errorf("%s is not a number", value.valueType))
	}

	expected, err := numberFromLiteral(number)
	if err != nil {
		return 0, err
	}

	c, ordered := value.number.Cmp(expected)
	if !ordered {
		return 0, errors.Join(ErrComparisonNotPossible, errors.New("NaN is unordered"))
	}

	return c, nil
}

func IsGreaterThan(value Value, number any) (bool, error) {
	c, err := Compare(value, number)
	return err == nil && c > 0, err
}

func IsGreaterThanOrEqual(value Value, number any) (bool, error) {
	c, err := Compare(value, number)
	return err == nil && c >= 0, err
}

func IsLessThan(value Value, number any) (bool, error) {
	c, err := Compare(value, number)
	return err == nil && c < 0, err
}

func IsLessThanOrEqual(value Value, number any) (bool, error) {
	c, err := Compare(value, number)
	return err == nil && c <= 0, err
}

/***** Temporal values *****/

// instantOf anchors a temporal value on the time line; TIME values are anchored on a fixed day.
func (v Value) instantOf() (time.Time, bool) {
	switch v.valueType {
	case TypeDate:
		return v.date.toTime(), true
	case TypeTime:
		return v.time.onDay(timeAnchorDay), true
	case TypeDateTime:
		return v.dateTime.toTime(), true
	default:
		return time.Time{}, false
	}
}

var timeAnchorDay = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// temporalLiteral converts a literal into an instant comparable with a value of the given temporal type.
// Unparsable text is a usage error here.
func temporalLiteral(target ValueType, literal any) (time.Time, error) {
	if s, ok := literal.(string); ok {
		return parseTemporalText(target, s)
	}

	lit, err := literalValue(literal)
	if err != nil {
		return time.Time{}, err
	}

	if lit.valueType == TypeText {
		return parseTemporalText(target, lit.text)
	}

	compatible := lit.valueType == target ||
		(target == TypeDate && lit.valueType == TypeDateTime) ||
		(target == TypeDateTime && lit.valueType == TypeDate)

	if !compatible {
		return time.Time{}, errors.Join(
			ErrComparisonNotPossible,
			fmt.Errorf("can not compare %s with %s", target, lit.valueType),
		)
	}

	instant, _ := lit.instantOf()

	return instant, nil
}

func parseTemporalText(target ValueType, s string) (time.Time, error) {
	switch target {
	case TypeDate, TypeDateTime:
		dt, err := ParseDateTime(s)
		if err != nil {
			return time.Time{}, err
		}
		return dt.toTime(), nil
	case TypeTime:
		t, err := ParseTime(s)
		if err != nil {
			return time.Time{}, err
		}
		return t.onDay(timeAnchorDay), nil
	default:
		return time.Time{}, errors.Join(ErrComparisonNotPossible, fmt.Errorf("%s is not temporal", target))
	}
}

func chronology(value Value, expected any) (int, error) {
	actual, ok := value.instantOf()
	if !ok {
		return 0, errors.Join(ErrComparisonNotPossible, fmt.Errorf("%s is not temporal", value.valueType))
	}

	instant, err := temporalLiteral(value.valueType, expected)
	if err != nil {
		return 0, err
	}

	return actual.Compare(instant), nil
}

// IsBefore reports whether a DATE, TIME or DATE_TIME value lies strictly before the expected literal.
func IsBefore(value Value, expected any) (bool, error) {
	c, err := chronology(value, expected)
	return err == nil && c < 0, err
}

// IsBeforeOrEqual reports whether a temporal value lies before or at the expected literal.
func IsBeforeOrEqual(value Value, expected any) (bool, error) {
	c, err := chronology(value, expected)
	return err == nil && c <= 0, err
}

// IsAfter reports whether a temporal value lies strictly after the expected literal.
func IsAfter(value Value, expected any) (bool, error) {
	c, err := chronology(value, expected)
	return err == nil && c > 0, err
}

// IsAfterOrEqual reports whether a temporal value lies after or at the expected literal.
func IsAfterOrEqual(value Value, expected any) (bool, error) {
	c, err := chronology(value, expected)
	return err == nil && c >= 0, err
}

/***** Closeness *****/

// AreClose reports whether a value is within tolerance of the expected literal, in both directions.
//
// NUMBER values take a numeric tolerance. DATE and DATE_TIME values take a time.Duration or a DateSpan,
// TIME values a time.Duration. A NULL value is close to nothing.
func AreClose(value Value, expected any, tolerance any) (bool, error) {
	switch value.valueType {
	case TypeNotIdentified:
		return false, nil

	case TypeNumber:
		exp, err := numberFromLiteral(expected)
		if err != nil {
			return false, err
		}
		tol, err := numberFromLiteral(tolerance)
		if err != nil {
			return false, errors.Join(ErrInvalidTolerance, err)
		}
		if tol.Sign() < 0 || tol.isNaN() {
			return false, errors.Join(ErrInvalidTolerance, errors.New("tolerance must not be negative"))
		}
		return value.number.IsWithin(exp, tol), nil

	case TypeDate, TypeTime, TypeDateTime:
		actual, _ := value.instantOf()
		instant, err := temporalLiteral(value.valueType, expected)
		if err != nil {
			return false, err
		}
		return temporalWithin(value.valueType, actual, instant, tolerance)

	default:
		return false, errors.Join(
			ErrComparisonNotPossible,
			fmt.Errorf("closeness is not defined for %s", value.valueType),
		)
	}
}

func temporalWithin(valueType ValueType, actual, expected time.Time, tolerance any) (bool, error) {
	switch tol := tolerance.(type) {
	case time.Duration:
		if tol < 0 {
			return false, errors.Join(ErrInvalidTolerance, errors.New("tolerance must not be negative"))
		}
		diff := actual.Sub(expected)
		if diff < 0 {
			diff = -diff
		}
		return diff <= tol, nil

	case DateSpan:
		if valueType == TypeTime {
			return false, errors.Join(ErrInvalidTolerance, errors.New("a date span can not be applied to a time"))
		}
		if tol.isNegative() {
			return false, errors.Join(ErrInvalidTolerance, errors.New("tolerance must not be negative"))
		}
		lower := expected.AddDate(-tol.Years, -tol.Months, -tol.Days)
		upper := expected.AddDate(tol.Years, tol.Months, tol.Days)
		return !actual.Before(lower) && !actual.After(upper), nil

	default:
		return false, errors.Join(ErrInvalidTolerance, fmt.Errorf("tolerance of type %T", tolerance))
	}
}
