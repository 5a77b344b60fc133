package adapters

import "database/sql"

// stdRows wraps standard library sql.Rows to implement DBRows interface
type stdRows struct {
	rows *sql.Rows
	size int
}

func (s *stdRows) Columns() ([]Column, error) {
	types, err := s.rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	columns := make([]Column, 0, len(types))
	for _, t := range types {
		columns = append(columns, Column{Name: t.Name(), DatabaseTypeName: t.DatabaseTypeName()})
	}

	s.size = len(columns)

	return columns, nil
}

func (s *stdRows) Next() bool {
	return s.rows.Next()
}

// Values scans the current row into untyped destinations, so the driver decides the Go types.
func (s *stdRows) Values() ([]any, error) {
	if s.size == 0 {
		if _, err := s.Columns(); err != nil {
			return nil, err
		}
	}

	values := make([]any, s.size)
	dest := make([]any, s.size)
	for i := range values {
		dest[i] = &values[i]
	}

	if err := s.rows.Scan(dest...); err != nil {
		return nil, err
	}

	return values, nil
}

func (s *stdRows) Err() error {
	return s.rows.Err()
}

func (s *stdRows) Close() error {
	return s.rows.Close()
}
