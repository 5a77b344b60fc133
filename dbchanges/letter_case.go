package dbchanges

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CaseConversion defines how a name reported by the data source is converted before it is exposed.
type CaseConversion int

const (
	// NoConversion keeps names exactly as the database reports them.
	NoConversion CaseConversion = iota

	// UpperCase converts names to upper case.
	UpperCase

	// LowerCase converts names to lower case.
	LowerCase
)

func (c CaseConversion) String() string {
	switch c {
	case NoConversion:
		return "no_conversion"
	case UpperCase:
		return "upper"
	case LowerCase:
		return "lower"
	default:
		return "unknown"
	}
}

// CaseComparison defines how two names are compared.
type CaseComparison int

const (
	// IgnoreCase compares names by their Unicode case folding.
	IgnoreCase CaseComparison = iota

	// StrictCase compares names byte by byte.
	StrictCase
)

func (c CaseComparison) String() string {
	switch c {
	case IgnoreCase:
		return "ignore"
	case StrictCase:
		return "strict"
	default:
		return "unknown"
	}
}

// LetterCase is the policy applied when names supplied by a caller are matched against names
// reported by the data source. The zero value is NoConversion with IgnoreCase.
type LetterCase struct {
	conversion CaseConversion
	comparison CaseComparison
}

// DefaultLetterCase is used for tables, columns and primary keys unless configured otherwise.
var DefaultLetterCase = LetterCase{conversion: NoConversion, comparison: IgnoreCase}

// NewLetterCase combines a conversion and a comparison into a LetterCase.
func NewLetterCase(conversion CaseConversion, comparison CaseComparison) LetterCase {
	return LetterCase{conversion: conversion, comparison: comparison}
}

func (lc LetterCase) Conversion() CaseConversion {
	return lc.conversion
}

func (lc LetterCase) Comparison() CaseComparison {
	return lc.comparison
}

// Convert applies the conversion to a name.
func (lc LetterCase) Convert(name string) string {
	// A cases.Caser is stateful, so a fresh one is needed per call.
	switch lc.conversion {
	case UpperCase:
		return cases.Upper(language.Und).String(name)
	case LowerCase:
		return cases.Lower(language.Und).String(name)
	default:
		return name
	}
}

// IsEqual compares two names after conversion.
func (lc LetterCase) IsEqual(a, b string) bool {
	a, b = lc.Convert(a), lc.Convert(b)

	if lc.comparison == StrictCase {
		return a == b
	}

	if a == b {
		return true
	}

	fold := cases.Fold()

	return fold.String(a) == fold.String(b)
}

// IndexOf returns the index of the first of names equal to name, or -1.
func (lc LetterCase) IndexOf(names []string, name string) int {
	for i, n := range names {
		if lc.IsEqual(n, name) {
			return i
		}
	}

	return -1
}

// Contains reports whether name is among names.
func (lc LetterCase) Contains(names []string, name string) bool {
	return lc.IndexOf(names, name) >= 0
}

func (lc LetterCase) String() string {
	return lc.conversion.String() + "/" + lc.comparison.String()
}
