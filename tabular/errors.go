package tabular

import "fmt"

// Reason identifies why an input could not be normalized.
type Reason string

const (
	ReasonUnsupportedFileType     Reason = "UnsupportedFileType"
	ReasonUnsupportedRawDelimited Reason = "UnsupportedRawDelimited"
	ReasonMalformedEncoding       Reason = "MalformedEncoding"
	ReasonEmptyInput              Reason = "EmptyInput"
	ReasonNonRecordElement        Reason = "NonRecordElement"
	ReasonNonArrayColumn          Reason = "NonArrayColumn"
	ReasonColumnLengthMismatch    Reason = "ColumnLengthMismatch"
	ReasonUnsupportedShape        Reason = "UnsupportedShape"
)

// Sentinels for errors.Is; only the reason is compared.
var (
	ErrUnsupportedFileType     = &NormalizationError{Reason: ReasonUnsupportedFileType}
	ErrUnsupportedRawDelimited = &NormalizationError{Reason: ReasonUnsupportedRawDelimited}
	ErrMalformedEncoding       = &NormalizationError{Reason: ReasonMalformedEncoding}
	ErrEmptyInput              = &NormalizationError{Reason: ReasonEmptyInput}
	ErrNonRecordElement        = &NormalizationError{Reason: ReasonNonRecordElement}
	ErrNonArrayColumn          = &NormalizationError{Reason: ReasonNonArrayColumn}
	ErrColumnLengthMismatch    = &NormalizationError{Reason: ReasonColumnLengthMismatch}
	ErrUnsupportedShape        = &NormalizationError{Reason: ReasonUnsupportedShape}
)

const (
	exampleRecords = `[{"year": 2020, "value": 100}, {"year": 2021, "value": 150}]`
	exampleColumns = `{"year": [2020, 2021], "value": [100, 150]}`
)

// NormalizationError is returned for tabular input that is malformed or
// ambiguous. It always names what was expected and what was received.
type NormalizationError struct {
	Reason      Reason `json:"reason"`
	Message     string `json:"message"`
	Remediation string `json:"remediation,omitempty"`
	Err         error  `json:"-"`
}

func (e *NormalizationError) Error() string {
	if e.Remediation == "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("%s: %s\n\n%s", e.Reason, e.Message, e.Remediation)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// Is matches any *NormalizationError carrying the same reason.
func (e *NormalizationError) Is(target error) bool {
	t, ok := target.(*NormalizationError)
	return ok && t.Reason == e.Reason
}

func failf(reason Reason, remediation, format string, args ...any) *NormalizationError {
	return &NormalizationError{
		Reason:      reason,
		Message:     fmt.Sprintf(format, args...),
		Remediation: remediation,
	}
}

func unsupportedFileType(path, ext string) error {
	return failf(ReasonUnsupportedFileType,
		"Supported file types are .csv and .json. Otherwise read the file first and pass its rows:\n"+
			"  data = "+exampleRecords,
		"file %q has unsupported extension %q", path, ext)
}

func rawDelimited() error {
	return failf(ReasonUnsupportedRawDelimited,
		"Parse the delimited text first and pass one of:\n"+
			`  1. List of records: [{"col": val}, ...]`+"\n"+
			`  2. Columns: {"col": [vals]}`+"\n\n"+
			"Example:\n  data = "+exampleRecords,
		"inline delimited (CSV-like) text is not accepted")
}

func malformed(err error, what string) error {
	e := failf(ReasonMalformedEncoding,
		"Expected JSON in one of these formats:\n"+
			"  1. '"+exampleRecords+"'\n"+
			"  2. '"+exampleColumns+"'",
		"invalid %s: %v", what, err)
	e.Err = err
	return e
}

func emptyList() error {
	return failf(ReasonEmptyInput,
		"Provide at least one row of data, e.g.\n  "+exampleRecords,
		"data list is empty")
}

func emptyColumns(detail string) error {
	return failf(ReasonEmptyInput,
		"Provide at least one column with at least one value, e.g.\n  "+exampleColumns,
		"%s", detail)
}

func nonRecordElement(index int, got string) error {
	return failf(ReasonNonRecordElement,
		"List format must contain objects, one per row:\n  "+exampleRecords,
		"expected an object at index %d, got %s in list", index, got)
}

func nonArrayColumn(column, got string) error {
	return failf(ReasonNonArrayColumn,
		"Column format must map each column name to a list of values:\n  "+exampleColumns,
		"expected a list for column %q, got %s", column, got)
}

func lengthMismatch(lengths map[string]int, order []string) error {
	parts := make([]string, 0, len(order))
	for _, name := range order {
		parts = append(parts, fmt.Sprintf("%s=%d", name, lengths[name]))
	}
	return failf(ReasonColumnLengthMismatch,
		"Every column list must have the same number of values:\n  "+exampleColumns,
		"columns have different lengths: %v", parts)
}

func unsupportedShape(got string) error {
	return failf(ReasonUnsupportedShape,
		"Data must be one of:\n"+
			"  1. List of records: "+exampleRecords+"\n"+
			"  2. Columns: "+exampleColumns+"\n"+
			"  3. JSON string in either format above\n"+
			"  4. Path to a .csv or .json file",
		"unsupported data type: %s", got)
}
