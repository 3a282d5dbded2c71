package db

import (
	"errors"
	"fmt"
)

// ErrorKind tags an infrastructure failure with where it happened.
type ErrorKind int

const (
	// KindClientConfigLoading is a missing or invalid startup setting.
	KindClientConfigLoading ErrorKind = iota + 1
	// KindPutItem is a failed PutItem call.
	KindPutItem
	// KindGetItem is a failed GetItem call.
	KindGetItem
	// KindDeleteItem is a failed DeleteItem call.
	KindDeleteItem
	// KindQuery is a failed Query call.
	KindQuery
	// KindData is a stored attribute that cannot be decoded into the expected type.
	KindData
	// KindSerialization is a failed conversion between a license and its attribute map.
	KindSerialization
)

var kindNames = map[ErrorKind]string{
	KindClientConfigLoading: "ClientConfigLoadingError",
	KindPutItem:             "PutItemError",
	KindGetItem:             "GetItemError",
	KindDeleteItem:          "DeleteItemError",
	KindQuery:               "QueryError",
	KindData:                "DataError",
	KindSerialization:       "SerializationError",
}

// String returns the kind name.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// RuntimeError is an infrastructure failure of the directory access layer.
// None of them are recovered here; they are returned to the caller as they occur.
type RuntimeError struct {
	Kind ErrorKind
	// Attribute names the offending attribute for KindData.
	Attribute string
	Err       error
}

func (e *RuntimeError) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("%s(%s): %v", e.Kind, e.Attribute, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Is matches another *RuntimeError of the same kind, so callers can test
// errors.Is(err, &RuntimeError{Kind: KindQuery}).
func (e *RuntimeError) Is(target error) bool {
	t, ok := target.(*RuntimeError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Err == nil
}

func newError(kind ErrorKind, err error) *RuntimeError {
	return &RuntimeError{Kind: kind, Err: err}
}

func dataError(attribute string, format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: KindData, Attribute: attribute, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the first RuntimeError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}
