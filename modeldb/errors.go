package modeldb

import (
	"errors"
	"fmt"
)

// ReentrancyError is returned by DB.Transact (and Undo/Redo, which run
// replay transactions) when a transaction is already open. Transactions
// never nest; the attempt fails fast without blocking.
type ReentrancyError struct{}

// Error implements the error interface.
func (e *ReentrancyError) Error() string {
	return "transaction already in progress"
}

// TableExistsError is returned by DB.CreateTable when a table for the
// token has already been created on this DB.
type TableExistsError struct {
	Token *Token
}

// Error implements the error interface.
func (e *TableExistsError) Error() string {
	return fmt.Sprintf("table already exists for token %q", e.Token.Name())
}

// TableNotFoundError is returned by DB.GetTable and DB.DeleteTable when
// no table has been created for the token.
type TableNotFoundError struct {
	Token *Token
}

// Error implements the error interface.
func (e *TableNotFoundError) Error() string {
	return fmt.Sprintf("no table for token %q", e.Token.Name())
}

// IsReentrancy reports whether err is a ReentrancyError.
// Uses errors.As to handle wrapped errors.
func IsReentrancy(err error) bool {
	var re *ReentrancyError
	return errors.As(err, &re)
}

// IsTableExists reports whether err is a TableExistsError.
func IsTableExists(err error) bool {
	var te *TableExistsError
	return errors.As(err, &te)
}

// IsTableNotFound reports whether err is a TableNotFoundError.
func IsTableNotFound(err error) bool {
	var tn *TableNotFoundError
	return errors.As(err, &tn)
}
