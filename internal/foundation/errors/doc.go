// Package errors provides the classified error type used across navindex.
//
// A ClassifiedError carries a category (what kind of failure), a severity (how bad)
// and a retry strategy (whether trying again can help), plus structured context.
// Errors are built with the fluent ErrorBuilder:
//
//	err := errors.NewError(errors.CategorySyntax, "unterminated string").
//		WithContext("file", "navtreedata.js").
//		WithContext("offset", 812).
//		Build()
//
// CLIErrorAdapter maps categories to process exit codes and HTTPErrorAdapter maps
// them to HTTP status codes and JSON payloads.
package errors
