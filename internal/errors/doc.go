// Package errors provides structured, actionable errors for atomdemo.
//
// Every error carries a code that maps to a registered template:
//   - A short message describing the error
//   - A detailed explanation
//   - A category used to pick an HTTP status and a CLI presentation
//
// # Error Categories
//
//   - config: configuration file and flag errors (E1xx)
//   - protocol: live session transport errors (E2xx)
//   - validation: field edits and request bodies (E3xx)
//   - runtime: everything else
//
// # Usage
//
//	err := errors.New("E103").
//	    WithDetail("server.port is 70000").
//	    WithSuggestion("Use a port between 0 and 65535")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E103: Invalid server port
//	//
//	//   server.port is 70000
//	//
//	//   Hint: Use a port between 0 and 65535
package errors
