// Package form is the paired text field demonstration built on atom, bind
// and view.
//
// The state is one atom holding Fields, a slice of first/last Pairs. Every
// rendered input and display binds through a selector to exactly the string
// it shows, so typing into one field re-renders two components regardless
// of how many fields exist.
package form
