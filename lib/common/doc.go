// Package common holds the pieces shared by the library and the command line tool:
// the logger factory used by all packages and the store configuration.
package common
