// Package iocli abstracts terminal input and output for the CLI.
package iocli

// IO is what commands print to and read from
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
