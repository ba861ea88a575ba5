package iocli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Stream is an IO over a reader and a writer. Passwords are read without echo
// when the reader is a terminal.
type Stream struct {
	in     *bufio.Reader
	out    io.Writer
	termFd int // -1 если ввод не терминал
}

// NewStdio returns an IO bound to the process stdin and stdout
func NewStdio() IO {
	return New(os.Stdin, os.Stdout)
}

// New returns an IO reading from in and writing to out
func New(in io.Reader, out io.Writer) *Stream {
	s := &Stream{
		in:     bufio.NewReader(in),
		out:    out,
		termFd: -1,
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		s.termFd = int(f.Fd())
	}
	return s
}

func (s *Stream) Println(a ...any) {
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stream) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stream) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

// ReadInput печатает prompt и читает одну строку без пробелов по краям
func (s *Stream) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	input, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ReadPassword reads a secret line. Echo is disabled on terminals.
func (s *Stream) ReadPassword(prompt string) (string, error) {
	if s.termFd < 0 {
		return s.ReadInput(prompt)
	}
	s.Printf("%s", prompt)
	pwBytes, err := term.ReadPassword(s.termFd)
	s.Println()
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}
