package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// Terminal seams, replaced in tests.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

var errEmptyPassword = errors.New("password must not be empty")

// getPassword reads a password without echo when in is a terminal, or a
// single line from in otherwise so the command can be scripted.
func getPassword(in io.Reader, fd int, w io.Writer) (string, error) {
	if !isTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", err
		}
		return nonEmpty(strings.TrimRight(line, "\r\n"))
	}

	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(fd)
	_, _ = fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return nonEmpty(string(pw))
}

func nonEmpty(pw string) (string, error) {
	if pw == "" {
		return "", errEmptyPassword
	}
	return pw, nil
}
