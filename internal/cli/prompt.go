package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter collects interactive input.
type Prompter interface {
	// Prompt asks until a non-empty answer is given.
	Prompt(label string) (string, error)
	// Password is Prompt without echo when reading from a terminal.
	Password(label string) (string, error)
	// Confirm asks a yes/no question; the default is no.
	Confirm(question string) (bool, error)
}

type linePrompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

// NewPrompter returns a Prompter reading answers line by line from in and
// writing questions to out.
func NewPrompter(in io.Reader, out io.Writer) Prompter {
	if in == nil {
		in = strings.NewReader("")
	}
	return &linePrompter{in: in, reader: bufio.NewReader(in), out: out}
}

func (p *linePrompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", ErrAborted
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (p *linePrompter) Prompt(label string) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s: ", label)
		line, err := p.readLine()
		if err != nil {
			fmt.Fprintln(p.out)
			return "", err
		}
		if v := strings.TrimSpace(line); v != "" {
			return v, nil
		}
	}
}

func (p *linePrompter) Password(label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Prompt(label)
	}
	for {
		fmt.Fprintf(p.out, "%s: ", label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", ErrAborted
		}
		if v := string(b); v != "" {
			return v, nil
		}
	}
}

func (p *linePrompter) Confirm(question string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "%s [y/N]: ", question)
		line, err := p.readLine()
		if err != nil {
			fmt.Fprintln(p.out)
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Error: invalid input")
	}
}
