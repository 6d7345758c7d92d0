package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hanwen/go-treefs/tree"
)

// runScript executes one command per line of r against t, printing
// each result to w, and returns the first I/O error it hits (a
// rejected command is printed, not treated as fatal).
func runScript(w io.Writer, r io.Reader, t *tree.Tree) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fmt.Fprintln(w, execute(t, line))
	}
	return scanner.Err()
}

// runREPL is runScript's interactive twin: it prompts before each
// line and keeps going until EOF (Ctrl-D) on r.
func runREPL(r io.Reader, w io.Writer, t *tree.Tree) error {
	scanner := bufio.NewScanner(r)
	fmt.Fprint(w, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			fmt.Fprintln(w, execute(t, line))
		}
		fmt.Fprint(w, "> ")
	}
	fmt.Fprintln(w)
	return scanner.Err()
}

// execute parses and runs a single command line. Recognized commands:
//
//	list PATH
//	create PATH
//	remove PATH
//	move SOURCE TARGET
func execute(t *tree.Tree, line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}

	switch strings.ToLower(fields[0]) {
	case "list":
		if len(fields) != 2 {
			return "ERROR usage: list PATH"
		}
		out, err := t.List(fields[1])
		if err != nil {
			return commandError(err)
		}
		return "OK " + out

	case "create":
		if len(fields) != 2 {
			return "ERROR usage: create PATH"
		}
		if err := t.Create(fields[1]); err != nil {
			return commandError(err)
		}
		return "OK"

	case "remove":
		if len(fields) != 2 {
			return "ERROR usage: remove PATH"
		}
		if err := t.Remove(fields[1]); err != nil {
			return commandError(err)
		}
		return "OK"

	case "move":
		if len(fields) != 3 {
			return "ERROR usage: move SOURCE TARGET"
		}
		if err := t.Move(fields[1], fields[2]); err != nil {
			return commandError(err)
		}
		return "OK"

	default:
		return fmt.Sprintf("ERROR unknown command %q", fields[0])
	}
}

func commandError(err error) string {
	return "ERROR " + err.Error()
}
