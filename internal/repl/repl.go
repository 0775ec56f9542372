// Copyright 2014 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package repl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/cayleygraph/gremsql/clog"
	"github.com/cayleygraph/gremsql/internal/catalog"
	"github.com/cayleygraph/gremsql/query"
)

func trace(s string) (string, time.Time) {
	return s, time.Now()
}

func un(w io.Writer, s string, startTime time.Time) {
	endTime := time.Now()

	fmt.Fprintf(w, s, float64(endTime.UnixNano()-startTime.UnixNano())/float64(1e6))
}

// Explain prints statements a traversal compiles to.
func Explain(ctx context.Context, w io.Writer, ses *query.Session, lang, qu string) error {
	e, err := ses.Compile(ctx, lang, qu)
	if err != nil {
		return err
	}
	for _, st := range e.Statements {
		fmt.Fprintln(w, st.SQL)
		if len(st.Args) != 0 {
			data, _ := json.Marshal(st.Args)
			fmt.Fprintf(w, "-- args: %s\n", data)
		}
	}
	return nil
}

// Run compiles and executes a traversal and prints each result row as a JSON object.
func Run(ctx context.Context, w io.Writer, ses *query.Session, lang, qu string) error {
	nResults := 0
	startTrace, startTime := trace("Elapsed time: %g ms\n\n")
	defer func() {
		if nResults > 0 {
			un(w, startTrace, startTime)
		}
	}()
	fmt.Fprintf(w, "\n")
	res, err := ses.Query(ctx, lang, qu, false)
	if err != nil {
		return err
	}
	for _, row := range res.Maps() {
		data, err := json.Marshal(row)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\n", data)
		nResults++
	}
	if nResults > 0 {
		results := "Result"
		if nResults > 1 {
			results += "s"
		}
		fmt.Fprintf(w, "-----------\n%d %s\n", nResults, results)
	} else if res.Affected > 0 {
		fmt.Fprintf(w, "%d rows affected\n", res.Affected)
	}
	return nil
}

const (
	defaultLanguage = "js"

	ps1 = "gremsql> "
	ps2 = "...      "

	history = ".gremsql_history"
)

// Config is a configuration of an interactive shell.
type Config struct {
	Session *query.Session
	// Catalog is used by :save, :run and :list commands. Optional.
	Catalog  *catalog.Catalog
	Language string
	Timeout  time.Duration
	// Explain prints SQL instead of running queries.
	Explain bool
}

type shell struct {
	c    Config
	w    io.Writer
	lang string
}

func (s *shell) exec(ctx context.Context, qu string) error {
	if s.c.Explain {
		return Explain(ctx, s.w, s.c.Session, s.lang, qu)
	}
	return Run(ctx, s.w, s.c.Session, s.lang, qu)
}

// command runs a shell command. It returns false if the line is not a command.
func (s *shell) command(ctx context.Context, line string) bool {
	cmd, args := splitLine(line)
	args = strings.TrimSpace(args)
	switch cmd {
	case ":debug":
		var (
			debug bool
			err   error
		)
		switch args {
		case "t":
			debug = true
		case "f":
			// Do nothing.
		default:
			debug, err = strconv.ParseBool(args)
			if err != nil {
				fmt.Fprintf(s.w, "Error: cannot parse %q as a valid boolean - acceptable values: 't'|'true' or 'f'|'false'\n", args)
				return true
			}
		}
		if debug {
			clog.SetV(2)
		} else {
			clog.SetV(0)
		}
		fmt.Fprintf(s.w, "Debug set to %t\n", debug)
	case ":lang":
		if query.GetLanguage(args) == nil {
			fmt.Fprintf(s.w, "Error: unknown language %q, available: %s\n", args, strings.Join(query.Languages(), ", "))
			return true
		}
		s.lang = args
		fmt.Fprintf(s.w, "Language set to %s\n", args)
	case ":sql":
		if err := Explain(ctx, s.w, s.c.Session, s.lang, args); err != nil {
			fmt.Fprintln(s.w, "Error: ", err)
		}
	case ":save":
		name, text := splitLine(args)
		text = strings.TrimSpace(text)
		if s.c.Catalog == nil || name == "" || text == "" {
			fmt.Fprintln(s.w, "Error: usage :save <name> <traversal>")
			return true
		}
		t, err := s.c.Session.Parse(ctx, s.lang, text)
		if err == nil {
			err = s.c.Catalog.Put(ctx, catalog.Entry{Name: name, Lang: s.lang, Text: text, Traversal: t})
		}
		if err != nil {
			fmt.Fprintln(s.w, "Error: ", err)
			return true
		}
		fmt.Fprintf(s.w, "Saved %q\n", name)
	case ":run":
		if s.c.Catalog == nil {
			fmt.Fprintln(s.w, "Error: no catalog")
			return true
		}
		e, err := s.c.Catalog.Get(ctx, args)
		if err == nil {
			lang := s.lang
			s.lang = e.Lang
			err = s.exec(ctx, e.Text)
			s.lang = lang
		}
		if err != nil {
			fmt.Fprintln(s.w, "Error: ", err)
		}
	case ":list":
		if s.c.Catalog == nil {
			fmt.Fprintln(s.w, "Error: no catalog")
			return true
		}
		list, err := s.c.Catalog.List(ctx)
		if err != nil {
			fmt.Fprintln(s.w, "Error: ", err)
			return true
		}
		for _, e := range list {
			fmt.Fprintf(s.w, "%s\t[%s]\t%s\n", e.Name, e.Lang, e.Text)
		}
	case "help":
		fmt.Fprintf(s.w, "Help\n\texit // Exit\n\thelp // this help\n\t:lang <js|json> // set query language\n"+
			"\t:sql <traversal> // print SQL\n\t:save <name> <traversal> // save traversal\n"+
			"\t:run <name> // run saved traversal\n\t:list // list saved traversals\n\t:debug [t|f]\n")
	default:
		if strings.HasPrefix(cmd, ":") {
			fmt.Fprintf(s.w, "Unknown command: %q\n", cmd)
			return true
		}
		return false
	}
	return true
}

// Repl starts an interactive shell on the terminal.
func Repl(ctx context.Context, c Config) error {
	if c.Language == "" {
		c.Language = defaultLanguage
	}
	if query.GetLanguage(c.Language) == nil {
		return fmt.Errorf("unsupported query language: %q", c.Language)
	}
	s := &shell{c: c, w: os.Stdout, lang: c.Language}

	term, err := terminal(history)
	if os.IsNotExist(err) {
		fmt.Printf("creating new history file: %q\n", history)
	}
	defer persist(term, history)

	var (
		prompt = ps1

		code string
	)

	newCtx := func() (context.Context, func()) { return ctx, func() {} }
	if c.Timeout > 0 {
		newCtx = func() (context.Context, func()) { return context.WithTimeout(ctx, c.Timeout) }
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if len(code) == 0 {
			prompt = ps1
		} else {
			prompt = ps2
		}
		line, err := term.Prompt(prompt)
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return nil
			}
			return err
		}

		term.AppendHistory(line)

		line = strings.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		if code == "" {
			if line == "exit" {
				return nil
			}
			nctx, cancel := newCtx()
			ok := s.command(nctx, line)
			cancel()
			if ok {
				continue
			}
		}

		code += line + "\n"

		nctx, cancel := newCtx()
		err = s.exec(nctx, code)
		cancel()
		if errors.Is(err, query.ErrParseMore) {
			// collect more input
		} else if err != nil {
			fmt.Println("Error: ", err)
			code = ""
		} else {
			code = ""
		}
	}
}

// Splits a line into a command and its arguments
// e.g. ":sql g.V()" will be split into ":sql" and " g.V()"
func splitLine(line string) (string, string) {
	var command, arguments string

	line = strings.TrimSpace(line)

	// An empty line/a line consisting of whitespace contains neither command nor arguments
	if len(line) > 0 {
		command = strings.Fields(line)[0]

		// A line containing only a command has no arguments
		if len(line) > len(command) {
			arguments = line[len(command):]
		}
	}

	return command, arguments
}

func terminal(path string) (*liner.State, error) {
	term := liner.NewLiner()

	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, os.Kill)
		<-c

		err := persist(term, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to properly clean up terminal: %v\n", err)
			os.Exit(1)
		}

		os.Exit(0)
	}()

	f, err := os.Open(path)
	if err != nil {
		return term, err
	}
	defer f.Close()
	_, err = term.ReadHistory(f)
	return term, err
}

func persist(term *liner.State, path string) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0666)
	if err != nil {
		return fmt.Errorf("could not open %q to append history: %v", path, err)
	}
	defer f.Close()
	_, err = term.WriteHistory(f)
	if err != nil {
		return fmt.Errorf("could not write history to %q: %v", path, err)
	}
	return term.Close()
}
