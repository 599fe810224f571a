package snscript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// name of the function the repl wraps expression input in
const replFuncName = "__repl"

var dotCommands = []string{".quit", ".dump", ".ls", ".reset", ".trace", ".run", ".verb"}

// Session is the state of a repl: the declarations accepted so far.
// Every evaluation rebuilds the whole session from source, so the
// top-level statements of earlier declarations run again each time.
type Session struct {
	cfg   *Config
	decls []string
	out   io.Writer
	limit Limits
	trace io.Writer
	last  *Program
}

func NewSession(cfg *Config, out io.Writer) *Session {
	if out == nil {
		out = os.Stdout
	}
	return &Session{cfg: cfg, out: out, limit: cfg.Limits()}
}

func (s *Session) SetTrace(w io.Writer) { s.trace = w }

// Tracing reports whether frame tracing is on.
func (s *Session) Tracing() bool { return s.trace != nil }

func (s *Session) Reset() {
	s.decls = nil
	s.last = nil
}

// Declarations returns the accepted declarations in order.
func (s *Session) Declarations() []string {
	return append([]string(nil), s.decls...)
}

// Last is the program built by the most recent Eval, if any.
func (s *Session) Last() *Program { return s.last }

func (s *Session) program(src string) (*Program, error) {
	p, err := NewProgramWithBuiltins([]byte(src), builtinsFor(s.cfg, s.out))
	if err != nil {
		return nil, err
	}
	p.Filename = "<repl>"
	p.Limits = s.limit
	p.MainOptional = true
	p.SetTrace(s.trace)
	return p, nil
}

// isDeclaration reports whether top-level form id of p is a let, const,
// fn or pure form.
func (p *Program) isDeclaration(id ExprID) bool {
	x := p.tree.Node(id)
	if x.Type != ExprList || len(x.Children) == 0 {
		return false
	}
	head := p.tree.Node(x.Children[0])
	if head.Type != ExprSymbol {
		return false
	}
	switch p.keywords[head.Sym] {
	case KindLetKeyword, KindConstKeyword, KindFnKeyword, KindPureKeyword:
		return true
	}
	return false
}

// Eval evaluates one chunk of repl input. Input made only of
// declarations is added to the session once it builds and runs; any
// other input runs as the body of a throwaway function and its value
// is returned. Error positions are relative to input.
func (s *Session) Eval(input string) (Value, error) {
	probe, err := NewProgramWithBuiltins([]byte(input), nil)
	if err != nil {
		return Null, err
	}
	kids := probe.tree.Root().Children
	if len(kids) == 0 {
		return Null, nil
	}
	allDecls := true
	for _, k := range kids {
		if !probe.isDeclaration(k) {
			allDecls = false
			break
		}
	}

	prefix := strings.Join(s.decls, "\n")
	offset := 0
	if prefix != "" {
		prefix += "\n"
		offset = strings.Count(prefix, "\n")
	}

	if allDecls {
		p, err := s.program(prefix + input)
		if err != nil {
			return Null, shiftError(err, offset)
		}
		s.last = p
		VPrintf("repl: building session of %d declarations", len(s.decls)+1)
		if _, err = p.Run(); err != nil {
			return Null, shiftError(err, offset)
		}
		s.decls = append(s.decls, input)
		return Null, nil
	}

	src := prefix + "(fn (" + replFuncName + ")\n" + input + "\n)"
	p, err := s.program(src)
	if err != nil {
		return Null, shiftError(err, offset+1)
	}
	s.last = p
	v, err := p.Call(replFuncName)
	return v, shiftError(err, offset+1)
}

// shiftError moves an error's line back by n lines, so it points into
// the repl input rather than the assembled session source.
func shiftError(err error, n int) error {
	var e *Error
	if n == 0 || !errors.As(err, &e) || e.Line <= n {
		return err
	}
	shifted := *e
	shifted.Line -= n
	return &shifted
}

// NB at the moment this doesn't track comment state past ;;
// so a paren inside a comment is ignored, but nothing else is.
func isBalanced(str string) bool {
	depth := 0
	for _, line := range strings.Split(str, "\n") {
		if i := strings.Index(line, ";;"); i >= 0 {
			line = line[:i]
		}
		for _, c := range line {
			switch c {
			case '(', '{':
				depth++
			case ')', '}':
				depth--
			}
		}
	}
	return depth <= 0
}

var continuationPrompt = "... "

func getLine(reader *bufio.Reader) (string, error) {
	line := make([]byte, 0)
	for {
		linepart, hasMore, err := reader.ReadLine()
		if err != nil {
			return "", err
		}
		line = append(line, linepart...)
		if !hasMore {
			break
		}
	}
	return string(line), nil
}

// lineSource yields repl input lines from liner or a plain reader.
type lineSource struct {
	pr     *Prompter
	reader *bufio.Reader
	out    io.Writer
}

func (ls *lineSource) read(prompt string) (string, error) {
	if ls.pr != nil {
		return ls.pr.Getline(&prompt)
	}
	fmt.Fprint(ls.out, prompt)
	return getLine(ls.reader)
}

// getExpression reads lines until the parens and braces balance.
func (ls *lineSource) getExpression(prompt string) (string, error) {
	line, err := ls.read(prompt)
	if err != nil {
		return "", err
	}
	for !isBalanced(line) {
		next, err := ls.read(continuationPrompt)
		if err != nil {
			return "", err
		}
		line += "\n" + next
	}
	return line, nil
}

// Repl reads, evaluates and prints until end of input or .quit. With
// cfg.ExitOnFailure set it stops at the first error and returns it.
func Repl(cfg *Config, in io.Reader, out, errOut io.Writer) error {
	session := NewSession(cfg, out)
	if cfg.Trace {
		session.SetTrace(errOut)
	}

	ls := &lineSource{out: out}
	if cfg.NoLiner {
		// reader is used if one wishes to drop the liner library.
		// Useful for not full terminal env, like under test.
		ls.reader = bufio.NewReader(in)
	} else {
		ls.pr = NewPrompter(cfg.Prompt, cfg.HistoryFile)
		defer ls.pr.Close()
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "snscript version %s\n", Version())
		fmt.Fprintf(out, "press tab to get completion suggestions. Ctrl-d to exit.\n")
	}
	colored := cfg.Color == "on"
	if f, ok := errOut.(*os.File); ok {
		colored = UseColor(cfg.Color, f)
	}

	for {
		line, err := ls.getExpression(cfg.Prompt)
		if err != nil {
			if err != io.EOF {
				fmt.Fprintln(errOut, err)
				return err
			}
			return nil
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case ".quit":
			return nil
		case ".reset":
			session.Reset()
			fmt.Fprintf(out, "session cleared.\n")
			continue
		case ".ls":
			for _, d := range session.Declarations() {
				fmt.Fprintln(out, d)
			}
			if p := session.Last(); p != nil && p.Scopes() != nil {
				fmt.Fprint(out, p.Scopes().Show(p.Global()))
			}
			continue
		case ".dump":
			if p := session.Last(); p != nil {
				if err := p.DumpLayout(out); err != nil {
					fmt.Fprintln(errOut, err)
				}
				fmt.Fprintln(out)
			}
			continue
		case ".trace":
			if session.Tracing() {
				session.SetTrace(nil)
			} else {
				session.SetTrace(errOut)
			}
			fmt.Fprintf(out, "trace: %v.\n", session.Tracing())
			continue
		case ".verb":
			Verbose = !Verbose
			fmt.Fprintf(out, "verbose: %v.\n", Verbose)
			continue
		case ".run":
			line = "(main)"
			if len(parts) > 1 {
				line = "(main " + parts[1] + ")"
			}
		}

		v, err := session.Eval(line)
		if err != nil {
			WriteError(errOut, []byte(line), "", err, colored)
			if cfg.ExitOnFailure {
				return err
			}
			continue
		}
		if !v.IsNull() {
			fmt.Fprintln(out, v.String())
		}
	}
}

// LoadProgram reads and parses path with settings from cfg.
func LoadProgram(cfg *Config, path string, out io.Writer) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := NewProgramWithBuiltins(src, builtinsFor(cfg, out))
	if err != nil {
		return nil, &sourceError{src: src, err: err}
	}
	p.Filename = path
	p.Limits = cfg.Limits()
	if cfg.Trace {
		p.SetTrace(os.Stderr)
	}
	return p, nil
}

// sourceError carries the source text along with a parse error so the
// caller can still render a diagnostic.
type sourceError struct {
	src []byte
	err error
}

func (e *sourceError) Error() string { return e.err.Error() }
func (e *sourceError) Unwrap() error { return e.err }

// ReportError writes err for the program loaded from filename.
func ReportError(cfg *Config, p *Program, filename string, err error) {
	var src []byte
	var se *sourceError
	if errors.As(err, &se) {
		src = se.src
	} else if p != nil {
		src = p.Source()
	}
	WriteError(os.Stderr, src, filename, err, UseColor(cfg.Color, os.Stderr))
	if cfg.Trace && p != nil {
		fmt.Fprint(os.Stderr, p.GetStackTrace(err))
	}
}

// RunFile builds and runs the main of the program in path. args holds
// the optional integer argument for main.
func RunFile(cfg *Config, path string, args []string) (Value, error) {
	p, err := LoadProgram(cfg, path, os.Stdout)
	if err != nil {
		ReportError(cfg, nil, path, err)
		return Null, err
	}
	defer p.Close()

	var arg *Value
	if len(args) > 0 {
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			err = fmt.Errorf("argument to main must be an integer: %w", err)
			ReportError(cfg, p, path, err)
			return Null, err
		}
		v := Int(n)
		arg = &v
	}

	v, err := p.RunMain(arg)
	if err != nil {
		ReportError(cfg, p, path, err)
	}

	if cfg.SavePath != "" || cfg.JSON {
		report := NewRunReport(p, v, err)
		if cfg.SavePath != "" {
			if serr := SaveReport(cfg.SavePath, report); serr != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", serr)
				if err == nil {
					err = serr
				}
			}
		}
		if cfg.JSON {
			js, jerr := report.JSON()
			if jerr != nil {
				return v, jerr
			}
			fmt.Fprintf(os.Stdout, "%s\n", js)
			return v, err
		}
	}
	if err == nil && !v.IsNull() {
		fmt.Fprintln(os.Stdout, v.String())
	}
	return v, err
}

// EvalString evaluates expressions as a one-shot repl input.
func EvalString(cfg *Config, expr string) (Value, error) {
	s := NewSession(cfg, os.Stdout)
	if cfg.Trace {
		s.SetTrace(os.Stderr)
	}
	return s.Eval(expr)
}

// ReplMain is like main() for a standalone interpreter, now in library.
// It returns the process exit code.
func ReplMain(cfg *Config, args []string) int {
	if cfg.CpuProfile != "" {
		f, err := os.Create(cfg.CpuProfile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		err = pprof.StartCPUProfile(f)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}
	defer writeMemProfile(cfg)

	if cfg.Command != "" {
		v, err := EvalString(cfg, cfg.Command)
		if err != nil {
			WriteError(os.Stderr, []byte(cfg.Command), "-c", err, UseColor(cfg.Color, os.Stderr))
			return 1
		}
		if !v.IsNull() {
			fmt.Println(v.String())
		}
		return 0
	}

	if len(args) > 0 {
		if _, err := RunFile(cfg, args[0], args[1:]); err != nil {
			return 1
		}
		return 0
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		cfg.NoLiner = true
	}
	if err := Repl(cfg, os.Stdin, os.Stdout, os.Stderr); err != nil {
		return 1
	}
	return 0
}

func writeMemProfile(cfg *Config) {
	if cfg.MemProfile == "" {
		return
	}
	f, err := os.Create(cfg.MemProfile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer f.Close()
	if err = pprof.Lookup("heap").WriteTo(f, 1); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
