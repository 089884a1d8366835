package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/contentlake/contentlake/contentlake/document"
	"github.com/contentlake/contentlake/contentlake/groq"
	"github.com/contentlake/contentlake/internal/cliopt"
	"github.com/contentlake/contentlake/internal/cliutil"
	"github.com/contentlake/contentlake/internal/logger"
)

const replPrompt = "groq> "

const replHelp = `Enter a GROQ expression to evaluate it against the current document.

Commands:
  :doc [JSON]       show or replace the current document
  :params [JSON]    show or replace the parameter object
  :filter EXPR      evaluate EXPR as a filter (true or false)
  :ast EXPR         print the syntax tree
  :tokens EXPR      print the tokens
  :help             show this help
  :quit             leave (also Ctrl+D)`

// Session holds REPL state between lines.
type Session struct {
	Doc    any
	Params map[string]any

	parse groq.ParseOptions
	eval  *groq.Evaluator
}

func NewSession(parse groq.ParseOptions, ev *groq.Evaluator) *Session {
	if ev == nil {
		ev = groq.NewEvaluator(groq.EvalOptions{})
	}
	return &Session{Doc: map[string]any{}, parse: parse, eval: ev}
}

// Handle processes one input line and reports whether the session should end.
func (s *Session) Handle(line string, out io.Writer) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		s.printResult(out, func(expr groq.Expr) (any, error) {
			return s.eval.Eval(expr, s.Doc, s.Params)
		}, line)
		return false
	}

	cmd, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)
	switch cmd {
	case "quit", "q", "exit":
		fmt.Fprintln(out, "Goodbye!")
		return true
	case "help", "h", "?":
		fmt.Fprintln(out, replHelp)
	case "doc":
		if rest == "" {
			writeJSON(out, s.Doc)
			return false
		}
		v, err := document.DecodeValue([]byte(rest))
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return false
		}
		s.Doc = v
		fmt.Fprintln(out, "OK")
	case "params":
		if rest == "" {
			writeJSON(out, s.Params)
			return false
		}
		params, err := document.Decode([]byte(rest))
		if err != nil {
			fmt.Fprintf(out, "error: params: %v\n", err)
			return false
		}
		s.Params = params
		fmt.Fprintln(out, "OK")
	case "filter":
		s.printResult(out, func(expr groq.Expr) (any, error) {
			return s.eval.EvalFilter(expr, s.Doc, s.Params)
		}, rest)
	case "ast":
		expr, err := groq.ParseWithOptions(rest, s.parse)
		if err != nil {
			printError(out, rest, err)
			return false
		}
		writeJSON(out, groq.Tree(expr))
	case "tokens":
		tokens, err := groq.Tokenize(rest)
		if err != nil {
			printError(out, rest, err)
			return false
		}
		for _, tok := range tokens {
			fmt.Fprintf(out, "%d:%d\t%s\t%s\n", tok.Span.Start, tok.Span.End, tok.Kind, tok.Token)
		}
	default:
		fmt.Fprintf(out, "unknown command :%s (try :help)\n", cmd)
	}
	return false
}

func (s *Session) printResult(out io.Writer, run func(groq.Expr) (any, error), input string) {
	expr, err := groq.ParseWithOptions(input, s.parse)
	if err != nil {
		printError(out, input, err)
		return
	}
	v, err := run(expr)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	writeJSON(out, v)
}

// printError points at the failing offset under the input.
func printError(out io.Writer, input string, err error) {
	fmt.Fprintf(out, "  %s\n", input)
	if off := groq.ErrorOffset(err); off >= 0 && off <= len(input) {
		fmt.Fprintf(out, "  %s^\n", strings.Repeat(" ", len([]rune(input[:off]))))
	}
	fmt.Fprintf(out, "error: %v\n", err)
}

func writeJSON(out io.Writer, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(out, string(b))
}

// Complete proposes builtin names and REPL commands for the last word.
func (s *Session) Complete(line string) []string {
	start := strings.LastIndexAny(line, " ([!&|=") + 1
	prefix, word := line[:start], line[start:]
	if word == "" {
		return nil
	}

	var words []string
	if start == 0 && strings.HasPrefix(word, ":") {
		words = []string{":doc", ":params", ":filter", ":ast", ":tokens", ":help", ":quit"}
	} else {
		words = append(groq.DefaultBuiltins().Names(), "true", "false", "null", "defined(", "count(")
	}
	var out []string
	for _, w := range words {
		if strings.HasPrefix(w, word) {
			out = append(out, prefix+w)
		}
	}
	sort.Strings(out)
	return out
}

func NewREPLCmd(g *cliopt.GlobalOptions) *cobra.Command {
	var docArg, paramsArg string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive GROQ evaluator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := NewSession(parseOptions(g, false), evaluator(g))
			if docArg != "" {
				doc, err := cliutil.ReadDocument(docArg, cmd.InOrStdin())
				if err != nil {
					return err
				}
				session.Doc = doc
			}
			params, err := cliutil.ReadParams(paramsArg, cmd.InOrStdin())
			if err != nil {
				return err
			}
			session.Params = params
			return runREPL(session, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&docArg, "doc", "", "initial document JSON")
	cmd.Flags().StringVar(&paramsArg, "params", "", "initial parameters JSON object")
	return cmd
}

func runREPL(session *Session, out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(session.Complete)

	historyFile := filepath.Join(os.TempDir(), ".contentlake_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Fprintln(out, "Type :help for commands, Ctrl+D to quit")
	for {
		input, err := line.Prompt(replPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(out, "^C")
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			logger.Warn("read input", "error", err)
			return err
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if session.Handle(input, out) {
			return nil
		}
	}
}
