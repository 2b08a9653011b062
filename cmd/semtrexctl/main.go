// Command semtrexctl is a thin exerciser for the semtrex packages:
// compile a pattern to its state graph, run it against a tree, print
// it back as surface syntax, or convert a tree between wire formats.
// It is a convenience wrapper around cobra subcommands, not a required
// part of using the library.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/driftwood-labs/semtrex/id"
	"github.com/driftwood-labs/semtrex/internal/config"
	"github.com/driftwood-labs/semtrex/prettyprint"
	"github.com/driftwood-labs/semtrex/semtrex/match"
	"github.com/driftwood-labs/semtrex/semtrex/nfa"
	"github.com/driftwood-labs/semtrex/semtrex/parser"
	binarywire "github.com/driftwood-labs/semtrex/serialize/binary"
	jsonwire "github.com/driftwood-labs/semtrex/serialize/json"
	textwire "github.com/driftwood-labs/semtrex/serialize/text"
	"github.com/driftwood-labs/semtrex/tree"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "semtrexctl",
		Short: "Compile, run, and inspect semtrex patterns",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostics")

	cmd.AddCommand(compileCmd(), matchCmd(), prettyCmd(), convertCmd())
	return cmd
}

// liveRegistry defines a symbol the first time its label is looked
// up, so a standalone CLI invocation never needs a separate labels
// file just to name the things a pattern or tree refers to.
type liveRegistry struct {
	reg *id.Registry
}

func newLiveRegistry() (*liveRegistry, id.Builtins) {
	r := id.NewRegistry()
	b := id.RegisterBuiltins(r)
	return &liveRegistry{reg: r}, b
}

func (l *liveRegistry) SymbolByName(label string) (id.ID, bool) {
	if sym, ok := l.reg.SymbolByName(label); ok {
		return sym, true
	}
	return l.reg.DefineSymbol(0, id.NullStructure, label), true
}

func (l *liveRegistry) LabelOf(i id.ID) (string, bool) {
	return l.reg.LabelOf(i)
}

func compileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compile <pattern>",
		Short: "Parse a pattern and print its compiled state graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, b := newLiveRegistry()
			patternTree, err := parser.Parse(args[0], reg, b)
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			g, err := nfa.Build(patternTree, b)
			if err != nil {
				return fmt.Errorf("compile: %w", err)
			}
			slog.Debug("compiled pattern", "states", len(g.States), "start", g.Start, "accept", g.Accept)
			printGraph(cmd.OutOrStdout(), g, reg)
			return nil
		},
	}
}

func matchCmd() *cobra.Command {
	var (
		captures bool
		lib      string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "match <pattern-file-or-literal> <tree-file>",
		Short: "Match a pattern against a tree loaded from text form",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patternSrc, treeFile := args[0], args[1]

			if lib != "" {
				l, err := config.LoadFromFile(lib)
				if err != nil {
					return err
				}
				p, ok := l.Lookup(name)
				if !ok {
					return config.UnknownPatternError{Name: name}
				}
				patternSrc = p
			}

			reg, b := newLiveRegistry()

			patternTree, err := parser.Parse(patternSrc, reg, b)
			if err != nil {
				return fmt.Errorf("parse pattern: %w", err)
			}
			g, err := nfa.Build(patternTree, b)
			if err != nil {
				return fmt.Errorf("compile pattern: %w", err)
			}

			data, err := os.ReadFile(treeFile)
			if err != nil {
				return fmt.Errorf("read tree: %w", err)
			}
			root, err := textwire.Parse(string(data), reg)
			if err != nil {
				return fmt.Errorf("parse tree: %w", err)
			}

			ok, results := match.Match(g, root)
			slog.Debug("match complete", "matched", ok, "captures", len(results))
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "NO MATCH")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "MATCH")
			if captures {
				printCaptures(cmd.OutOrStdout(), results, reg, 0)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&captures, "captures", false, "print captured groups")
	cmd.Flags().StringVar(&lib, "lib", "", "YAML pattern library to resolve --name from")
	cmd.Flags().StringVar(&name, "name", "", "pattern name within --lib")
	return cmd
}

func prettyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pretty <pattern>",
		Short: "Round-trip a pattern through the pretty-printer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, b := newLiveRegistry()
			patternTree, err := parser.Parse(args[0], reg, b)
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			out, err := prettyprint.Print(patternTree, reg.reg)
			if err != nil {
				return fmt.Errorf("pretty-print: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func convertCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert <tree-file>",
		Short: "Convert a tree between the binary, json, and text wire formats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read: %w", err)
			}
			reg, _ := newLiveRegistry()
			root, err := decodeAny(data, reg)
			if err != nil {
				return fmt.Errorf("decode: %w", err)
			}
			switch strings.ToLower(to) {
			case "binary":
				var buf strings.Builder
				if err := binarywire.Encode(&buf, root); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), buf.String())
			case "json":
				out, err := jsonwire.Marshal(root)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			case "text":
				out, err := textwire.Encode(root, reg)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			default:
				return fmt.Errorf("unknown --to format %q, want binary|json|text", to)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "text", "output format: binary|json|text")
	return cmd
}

// decodeAny sniffs which of the three §6 wire formats data is in —
// JSON and text both start with a printable delimiter byte (`{` or
// `(`), binary never does since its first four bytes are a raw int32
// context field that is rarely both in range and printable.
func decodeAny(data []byte, reg *liveRegistry) (*tree.Node, error) {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case strings.HasPrefix(trimmed, "{"):
		return jsonwire.Unmarshal([]byte(trimmed))
	case strings.HasPrefix(trimmed, "("):
		return textwire.Parse(trimmed, reg)
	default:
		return binarywire.Decode(strings.NewReader(string(data)))
	}
}

var kindNames = map[nfa.Kind]string{
	nfa.KMatch:      "MATCH",
	nfa.KSymbol:     "SYMBOL",
	nfa.KValue:      "VALUE",
	nfa.KAny:        "ANY",
	nfa.KSplit:      "SPLIT",
	nfa.KGroupOpen:  "GROUP_OPEN",
	nfa.KGroupClose: "GROUP_CLOSE",
	nfa.KDescend:    "DESCEND",
	nfa.KNot:        "NOT",
	nfa.KWalk:       "WALK",
}

func printGraph(w io.Writer, g *nfa.Graph, reg *liveRegistry) {
	fmt.Fprintf(w, "start=%d accept=%d\n", g.Start, g.Accept)
	for i, st := range g.States {
		labels := make([]string, len(st.Symbols))
		for j, s := range st.Symbols {
			l, ok := reg.LabelOf(s)
			if !ok {
				l = s.String()
			}
			labels[j] = l
		}
		fmt.Fprintf(w, "%3d: %-11s out=%+v out1=%+v", i, kindNames[st.Kind], st.Out, st.Out1)
		if len(labels) > 0 {
			fmt.Fprintf(w, " symbols=%s", strings.Join(labels, ","))
		}
		fmt.Fprintln(w)
	}
}

func printCaptures(w io.Writer, caps []match.Capture, reg *liveRegistry, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, c := range caps {
		label, ok := reg.LabelOf(c.Symbol)
		if !ok {
			label = c.Symbol.String()
		}
		fmt.Fprintf(w, "%s%s path=%s siblings=%d\n", indent, label, formatPath(c.Path), c.SiblingsCount)
		printCaptures(w, c.Children, reg, depth+1)
	}
}

func formatPath(p tree.Path) string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
