// Command xslcc is the batch CLI entry point for this module: it
// compiles one XSLT 3.0 stylesheet or package source file and reports
// the resulting aggregate's shape plus its streamability classification,
// or a static error if compilation failed. Structured the same way the
// teacher's cmd/angle does -- a github.com/midbel/cli.CommandTrie root
// dispatching flag.FlagSet-parsing Run(args) commands -- generalized
// from angle's xml/schema toolbelt to this module's one real job.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/midbel/cli"
)

var (
	summary = "xslcc compiles XSLT 3.0 stylesheets into an in-memory compiled form"
	help    = ""
)

var errFail = errors.New("fail")

func main() {
	var (
		set  = cli.NewFlagSet("xslcc")
		root = prepare()
	)
	root.SetSummary(summary)
	root.SetHelp(help)
	if err := set.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			root.Help()
			os.Exit(2)
		}
	}
	err := root.Execute(set.Args())
	if err != nil {
		if s, ok := err.(cli.SuggestionError); ok && len(s.Others) > 0 {
			fmt.Fprintln(os.Stderr, "similar command(s)")
			for _, n := range s.Others {
				fmt.Fprintln(os.Stderr, "-", n)
			}
		}
		if !errors.Is(err, errFail) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

var compileCmd = cli.Command{
	Name:    "compile",
	Summary: "compile a stylesheet and report errors",
	Handler: &CompileCmd{},
	Usage:   "compile <file>",
}

var inspectCmd = cli.Command{
	Name:    "inspect",
	Summary: "compile a stylesheet and print its declaration inventory and streamability",
	Handler: &InspectCmd{},
	Usage:   "inspect <file>",
}

func prepare() *cli.CommandTrie {
	root := cli.New()
	root.Register([]string{"compile"}, &compileCmd)
	root.Register([]string{"inspect"}, &inspectCmd)
	return root
}
