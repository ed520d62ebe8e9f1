package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/midbel/xslt3c/compiler"
)

// CompileCmd compiles a single stylesheet and reports success or the
// static error that stopped it, matching the teacher's CheckCmd
// (cmd/angle/check.go) in spirit: exit non-zero and print the failure
// rather than attempt any recovery.
type CompileCmd struct{}

func (c *CompileCmd) Run(args []string) error {
	set := flag.NewFlagSet("compile", flag.ContinueOnError)
	if err := set.Parse(args); err != nil {
		return err
	}
	if set.NArg() == 0 {
		return fmt.Errorf("compile: no stylesheet file given")
	}
	sheet, err := compiler.New().CompileFile(set.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return errFail
	}
	fmt.Printf("%s: compiled ok (%d template rule(s), xslt %s)\n", set.Arg(0), len(sheet.Templates()), sheet.Version())
	return nil
}
