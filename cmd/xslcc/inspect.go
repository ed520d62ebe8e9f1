package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/midbel/xslt3c/compiler"
	"github.com/midbel/xslt3c/stream"
	"github.com/midbel/xslt3c/xslpkg"
)

// InspectCmd compiles a stylesheet and prints a summary of every
// declaration kind spec.md §3 enumerates, plus the stylesheet-level
// streamability classification (spec.md §4.11), to stdout -- the
// diagnostic counterpart to CompileCmd's pass/fail report.
type InspectCmd struct{}

func (c *InspectCmd) Run(args []string) error {
	set := flag.NewFlagSet("inspect", flag.ContinueOnError)
	if err := set.Parse(args); err != nil {
		return err
	}
	if set.NArg() == 0 {
		return fmt.Errorf("inspect: no stylesheet file given")
	}

	sheet, isPackage, name, version, err := compiler.New().CompilePackageFile(set.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return errFail
	}

	if isPackage {
		pkg := xslpkg.NewPackage(name, version, sheet, nil)
		fmt.Printf("package:         %s (version %s)\n", pkg.Name, pkg.Version)
		fmt.Printf("complete:        %t\n", pkg.IsComplete())
	}

	fmt.Printf("version:         %s\n", sheet.Version())
	fmt.Printf("templates:       %d\n", len(sheet.Templates()))
	fmt.Printf("variables:       %d\n", len(sheet.Variables()))
	fmt.Printf("attribute-sets:  %d\n", len(sheet.AttributeSets()))
	fmt.Printf("functions:       %d\n", len(sheet.Functions()))
	fmt.Printf("modes:           %d\n", len(sheet.Modes()))
	fmt.Printf("output method:   %s\n", sheet.Output().Method)

	result := stream.AnalyzeStylesheet(sheet, nil)
	fmt.Printf("streamability:   %s (buffering: %s)\n", result.Capability, result.Buffering)
	for _, reason := range result.Reasons {
		fmt.Printf("  - %s\n", reason)
	}
	return nil
}
