// Command patchexpr is the entry point for this module, adapted from the
// RISC-V emulator's main.go argument-switch dispatch: one binary, several
// subcommands selected by os.Args, no flag package or subcommand framework.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/dcbailey/patchexpr/expr"
	"github.com/dcbailey/patchexpr/patchlsp"
	"github.com/dcbailey/patchexpr/patchserver"
	"github.com/dcbailey/patchexpr/util"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "eval" {
		if len(os.Args) < 3 {
			log.Fatalln("usage: patchexpr eval <expression>")
		}
		runEval(os.Args[2])
	} else if len(os.Args) >= 2 && os.Args[1] == "serve" {
		addr := ":2035"
		if len(os.Args) >= 3 {
			addr = os.Args[2]
		}
		if err := patchserver.ListenAndServe(addr, expr.Collaborators{}); err != nil {
			log.Fatalf("patchserver: %v", err)
		}
	} else if len(os.Args) >= 2 && os.Args[1] == "lsp" {
		if len(os.Args) >= 3 && os.Args[2] == "debug" {
			util.LoggingEnabled = true
		}
		if len(os.Args) >= 3 && os.Args[2] == "tcp" {
			patchlsp.ListenAndServeTCP(":2035")
			return
		}
		patchlsp.ListenAndServe()
	} else if len(os.Args) == 1 {
		// default to TCP mode so the language server can be attached to
		// remotely, the same default the RISC-V emulator's build used.
		patchlsp.ListenAndServeTCP(":2035")
	} else {
		log.Fatalln("Invalid arguments:", os.Args)
	}
}

func runEval(expression string) {
	ctx := &expr.Context{Regs: &expr.RegisterBank{}}
	diags := expr.NewDiagnostics()

	_, val, err := expr.Evaluate(expression, 0, ctx, diags)
	if err != nil {
		log.Fatalf("error: %v", err)
	}

	fmt.Printf("%d (0x%X) [%s]\n", val.Int(), val.Uint(), val.Tag.String())
}
