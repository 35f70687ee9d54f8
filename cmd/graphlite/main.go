package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/mwatts/graphlite/engine"
	"github.com/mwatts/graphlite/session"
	"github.com/mwatts/graphlite/store/memory"
)

func main() {
	var queryStr string
	var help bool

	flag.StringVar(&queryStr, "query", "", "run a single GQL statement and exit")
	flag.BoolVar(&help, "h", false, "show help")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "An embedded GQL graph query engine REPL.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                    # interactive mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -query 'MATCH (a) RETURN a'        # run one statement\n", os.Args[0])
	}
	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}

	cache := memory.New()
	sess := session.New()
	sess.Graph = "default"

	if queryStr != "" {
		runStatement(cache, sess, queryStr)
		return
	}
	runInteractive(cache, sess)
}

func runInteractive(cache *memory.Store, sess *session.Session) {
	fmt.Println("=== GraphLite Interactive Mode ===")
	fmt.Println("Commands:")
	fmt.Println("  .help    - Show help")
	fmt.Println("  .exit    - Exit")
	fmt.Println("  <statement>; - Run a GQL statement")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("gql> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == ".exit":
			return
		case line == ".help":
			fmt.Println("Enter a GQL statement (MATCH/INSERT/SET/REMOVE/DELETE/SESSION/START TRANSACTION/...).")
		case line == "":
			continue
		default:
			// A statement may span multiple lines; keep reading until a
			// terminating semicolon, mirroring the bracket-continuation
			// prompt of a line-oriented REPL.
			stmt := line
			for !strings.HasSuffix(strings.TrimSpace(stmt), ";") {
				fmt.Print("  ")
				if !scanner.Scan() {
					return
				}
				stmt += "\n" + scanner.Text()
			}
			runStatement(cache, sess, strings.TrimSuffix(strings.TrimSpace(stmt), ";"))
		}
	}
}

func runStatement(cache *memory.Store, sess *session.Session, src string) {
	rs, err := engine.Submit(src, sess, cache)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		return
	}
	fmt.Println(rs.Table())
}
