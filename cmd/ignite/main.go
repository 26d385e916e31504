// Command ignite is a thin CLI front-end over the pkg/ignite library,
// exposing the store's get/set/rm verbs against the current working
// directory. It carries no logic of its own beyond argument dispatch
// and exit-status translation — every semantic decision lives in the
// engine it opens.
package main

import (
	"fmt"
	"os"

	"github.com/iamNilotpal/ignitedb/pkg/ignite"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: ignite <get|set|rm> ...")
		os.Exit(1)
	}

	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignite: %v\n", err)
		os.Exit(1)
	}

	db, err := ignite.Open(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignite: %v\n", err)
		os.Exit(1)
	}

	code := run(db, os.Args[1:])
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "ignite: %v\n", err)
		code = 1
	}
	os.Exit(code)
}

func run(db *ignite.DB, args []string) int {
	switch args[0] {
	case "get":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: ignite get KEY")
			return 1
		}
		return cmdGet(db, args[1])

	case "set":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "usage: ignite set KEY VALUE")
			return 1
		}
		return cmdSet(db, args[1], args[2])

	case "rm":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: ignite rm KEY")
			return 1
		}
		return cmdRemove(db, args[1])

	default:
		fmt.Fprintf(os.Stderr, "ignite: unknown command %q\n", args[0])
		return 1
	}
}

func cmdGet(db *ignite.DB, key string) int {
	value, ok, err := db.Get(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignite: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Println("Key not found")
		return 0
	}
	fmt.Println(value)
	return 0
}

func cmdSet(db *ignite.DB, key, value string) int {
	if err := db.Set(key, value); err != nil {
		fmt.Fprintf(os.Stderr, "ignite: %v\n", err)
		return 1
	}
	return 0
}

func cmdRemove(db *ignite.DB, key string) int {
	if err := db.Remove(key); err != nil {
		if err == ignite.ErrKeyNotFound {
			fmt.Println("Key not found")
			return 1
		}
		fmt.Fprintf(os.Stderr, "ignite: %v\n", err)
		return 1
	}
	return 0
}
