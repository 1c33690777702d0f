package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"huntd/pkg/logger"
	"huntd/pkg/store"
)

// Offline inspection of a huntd database: dumps every progress record as
// JSON lines. Run against a copy of the DB; pebble takes an exclusive
// lock.
func main() {
	var dbPath string
	var user string
	flag.StringVar(&dbPath, "db", "", "path to the pebble database")
	flag.StringVar(&user, "user", "", "dump only this user's record")
	flag.Parse()
	if dbPath == "" {
		fmt.Fprintln(os.Stderr, "--db required")
		os.Exit(2)
	}

	logger.InitWithLevel("error")
	if err := store.Open(dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", dbPath, err)
		os.Exit(1)
	}
	defer store.Close()

	enc := json.NewEncoder(os.Stdout)
	if user != "" {
		p, err := store.GetProgress(user)
		if err != nil {
			fmt.Fprintf(os.Stderr, "get %s: %v\n", user, err)
			os.Exit(1)
		}
		_ = enc.Encode(p)
		return
	}

	records, err := store.ListProgress()
	if err != nil {
		fmt.Fprintf(os.Stderr, "list: %v\n", err)
		os.Exit(1)
	}
	for _, p := range records {
		_ = enc.Encode(p)
	}
	fmt.Fprintf(os.Stderr, "%d records\n", len(records))
}
