package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"warpgate.gg/internal/gui/icons"
	"warpgate.gg/internal/gui/paneldef"
	persistlog "warpgate.gg/internal/persistence/log"
	"warpgate.gg/internal/warps"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "warps":
			warpsCmd(os.Args[2:])
			return
		case "audit":
			auditCmd(os.Args[2:])
			return
		case "panels":
			panelsCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: admin <warps|audit|panels> [flags]")
	os.Exit(2)
}

func openStore(dataDir, dbPath string) *warps.SQLiteStore {
	db := strings.TrimSpace(dbPath)
	if db == "" {
		db = filepath.Join(dataDir, "warps.db")
	}
	store, err := warps.OpenSQLite(db)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open db:", err)
		os.Exit(1)
	}
	return store
}

func warpsCmd(args []string) {
	fs := flag.NewFlagSet("warps", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	dbPath := fs.String("db", "", "warp database path (default: <data>/warps.db)")
	owner := fs.String("owner", "", "filter to one owner id")
	publicOnly := fs.Bool("public", false, "list the public directory instead of an owner's warps")
	_ = fs.Parse(args)

	if *owner == "" && !*publicOnly {
		fmt.Fprintln(os.Stderr, "need -owner or -public")
		os.Exit(2)
	}

	store := openStore(*dataDir, *dbPath)
	defer store.Close()

	ctx := context.Background()
	var (
		list []warps.Warp
		err  error
	)
	if *publicOnly {
		list, err = store.FindPublic(ctx)
	} else {
		list, err = store.FindOwned(ctx, *owner)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}

	for _, w := range list {
		vis := "private"
		if w.Public {
			vis = "public"
		}
		fmt.Printf("%s  %-16s %-8s %s %s  owner=%s(%s)\n",
			w.ID, w.Name, vis, w.World, w.Coords(), w.OwnerName, w.OwnerID)
	}
	fmt.Printf("%d warps\n", len(list))
}

func auditCmd(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	user := fs.String("user", "", "filter to one user id")
	kind := fs.String("type", "", "filter to one entry type (JOIN, LEAVE, OPEN, CLICK)")
	_ = fs.Parse(args)

	entries, err := persistlog.ReadAudit(*dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read audit:", err)
		os.Exit(1)
	}

	shown := 0
	for _, e := range entries {
		if *user != "" && e.UserID != *user {
			continue
		}
		if *kind != "" && e.Type != strings.ToUpper(*kind) {
			continue
		}
		line := fmt.Sprintf("%s %-5s user=%s", e.At, e.Type, e.UserID)
		if e.Panel != "" {
			line += " panel=" + e.Panel
		}
		if e.Type == "CLICK" {
			line += fmt.Sprintf(" cell=%d", e.Cell)
		}
		if e.WarpID != "" {
			line += " warp=" + e.WarpID
		}
		if len(e.Actions) > 0 {
			line += " actions=" + strings.Join(e.Actions, ",")
		}
		fmt.Println(line)
		shown++
	}
	fmt.Printf("%d entries\n", shown)
}

// panelsCmd lint-loads the config directory the same way the server does, so
// a broken panel is caught before a deploy rather than at the first open.
func panelsCmd(args []string) {
	fs := flag.NewFlagSet("panels", flag.ExitOnError)
	configDir := fs.String("configs", "./configs", "config directory")
	_ = fs.Parse(args)

	logger := log.New(os.Stderr, "[panels] ", 0)

	cat, err := icons.Load(filepath.Join(*configDir, "icons.json"), icons.NoSkins{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "icons:", err)
		os.Exit(1)
	}
	set, err := paneldef.Load(filepath.Join(*configDir, "panels"), logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "panels:", err)
		os.Exit(1)
	}

	names := make([]string, 0, len(set.ByName))
	for name := range set.ByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		def := set.ByName[name]
		status := "ok"
		if !def.Renderable() {
			status = "EMPTY LAYOUT"
		}
		fmt.Printf("%-20s rows=%d items=%d slots=%d %s\n",
			name, def.Rows(), len(def.Items), def.ListingCapacity(), status)
		for _, it := range def.Items {
			if !strings.HasPrefix(it.Icon, icons.HeadPrefix) && it.Icon != "" && !cat.Known(it.Icon) {
				fmt.Printf("  warn: item %q icon %q not in catalog (will fall back to %s)\n",
					string(it.Symbol), it.Icon, icons.Fallback)
			}
		}
	}
	fmt.Printf("panels digest: %s\n", set.Digest)
	fmt.Printf("icons digest:  %s\n", cat.Digest)
}
