package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"neurita/arbor/internal/db"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Import, export, inspect and render CATMAID neuron reconstructions",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .arbor.db database")
}

// DiscoverDB finds the database path using priority: env > flag > walk-up > XDG fallback
func DiscoverDB() (string, error) {
	// 1. Environment variable
	if envPath := os.Getenv("ARBOR_DB"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	// 2. CLI flag
	if dbPath != "" {
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath, nil
		}
		return "", fmt.Errorf("database not found at --db path: %s", dbPath)
	}

	// 3. Walk up from CWD
	dir, err := os.Getwd()
	if err == nil {
		for {
			candidate := filepath.Join(dir, ".arbor.db")
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	// 4. XDG fallback
	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".local", "share", "arbor", "arbor.db")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("no .arbor.db found (set ARBOR_DB, use --db, or run from a directory containing .arbor.db)")
}

// OpenDatabase discovers and opens an existing database
func OpenDatabase() (*db.DB, error) {
	path, err := DiscoverDB()
	if err != nil {
		return nil, err
	}
	return db.OpenDB(path)
}

// OpenOrCreateDatabase opens the discovered database, creating .arbor.db
// in the current directory when none exists yet. Used by commands that
// write neurons into the store.
func OpenOrCreateDatabase() (*db.DB, error) {
	path, err := DiscoverDB()
	if err != nil {
		path = ".arbor.db"
		if dbPath != "" {
			path = dbPath
		}
	}
	return db.OpenDB(path)
}
