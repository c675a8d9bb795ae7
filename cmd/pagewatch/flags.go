package main

import (
	"flag"
)

type AppFlags struct {
	ConfigFile   string
	PageID       string
	TestNotify   bool
	HistoryPage  string
	HistoryLimit int
}

func ParseFlags() AppFlags {
	configFile := flag.String("config", "", "Path to the global YAML/JSON configuration file. If not set, searches default locations.")
	configFileAlias := flag.String("c", "", "Alias for -config")

	pageID := flag.String("page", "", "Comma-separated page IDs to check instead of every configured page.")
	pageIDAlias := flag.String("p", "", "Alias for -page")

	testNotify := flag.Bool("test-notify", false, "Send a test message to the configured Discord webhook and exit.")

	historyPage := flag.String("history", "", "Print recent change log records for the page with this ID and exit.")
	historyLimit := flag.Int("history-limit", 20, "Maximum number of change log records to print with -history.")

	flag.Parse()

	flags := AppFlags{
		TestNotify:   *testNotify,
		HistoryPage:  *historyPage,
		HistoryLimit: *historyLimit,
	}

	if *configFile != "" {
		flags.ConfigFile = *configFile
	} else if *configFileAlias != "" {
		flags.ConfigFile = *configFileAlias
	}

	if *pageID != "" {
		flags.PageID = *pageID
	} else if *pageIDAlias != "" {
		flags.PageID = *pageIDAlias
	}

	return flags
}
