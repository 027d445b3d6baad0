// Package repository clones and updates the local backup copy of a single
// remote repository by shelling out to the git binary.
//
// New repositories are mirror cloned (`git clone --mirror`) so everything in
// `refs/*` on the remote is captured directly, and a marker file is written
// at clone time so later runs can tell mirror clones apart without querying
// git config. Existing clones are updated in place: mirror clones are
// fetched with prune and forced tags, regular clones are reset onto the
// best available remote branch first (the reported default branch, then
// main, then master, then whatever git enumerates first).
//
// Every git invocation takes an explicit working directory, the package
// never changes the process working directory, so repositories can be
// synced concurrently.
//
// # Logging:
//
// package takes slog reference for logging and prints logs up to 'trace' level
//
// Example:
//
//	loggerLevel  = new(slog.LevelVar)
//	levelStrings = map[string]slog.Level{
//		"trace": slog.Level(-8),
//		"debug": slog.LevelDebug,
//		"info":  slog.LevelInfo,
//		"warn":  slog.LevelWarn,
//		"error": slog.LevelError,
//	}
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//		Level: loggerLevel,
//	}))
//	loggerLevel.Set(levelStrings["trace"])
//
//	repo, err := repository.New(desc, orgDir, auth, nil, logger)
//	if err != nil {
//		panic(err)
//	}
package repository
