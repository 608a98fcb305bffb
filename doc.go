// Package wslgo launches commands inside Windows Subsystem for Linux
// distributions and captures their output.
//
// wslgo drives wslapi.dll directly. Each captured launch creates a pipe per
// output stream, starts the command through WslLaunch, drains both streams
// concurrently with overlapped reads, and waits for the process under a
// timeout. Every handle opened for a launch is closed exactly once, whatever
// the outcome.
//
// # Basic Usage
//
//	d, err := wslgo.New("Ubuntu")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, err := d.Run(ctx, "uname -a")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(out.Stdout)
//
// Launch returns the raw bytes instead of decoded strings. A command the WSL
// service refuses to start is not an error: Result.HResult holds the code and
// ExitCode is ExitLaunchFailed. A command that outlives its timeout is
// terminated and reported with ExitTimeout.
//
// # Configuration
//
// New starts from DefaultConfig. Options override it:
//
//	cfg, err := wslgo.LoadConfig("wslgo.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	d, err := wslgo.New("", wslgo.WithConfig(cfg.FromEnv()))
//
// # Environment Variables
//
//	WSLGO_DISTRIBUTION  distribution used when New is given ""
//	WSLGO_TIMEOUT       wait bound, as "45s" or milliseconds
//	WSLGO_NO_CWD        start in the user's home instead of the caller's directory
//	WSLGO_INTERACTIVE   attach every launch to the console
//	WSLGO_DEBUG         debug logging
//	WSLGO_LOG_DEST      "file:/path" or "both:/path"
//	WSLGO_LOG_JSON      JSON log records
//	WSLGO_IO_WRAP       prefix echoed output lines with [out] and [err]
//
// # Distribution Settings
//
// Configuration, Configure, SetFlag and SetDefaultUID read and change a
// distribution's registered settings. FlagWSL2 is read-only.
package wslgo
