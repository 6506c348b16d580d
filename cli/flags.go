package cli

var (
	verbose bool

	// for server and simulate commands
	configPath string

	// for server start command
	listenAddr string
	enableCORS bool
	runDaemon  bool

	// for simulate command
	watchScenario bool
)
