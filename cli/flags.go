package cli

var (
	verbose bool
	logJSON bool

	// for recognize and config commands
	configPath string

	// for synth commands
	synthDuration  int
	synthOutput    string
	synthRecognize bool

	// for watch command
	watchCellWidth  float64
	watchCellHeight float64
	watchRecordPath string
)
