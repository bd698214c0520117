package configuration

type PowerButtonConfig struct {
	// Whether the monitor starts with reboot command issuing enabled. Button
	// monitoring and event notifications run either way, and a shutdown press
	// always issues the shutdown command since the board cuts power on its
	// own shortly after.
	Enabled bool `json:"enabled"`
	// Command to run on a reboot press, e.g. "/usr/bin/systemctl reboot".
	RebootCmd string `json:"rebootCmd"`
	// Command to run on a shutdown press.
	ShutdownCmd string `json:"shutdownCmd"`
}
