package daemon

import (
	"bytes"
	"encoding/json"

	"github.com/clusterhack/argononed/internal/notify"
	"github.com/clusterhack/argononed/internal/ui"
	"github.com/natefinch/atomic"
)

// stateFileSink mirrors the daemon status to a JSON file on every
// notification. The file is replaced atomically, so readers never observe a
// partially written snapshot.
type stateFileSink struct {
	daemon *Daemon
	path   string
}

func newStateFileSink(d *Daemon, path string) *stateFileSink {
	return &stateFileSink{
		daemon: d,
		path:   path,
	}
}

func (s *stateFileSink) Notify(message notify.Message) {
	data, err := json.Marshal(s.daemon.Status())
	if err != nil {
		ui.Warning("Unable to marshal state snapshot: %v", err)
		return
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		ui.Warning("Unable to write state file %s: %v", s.path, err)
	}
}
