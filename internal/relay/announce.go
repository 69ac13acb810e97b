package relay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// signalFileName is the cross-process mailbox next to the database. A CLI
// save writes it; a running daemon watches it. A daemon that is not running
// simply never reads the file, which is the documented best-effort delivery.
const signalFileName = "scrollstop.signal"

// envelope is the on-disk signal format. The timestamp makes consecutive
// identical signals produce distinct file contents so a write event always
// fires.
type envelope struct {
	Type Signal `json:"type"`
	At   int64  `json:"at"`
}

// SignalPath returns the signal file path for a data directory.
func SignalPath(dir string) string {
	return filepath.Join(dir, signalFileName)
}

// Announce writes the signal file for other processes to observe.
func Announce(dir string, sig Signal) error {
	data, err := json.Marshal(envelope{Type: sig, At: time.Now().UnixNano()})
	if err != nil {
		return fmt.Errorf("encode signal: %w", err)
	}
	if err := os.WriteFile(SignalPath(dir), data, 0o644); err != nil {
		return fmt.Errorf("write signal file: %w", err)
	}
	return nil
}

// readSignal parses the signal file, defaulting to SignalSettingsUpdated for
// unreadable or unknown content: any change means "reload".
func readSignal(path string) Signal {
	data, err := os.ReadFile(path)
	if err != nil {
		return SignalSettingsUpdated
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return SignalSettingsUpdated
	}
	switch env.Type {
	case SignalSettingsUpdated, SignalStatsReset:
		return env.Type
	default:
		return SignalSettingsUpdated
	}
}
