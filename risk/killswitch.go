// Package risk gates trading signals. It owns the kill switch, the
// order-rate limiter, and the monitor that sequences every pre-trade
// check.
package risk

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// KillSwitchError wraps a failure to persist or clear kill-switch
// state. It is the only error in the hot path that callers must not
// swallow: an operator believing the switch is reset when it is not
// would be trading against a dead safety net.
type KillSwitchError struct {
	Op  string
	Err error
}

func (e *KillSwitchError) Error() string {
	return fmt.Sprintf("kill switch %s: %v", e.Op, e.Err)
}

func (e *KillSwitchError) Unwrap() error { return e.Err }

// lockState is the on-disk representation of an active switch.
type lockState struct {
	ActivatedAt time.Time `json:"activated_at"`
	Reason      string    `json:"reason"`
}

// KillSwitchStatus is a point-in-time snapshot for status queries.
type KillSwitchStatus struct {
	Active      bool      `json:"is_active"`
	ActivatedAt time.Time `json:"activation_time,omitzero"`
	Reason      string    `json:"activation_reason,omitempty"`
}

// KillSwitch is a one-way circuit breaker. Once activated it stays
// active, across process restarts, until Reset is called. The lock
// file is the source of truth: a crash-restarted process recovers
// state from the file's existence, never from in-memory defaults.
type KillSwitch struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger

	active      bool
	activatedAt time.Time
	reason      string
}

// NewKillSwitch loads any existing lock file at path. A lock file that
// exists but cannot be parsed still counts as active: when in doubt,
// halt.
func NewKillSwitch(path string, log zerolog.Logger) (*KillSwitch, error) {
	if path == "" {
		return nil, fmt.Errorf("kill switch lock file path is required")
	}

	ks := &KillSwitch{
		path: path,
		log:  log.With().Str("component", "killswitch").Logger(),
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var st lockState
		if jerr := json.Unmarshal(data, &st); jerr != nil {
			ks.active = true
			ks.reason = "unreadable lock file: " + jerr.Error()
			ks.log.Error().Err(jerr).Str("path", path).
				Msg("lock file exists but is unreadable, treating switch as active")
		} else {
			ks.active = true
			ks.activatedAt = st.ActivatedAt
			ks.reason = st.Reason
			ks.log.Warn().Time("activated_at", st.ActivatedAt).Str("reason", st.Reason).
				Msg("kill switch restored active from lock file")
		}
	case os.IsNotExist(err):
		// Inactive start.
	default:
		return nil, &KillSwitchError{Op: "load", Err: err}
	}

	return ks, nil
}

// Activate trips the switch. Returns false without side effects when
// the switch is already active, so repeated trips keep the first
// activation's time and reason.
//
// Persistence is best effort: a failed lock-file write is logged but
// the in-memory state still flips, because a switch that halts trading
// without surviving a restart beats one that never halts at all.
func (k *KillSwitch) Activate(reason string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.active {
		k.log.Warn().Str("reason", reason).Str("active_reason", k.reason).
			Msg("kill switch already active, ignoring duplicate activation")
		return false
	}

	now := time.Now().UTC()
	if err := k.writeLock(lockState{ActivatedAt: now, Reason: reason}); err != nil {
		k.log.Error().Err(err).Str("path", k.path).
			Msg("failed to persist kill switch state, continuing with in-memory halt")
	}

	k.active = true
	k.activatedAt = now
	k.reason = reason

	k.log.WithLevel(zerolog.FatalLevel).Str("reason", reason).
		Msg("KILL SWITCH ACTIVATED, all trading halted")
	return true
}

func (k *KillSwitch) writeLock(st lockState) error {
	f, err := os.OpenFile(k.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	if err := enc.Encode(st); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Reset clears the switch. Resetting an inactive switch is a no-op.
// A lock file that cannot be removed surfaces as *KillSwitchError.
//
// adminToken is carried through for the operator surface but is not
// validated here: authorization for resets belongs to the caller's
// layer, not the safety mechanism itself.
func (k *KillSwitch) Reset(adminToken string) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.active {
		// Remove a stray lock file anyway so disk and memory agree.
		if err := os.Remove(k.path); err != nil && !os.IsNotExist(err) {
			return &KillSwitchError{Op: "reset", Err: err}
		}
		return nil
	}

	if err := os.Remove(k.path); err != nil && !os.IsNotExist(err) {
		k.log.Error().Err(err).Str("path", k.path).
			Msg("failed to remove kill switch lock file, switch remains active")
		return &KillSwitchError{Op: "reset", Err: err}
	}

	k.log.Warn().
		Str("prior_reason", k.reason).
		Time("was_active_since", k.activatedAt).
		Bool("token_supplied", adminToken != "").
		Msg("kill switch reset")

	k.active = false
	k.activatedAt = time.Time{}
	k.reason = ""
	return nil
}

// IsActive reports whether trading is halted. Lock-file presence is
// authoritative; the in-memory flag is ORed in to cover the case where
// activation persisted nothing.
func (k *KillSwitch) IsActive() bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.active {
		return true
	}
	_, err := os.Stat(k.path)
	return err == nil
}

// Status returns an activation snapshot.
func (k *KillSwitch) Status() KillSwitchStatus {
	k.mu.Lock()
	defer k.mu.Unlock()

	return KillSwitchStatus{
		Active:      k.active,
		ActivatedAt: k.activatedAt,
		Reason:      k.reason,
	}
}
