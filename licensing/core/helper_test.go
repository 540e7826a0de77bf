package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage "licensedesk.com/licensedesk/core"
	"licensedesk.com/licensedesk/licensing/model"
)

func newTestDatabase(t *testing.T) *storage.DatabaseManager {
	t.Helper()
	dm, err := storage.New(storage.Options{
		Driver:   storage.DriverSQLite,
		DSN:      ":memory:",
		LogLevel: storage.LogLevelSilent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { dm.Close() })
	require.NoError(t, dm.Migrate(context.Background(), &model.License{}, &model.AdminUser{}))
	return dm
}

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	return NewGormStore(newTestDatabase(t))
}

func mustCreate(t *testing.T, store Store, serial string, program string, status model.Status) *model.License {
	t.Helper()
	input := CreateInput{SerialNumber: serial, Status: status}
	if program != "" {
		input.ProgramName = &program
	}
	license, err := store.CreateSerial(context.Background(), input)
	require.NoError(t, err)
	return license
}

// assertBindingConsistent checks device_id set <=> active <=> activation_date set.
func assertBindingConsistent(t *testing.T, store Store, serial string) {
	t.Helper()
	license, err := store.GetBySerial(context.Background(), serial)
	require.NoError(t, err)
	require.NotNil(t, license)
	bound := license.DeviceID != nil
	assert.Equal(t, bound, license.Active, "active must follow device_id")
	assert.Equal(t, bound, license.ActivationDate != nil, "activation_date must follow device_id")
}

type recordingNotifier struct {
	events []Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, event Event) error {
	n.events = append(n.events, event)
	return n.err
}

type recordingObserver struct {
	checks      map[string]int
	transitions map[EventKind]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{checks: map[string]int{}, transitions: map[EventKind]int{}}
}

func (o *recordingObserver) ObserveCheck(outcome string) { o.checks[outcome]++ }

func (o *recordingObserver) ObserveTransition(kind EventKind) { o.transitions[kind]++ }
