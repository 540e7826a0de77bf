package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"licensedesk.com/licensedesk/licensing/model"
	"licensedesk.com/licensedesk/utils"
)

func TestGormStoreCreateSerial(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := mustCreate(t, store, "SER-1", "Editor", "")
	assert.Equal(t, model.StatusValid, created.Status)
	assert.False(t, created.Active)
	assert.Nil(t, created.DeviceID)

	_, err := store.CreateSerial(ctx, CreateInput{SerialNumber: "SER-1", ProgramName: utils.Ptr("Other")})
	assert.ErrorIs(t, err, ErrConflict)

	original, err := store.GetBySerial(ctx, "SER-1")
	require.NoError(t, err)
	assert.Equal(t, "Editor", *original.ProgramName)
}

func TestGormStoreGetUnknown(t *testing.T) {
	store := newTestStore(t)
	license, err := store.GetBySerial(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, license)
}

func TestGormStoreAtomicallyBind(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, store, "SER-1", "Editor", model.StatusValid)
	mustCreate(t, store, "SER-2", "Editor", model.StatusSuspended)

	bound, err := store.AtomicallyBind(ctx, "SER-1", "device-a", nil)
	require.NoError(t, err)
	require.NotNil(t, bound)
	assert.Equal(t, "device-a", *bound.DeviceID)
	assert.True(t, bound.Active)
	assert.NotNil(t, bound.ActivationDate)
	assertBindingConsistent(t, store, "SER-1")

	tests := []struct {
		name   string
		serial string
	}{
		{"already bound", "SER-1"},
		{"not valid", "SER-2"},
		{"unknown", "SER-3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.AtomicallyBind(ctx, tt.serial, "device-b", nil)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}

	current, err := store.GetBySerial(ctx, "SER-1")
	require.NoError(t, err)
	assert.Equal(t, "device-a", *current.DeviceID)
}

func TestGormStoreAtomicallyBindSetsProgram(t *testing.T) {
	store := newTestStore(t)
	mustCreate(t, store, "SER-1", "", model.StatusValid)

	bound, err := store.AtomicallyBind(context.Background(), "SER-1", "device-a", utils.Ptr("Editor"))
	require.NoError(t, err)
	require.NotNil(t, bound)
	assert.Equal(t, "Editor", *bound.ProgramName)
}

func TestGormStoreResetBinding(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, store, "SER-1", "Editor", model.StatusValid)
	_, err := store.AtomicallyBind(ctx, "SER-1", "device-a", nil)
	require.NoError(t, err)

	reset, err := store.ResetBinding(ctx, "SER-1")
	require.NoError(t, err)
	require.NotNil(t, reset)
	assert.Nil(t, reset.DeviceID)
	assert.False(t, reset.Active)
	assert.Nil(t, reset.ActivationDate)
	assertBindingConsistent(t, store, "SER-1")

	// resetting again is a no-op
	again, err := store.ResetBinding(ctx, "SER-1")
	require.NoError(t, err)
	assert.NotNil(t, again)

	missing, err := store.ResetBinding(ctx, "SER-9")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGormStoreUpdateAndDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, store, "SER-1", "Editor", model.StatusValid)

	expired := model.StatusExpired
	updated, err := store.UpdateFields(ctx, "SER-1", model.LicensePatch{Status: &expired, Notes: utils.Ptr("paid late")})
	require.NoError(t, err)
	assert.Equal(t, model.StatusExpired, updated.Status)
	assert.Equal(t, "paid late", *updated.Notes)
	assert.Equal(t, "Editor", *updated.ProgramName)

	missing, err := store.UpdateFields(ctx, "SER-9", model.LicensePatch{Status: &expired})
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := store.DeleteBySerial(ctx, "SER-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteBySerial(ctx, "SER-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGormStoreListAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	mustCreate(t, store, "C-3", "Viewer", model.StatusValid)
	mustCreate(t, store, "A-1", "Editor", model.StatusValid)
	mustCreate(t, store, "B-2", "Editor Pro", model.StatusExpired)
	_, err := store.AtomicallyBind(ctx, "C-3", "laptop-42", nil)
	require.NoError(t, err)

	serials := func(licenses []model.License) []string {
		return utils.Map(licenses, func(l model.License) string { return l.SerialNumber })
	}

	tests := []struct {
		name      string
		filter    ListFilter
		want      []string
		wantTotal int64
	}{
		{"all ordered", ListFilter{}, []string{"A-1", "B-2", "C-3"}, 3},
		{"by status", ListFilter{Status: model.StatusExpired}, []string{"B-2"}, 1},
		{"by program", ListFilter{Query: "editor"}, []string{"A-1", "B-2"}, 2},
		{"by device", ListFilter{Query: "LAPTOP"}, []string{"C-3"}, 1},
		{"status and query", ListFilter{Status: model.StatusValid, Query: "editor"}, []string{"A-1"}, 1},
		{"first page", ListFilter{Page: 1, Size: 2}, []string{"A-1", "B-2"}, 3},
		{"second page", ListFilter{Page: 2, Size: 2}, []string{"C-3"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			licenses, total, err := store.ListAll(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, serials(licenses))
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}
