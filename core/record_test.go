package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaceValidate(t *testing.T) {
	tests := []struct {
		name    string
		ns      Namespace
		wantErr bool
		errMsg  string
	}{
		{name: "valid", ns: Namespace{Category: "articles", Version: 3}},
		{name: "version zero", ns: Namespace{Category: "articles", Version: 0}},
		{name: "missing category", ns: Namespace{Version: 1}, wantErr: true, errMsg: "category is required"},
		{name: "slash in category", ns: Namespace{Category: "a/b", Version: 1}, wantErr: true, errMsg: "must not contain"},
		{name: "colon in category", ns: Namespace{Category: "a:b", Version: 1}, wantErr: true, errMsg: "must not contain"},
		{name: "negative version", ns: Namespace{Category: "a", Version: -1}, wantErr: true, errMsg: "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestNamespaceString(t *testing.T) {
	assert.Equal(t, "articles@3", Namespace{Category: "articles", Version: 3}.String())
}

func TestValidateName(t *testing.T) {
	require.NoError(t, ValidateName("_0.cfs"))
	require.Error(t, ValidateName(""))
	require.Error(t, ValidateName("dir/_0.cfs"))
}

func TestFilterMatches(t *testing.T) {
	ns := Namespace{Category: "articles", Version: 3}
	rec := &FileRecord{Category: "articles", Version: 3, Name: "_0.cfs"}

	assert.True(t, NamespaceFilter(ns).Matches(rec))
	assert.True(t, NameFilter(ns, "_0.cfs").Matches(rec))
	assert.False(t, NameFilter(ns, "segments.gen").Matches(rec))
	assert.False(t, NamespaceFilter(Namespace{Category: "articles", Version: 4}).Matches(rec))
	assert.False(t, NamespaceFilter(Namespace{Category: "news", Version: 3}).Matches(rec))
	assert.False(t, NamespaceFilter(ns).Matches(nil))
}

func TestFileRecordClone(t *testing.T) {
	var nilRec *FileRecord
	assert.Nil(t, nilRec.Clone())

	rec := &FileRecord{ID: "1", Category: "articles", Version: 3, Name: "a", Length: 10}
	c := rec.Clone()
	c.Name = "b"
	assert.Equal(t, "a", rec.Name)
	assert.Equal(t, Namespace{Category: "articles", Version: 3}, c.Namespace())
}

func TestTruncateTime(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.FixedZone("x", 3600))
	got := TruncateTime(ts)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 123000000, got.Nanosecond())
	assert.True(t, got.Equal(TimeFromMillis(ts.UnixMilli())))
}
