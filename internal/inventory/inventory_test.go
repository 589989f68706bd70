package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckOutAndReturn(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 2, Available: 2}, c)

	c, err = CheckOut(c)
	require.NoError(t, err)
	c, err = CheckOut(c)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Available)
	assert.Equal(t, 2, c.CheckedOut())

	_, err = CheckOut(c)
	assert.ErrorIs(t, err, ErrNoCopiesAvailable)

	c, err = Return(c, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Available)
	assert.NoError(t, c.Validate())
}

func TestReturn(t *testing.T) {
	tests := []struct {
		name    string
		in      Counts
		lent    int
		want    Counts
		wantErr error
	}{
		{
			name: "consistent ledger adds one",
			in:   Counts{Total: 3, Available: 1},
			lent: 2,
			want: Counts{Total: 3, Available: 2},
		},
		{
			name: "after shrink stays at zero while loans exceed total",
			in:   Counts{Total: 1, Available: 0},
			lent: 2,
			want: Counts{Total: 1, Available: 0},
		},
		{
			name: "last loan after shrink frees the copy",
			in:   Counts{Total: 1, Available: 0},
			lent: 1,
			want: Counts{Total: 1, Available: 1},
		},
		{
			name: "stale available is corrected",
			in:   Counts{Total: 3, Available: 3},
			lent: 1,
			want: Counts{Total: 3, Available: 3},
		},
		{
			name:    "no outstanding loan",
			in:      Counts{Total: 3, Available: 3},
			lent:    0,
			want:    Counts{Total: 3, Available: 3},
			wantErr: ErrOverReturn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Return(tt.in, tt.lent)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.NoError(t, got.Validate())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShrinkReturnAllThenRegrow(t *testing.T) {
	c := Counts{Total: 3, Available: 1}

	c, err := Resize(c, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 1, Available: 0}, c)

	c, err = Return(c, 2)
	require.NoError(t, err)
	c, err = Return(c, 1)
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 1, Available: 1}, c)

	c, err = Resize(c, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, Counts{Total: 3, Available: 3}, c)
}

func TestNewRejectsEmptyBook(t *testing.T) {
	_, err := New(0)
	assert.ErrorIs(t, err, ErrInvalidTotal)
}

func TestResize(t *testing.T) {
	tests := []struct {
		name     string
		in       Counts
		newTotal int
		lent     int
		want     Counts
		wantErr  error
	}{
		{
			name:     "shrink below checked out floors at zero",
			in:       Counts{Total: 5, Available: 2},
			newTotal: 2,
			lent:     3,
			want:     Counts{Total: 2, Available: 0},
		},
		{
			name:     "grow keeps lent copies lent",
			in:       Counts{Total: 5, Available: 2},
			newTotal: 8,
			lent:     3,
			want:     Counts{Total: 8, Available: 5},
		},
		{
			name:     "same total",
			in:       Counts{Total: 3, Available: 1},
			newTotal: 3,
			lent:     2,
			want:     Counts{Total: 3, Available: 1},
		},
		{
			name:     "regrow after shrink counts real loans",
			in:       Counts{Total: 1, Available: 0},
			newTotal: 3,
			lent:     2,
			want:     Counts{Total: 3, Available: 1},
		},
		{
			name:     "zero rejected",
			in:       Counts{Total: 3, Available: 3},
			newTotal: 0,
			want:     Counts{Total: 3, Available: 3},
			wantErr:  ErrInvalidTotal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resize(tt.in, tt.newTotal, tt.lent)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Counts{Total: 1, Available: 0}.Validate())
	assert.Error(t, Counts{Total: 1, Available: 2}.Validate())
	assert.Error(t, Counts{Total: 1, Available: -1}.Validate())
	assert.ErrorIs(t, Counts{Total: 0, Available: 0}.Validate(), ErrInvalidTotal)
}
