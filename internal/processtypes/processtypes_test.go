package processtypes

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListReturnsTableInOrder(t *testing.T) {
	p := NewProvider()

	got := p.List()

	require.Len(t, got, 2)
	assert.Equal(t, []Entry{
		{Code: "A", Description: "Add"},
		{Code: "U", Description: "Update"},
	}, got)
}

func TestListIsDeterministic(t *testing.T) {
	p := NewProvider()

	first := p.List()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, p.List())
	}
}

func TestListReturnsCopy(t *testing.T) {
	p := NewProvider()

	got := p.List()
	got[0].Code = "X"
	got[1].Description = "changed"

	assert.Equal(t, "A", p.List()[0].Code)
	assert.Equal(t, "Update", p.List()[1].Description)
}

func TestZeroValueProvider(t *testing.T) {
	var p Provider
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, []string{"A", "U"}, p.Codes())
}

func TestCodesAreNonEmptyAndDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for _, e := range NewProvider().List() {
		assert.NotEmpty(t, e.Code)
		assert.False(t, seen[e.Code], "duplicate code %q", e.Code)
		seen[e.Code] = true
	}
}

func TestLookup(t *testing.T) {
	p := NewProvider()

	tests := []struct {
		code     string
		wantDesc string
		wantOK   bool
	}{
		{"A", "Add", true},
		{"U", "Update", true},
		{"a", "", false},
		{"X", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			e, ok := p.Lookup(tt.code)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantDesc, e.Description)
		})
	}
}

func TestConcurrentReads(t *testing.T) {
	p := NewProvider()
	want := p.List()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				got := p.List()
				got[0].Code = "Z"
				if _, ok := p.Lookup(CodeUpdate); !ok {
					t.Error("lookup of update code failed")
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, want, p.List())
}

func TestValidate(t *testing.T) {
	t.Run("built-in table", func(t *testing.T) {
		require.NoError(t, Validate(table))
	})

	t.Run("empty", func(t *testing.T) {
		assert.ErrorIs(t, Validate(nil), ErrEmptyTable)
	})

	t.Run("blank code", func(t *testing.T) {
		err := Validate([]Entry{{Code: "A", Description: "Add"}, {Description: "Nothing"}})
		assert.ErrorIs(t, err, ErrEmptyCode)
	})

	t.Run("duplicate code", func(t *testing.T) {
		err := Validate([]Entry{{Code: "A"}, {Code: "U"}, {Code: "A"}})
		require.Error(t, err)

		var dup *DuplicateCodeError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "A", dup.Code)
		assert.Equal(t, 0, dup.First)
		assert.Equal(t, 2, dup.Again)
	})
}
