package domain_test

import (
	"testing"
	"verifier/pkg/domain"

	"github.com/stretchr/testify/require"
)

func TestRecord_Get(t *testing.T) {
	r := domain.Record{{Name: "name", Value: "Ada"}, {Name: "email", Value: ""}}

	v, ok := r.Get("name")
	require.True(t, ok)
	require.Equal(t, "Ada", v)

	v, ok = r.Get("email")
	require.True(t, ok, "empty values are still present")
	require.Empty(t, v)

	_, ok = r.Get("phone")
	require.False(t, ok)

	var empty domain.Record
	_, ok = empty.Get("email")
	require.False(t, ok)
}

func TestRecord_WithAppendsAndKeepsReceiver(t *testing.T) {
	r := domain.Record{{Name: "name", Value: "Ada"}, {Name: "email", Value: "ada@example.com"}}

	out := r.With("status", "valid")
	require.Equal(t, []string{"name", "email", "status"}, out.Names())
	require.Len(t, r, 2, "receiver must not be modified")
}

func TestRecord_WithReplacesInPlace(t *testing.T) {
	r := domain.Record{{Name: "status", Value: "old"}, {Name: "email", Value: "ada@example.com"}}

	out := r.With("status", "invalid")
	require.Equal(t, []string{"status", "email"}, out.Names())
	v, _ := out.Get("status")
	require.Equal(t, "invalid", v)

	orig, _ := r.Get("status")
	require.Equal(t, "old", orig)
}

func TestAnnotatedRecord_Fields(t *testing.T) {
	a := domain.AnnotatedRecord{
		Record:      domain.Record{{Name: "email", Value: "x@y.org"}, {Name: "name", Value: "X"}},
		Disposition: domain.DispositionCatchAll,
	}

	f := a.Fields()
	require.Equal(t, []string{"email", "name", domain.StatusField}, f.Names())
	v, _ := f.Get(domain.StatusField)
	require.Equal(t, "catchall", v)
}

func TestRecord_DuplicateNamesLastWins(t *testing.T) {
	r := domain.Record{
		{Name: "email", Value: "first@ok.com"},
		{Name: "name", Value: "Ada"},
		{Name: "email", Value: "second@ok.org"},
	}

	v, ok := r.Get("email")
	require.True(t, ok)
	require.Equal(t, "second@ok.org", v)
	require.Equal(t, []string{"first@ok.com", "Ada", "second@ok.org"}, r.Values())
}

func TestRecord_WithSetsEveryDuplicate(t *testing.T) {
	r := domain.Record{{Name: "status", Value: "a"}, {Name: "email", Value: "x@y.com"}, {Name: "status", Value: "b"}}

	out := r.With("status", "valid")
	require.Equal(t, []string{"status", "email", "status"}, out.Names())
	require.Equal(t, []string{"valid", "x@y.com", "valid"}, out.Values())
}
