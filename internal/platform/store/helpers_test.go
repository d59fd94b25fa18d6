package store

import (
	"context"
	"errors"
	"testing"

	perr "narrativeradar/internal/platform/errors"
)

type fakeTag int64

func (f fakeTag) String() string      { return "UPDATE" }
func (f fakeTag) RowsAffected() int64 { return int64(f) }

type fakeRows struct {
	vals []string
	i    int
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.vals) }
func (r *fakeRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.vals[r.i-1]
	return nil
}
func (r *fakeRows) Err() error        { return nil }
func (r *fakeRows) Close()            {}
func (r *fakeRows) Columns() []string { return []string{"v"} }

type fakeQ struct {
	affected int64
	vals     []string
}

func (q fakeQ) Exec(context.Context, string, ...any) (CommandTag, error) {
	return fakeTag(q.affected), nil
}
func (q fakeQ) Query(context.Context, string, ...any) (Rows, error) {
	return &fakeRows{vals: q.vals}, nil
}
func (q fakeQ) QueryRow(context.Context, string, ...any) Row {
	return &fakeRows{vals: q.vals, i: 1}
}

func scanString(r Row) (string, error) {
	var s string
	err := r.Scan(&s)
	return s, err
}

func TestExecOne(t *testing.T) {
	if err := ExecOne(context.Background(), fakeQ{affected: 1}, "UPDATE"); err != nil {
		t.Fatalf("ExecOne: %v", err)
	}
	if err := ExecOne(context.Background(), fakeQ{affected: 0}, "UPDATE"); err == nil {
		t.Fatalf("zero rows should fail")
	}
}

func TestScalarOneMany(t *testing.T) {
	ctx := context.Background()
	q := fakeQ{vals: []string{"a", "b"}}

	v, err := Scalar[string](ctx, q, "SELECT")
	if err != nil || v != "a" {
		t.Fatalf("Scalar = %q, %v", v, err)
	}
	got, err := Many(ctx, q, scanString, "SELECT")
	if err != nil || len(got) != 2 || got[1] != "b" {
		t.Fatalf("Many = %v, %v", got, err)
	}
	one, err := One(ctx, q, scanString, "SELECT")
	if err != nil || one != "a" {
		t.Fatalf("One = %q, %v", one, err)
	}
	_, err = One(ctx, fakeQ{}, scanString, "SELECT")
	if !errors.Is(err, perr.ErrNotFound) {
		t.Fatalf("One on empty = %v", err)
	}
}
