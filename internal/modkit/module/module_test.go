package module

import (
	"testing"

	phttp "narrativeradar/internal/platform/net/http"
	kit "narrativeradar/internal/platform/testkit"
)

type runner interface{ Run() string }

type runFn func() string

func (f runFn) Run() string { return f() }

type portSet struct {
	Runner runner
	other  string
}

type stubModule struct{ ports any }

func (s stubModule) MountRoutes(phttp.Router) {}
func (s stubModule) Ports() any               { return s.ports }
func (s stubModule) Name() string             { return "stub" }

func TestPortsOf(t *testing.T) {
	r := runFn(func() string { return "ran" })

	got, ok := PortsOf[runner](stubModule{ports: portSet{Runner: r}})
	if !ok || got.Run() != "ran" {
		t.Fatalf("struct field lookup failed")
	}
	if _, ok := PortsOf[runner](stubModule{ports: &portSet{Runner: r}}); !ok {
		t.Fatalf("pointer struct lookup failed")
	}
	if _, ok := PortsOf[runner](stubModule{ports: r}); !ok {
		t.Fatalf("direct lookup failed")
	}
	if _, ok := PortsOf[runner](stubModule{}); ok {
		t.Fatalf("nil ports should miss")
	}
	if _, ok := PortsOf[runner](stubModule{ports: (*portSet)(nil)}); ok {
		t.Fatalf("nil pointer ports should miss")
	}
	kit.MustPanic(t, func() { _ = MustPortsOf[runner](stubModule{ports: 3}) })
}

func TestRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	RegisterModule(stubModule{ports: portSet{other: "x"}})
	p, ok := PortsAs[portSet]("stub")
	if !ok || p.other != "x" {
		t.Fatalf("PortsAs = %+v, %v", p, ok)
	}
	if _, ok := PortsAs[int]("stub"); ok {
		t.Fatalf("wrong type should miss")
	}
	if _, ok := PortsAs[portSet]("missing"); ok {
		t.Fatalf("missing name should miss")
	}
}
