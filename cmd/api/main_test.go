package main

import (
	"errors"
	"testing"

	"go.uber.org/multierr"
)

func TestCloseAllReleasesInReverseOrder(t *testing.T) {
	var order []string
	closers := []func() error{
		func() error { order = append(order, "db"); return nil },
		func() error { order = append(order, "redis"); return nil },
	}

	if err := closeAll(closers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "redis" || order[1] != "db" {
		t.Fatalf("unexpected close order %v", order)
	}
}

func TestCloseAllCombinesErrors(t *testing.T) {
	errDB := errors.New("db close")
	errRedis := errors.New("redis close")
	err := closeAll([]func() error{
		func() error { return errDB },
		func() error { return errRedis },
	})

	if got := multierr.Errors(err); len(got) != 2 {
		t.Fatalf("expected two errors, got %v", got)
	}
	if !errors.Is(err, errDB) || !errors.Is(err, errRedis) {
		t.Fatalf("expected both causes, got %v", err)
	}
}
