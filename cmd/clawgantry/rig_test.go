package main

import (
	"errors"
	"slices"
	"testing"
)

func TestHardware_Close(t *testing.T) {
	var order []string
	closer := func(name string, err error) func() error {
		return func() error {
			order = append(order, name)
			return err
		}
	}
	portErr := errors.New("port busy")
	h := &hardware{closers: []func() error{
		closer("board", portErr),
		closer("pins", nil),
	}}

	err := h.Close()
	if !errors.Is(err, portErr) {
		t.Errorf("Close error = %v, want %v", err, portErr)
	}
	if want := []string{"pins", "board"}; !slices.Equal(order, want) {
		t.Errorf("close order = %v, want %v", order, want)
	}
}

func TestHardware_FailKeepsCloseError(t *testing.T) {
	openErr := errors.New("servo 6 not found")
	closeErr := errors.New("board link lost")
	h := &hardware{closers: []func() error{
		func() error { return closeErr },
	}}

	err := h.fail(openErr)
	if !errors.Is(err, openErr) || !errors.Is(err, closeErr) {
		t.Errorf("fail error = %v, want both %v and %v", err, openErr, closeErr)
	}

	clean := &hardware{}
	if err := clean.fail(openErr); !errors.Is(err, openErr) {
		t.Errorf("fail error = %v, want %v", err, openErr)
	}
}
