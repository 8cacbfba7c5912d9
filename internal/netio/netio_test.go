package netio

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/csbwire/csbwire/internal/testutil/conntest"
)

func TestReadFullDeliversExactCount(t *testing.T) {
	client, server := conntest.Pair(t)

	go func() {
		_, _ = server.Write([]byte{1, 2, 3})
		time.Sleep(10 * time.Millisecond)
		_, _ = server.Write([]byte{4, 5, 6, 7, 8})
	}()

	buf := make([]byte, 8)
	if err := ReadFull(client, buf, 2*time.Second); err != nil {
		t.Fatalf("read full: %v", err)
	}
	if !bytes.Equal(buf, []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Fatalf("unexpected bytes: %v", buf)
	}
}

func TestReadFullTimeout(t *testing.T) {
	client, _ := conntest.Pair(t)

	buf := make([]byte, 4)
	err := ReadFull(client, buf, 50*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestReadFullPeerClosed(t *testing.T) {
	client, server := conntest.Pair(t)
	_ = server.Close()

	buf := make([]byte, 4)
	err := ReadFull(client, buf, time.Second)
	if !errors.Is(err, ErrPeerClosed) {
		t.Fatalf("expected ErrPeerClosed, got %v", err)
	}
}

func TestReadFullPeerClosedMidTransfer(t *testing.T) {
	client, server := conntest.Pair(t)

	go func() {
		_, _ = server.Write([]byte{1, 2, 3})
		_ = server.Close()
	}()

	buf := make([]byte, 8)
	err := ReadFull(client, buf, time.Second)
	if !errors.Is(err, ErrPeerClosed) {
		t.Fatalf("expected ErrPeerClosed, got %v", err)
	}
}

func TestWriteFullRoundTrip(t *testing.T) {
	client, server := conntest.Pair(t)

	payload := []byte("bounded write")
	done := make(chan error, 1)
	go func() {
		done <- WriteFull(client, payload, time.Second)
	}()

	buf := make([]byte, len(payload))
	if err := ReadFull(server, buf, time.Second); err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("write full: %v", err)
	}
	if !bytes.Equal(buf, payload) {
		t.Fatalf("unexpected bytes: %q", buf)
	}
}

func TestUntimedReadWaitsForData(t *testing.T) {
	client, server := conntest.Pair(t)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_, _ = server.Write([]byte{9, 9})
	}()

	buf := make([]byte, 2)
	if err := ReadFull(client, buf, 0); err != nil {
		t.Fatalf("untimed read: %v", err)
	}
}

func TestUntimedModeClearsArmedDeadline(t *testing.T) {
	client, server := conntest.Pair(t)

	buf := make([]byte, 1)
	if err := ReadFull(client, buf, 10*time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		_, _ = server.Write([]byte{1})
	}()
	if err := ReadFull(client, buf, 0); err != nil {
		t.Fatalf("read after clearing deadline: %v", err)
	}
}
