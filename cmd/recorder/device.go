package main

import (
	"fmt"
	"os"
	"sync"
)

// fileDevice is a capture device backed by a pre-recorded audio file. It
// delivers the file contents in fixed-size fragments the way a microphone
// recorder emits timeslices, which keeps the session controller exercised
// exactly as it would be against real hardware.
type fileDevice struct {
	path         string
	fragmentSize int

	mu       sync.Mutex
	data     []byte
	released bool
}

const defaultFragmentSize = 32 * 1024

func openFileDevice(path string) (*fileDevice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open audio source %s: %w", path, err)
	}

	return &fileDevice{
		path:         path,
		fragmentSize: defaultFragmentSize,
		data:         data,
	}, nil
}

// Start delivers all fragments synchronously; the real flush happens on
// Stop for a hardware device, but a file source has everything up front.
func (d *fileDevice) Start(onFragment func(data []byte)) error {
	d.mu.Lock()
	data := d.data
	released := d.released
	d.mu.Unlock()

	if released {
		return fmt.Errorf("device for %s already released", d.path)
	}

	for len(data) > 0 {
		n := d.fragmentSize
		if n > len(data) {
			n = len(data)
		}
		onFragment(data[:n])
		data = data[n:]
	}

	return nil
}

func (d *fileDevice) Stop() error {
	return nil
}

func (d *fileDevice) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.released = true
	d.data = nil
}
