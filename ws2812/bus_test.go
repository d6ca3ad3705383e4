package ws2812

import (
	"bytes"
	"context"
)

type op struct {
	read bool
	data []byte
}

// fakeBus records every transfer. failAt makes the n-th operation (1 based)
// return err.
type fakeBus struct {
	ops    []op
	failAt int
	err    error
}

func (f *fakeBus) do(read bool, p []byte) error {
	if f.failAt > 0 && len(f.ops)+1 == f.failAt {
		f.ops = append(f.ops, op{read: read})
		return f.err
	}
	f.ops = append(f.ops, op{read: read, data: bytes.Clone(p)})
	return nil
}

func (f *fakeBus) Write(ctx context.Context, p []byte) error {
	return f.do(false, p)
}

func (f *fakeBus) Read(ctx context.Context, p []byte) error {
	return f.do(true, p)
}

func (f *fakeBus) writes() [][]byte {
	var out [][]byte
	for _, o := range f.ops {
		if !o.read {
			out = append(out, o.data)
		}
	}
	return out
}

func (f *fakeBus) reads() int {
	n := 0
	for _, o := range f.ops {
		if o.read {
			n++
		}
	}
	return n
}
