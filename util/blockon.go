package util

import "context"

// BlockOn drives op to completion on the calling goroutine and returns its
// result. op runs with a context that is never cancelled, so it can only
// end by finishing or failing. There is no queue and nothing else runs on
// behalf of the caller while op is pending.
//
// BlockOn is meant for the edges of an API where a context-free call
// signature is required. It must not be called from within op.
func BlockOn(op func(ctx context.Context) error) error {
	return op(context.Background())
}
