package fastembed

import "errors"

// DefaultModel is the model used when none is configured.
const DefaultModel = "sentence-transformers/all-MiniLM-L6-v2"

// ErrClosed is returned by Embed after Close.
var ErrClosed = errors.New("fastembed: provider closed")
