package cts

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/carbocation/pfx"
)

// gsReaderAt decorates a Google Storage object handle with io.ReaderAt, so
// .cts files can be consumed straight from a bucket. Derived from the range
// reader approach in
// https://github.com/googleapis/google-cloud-go/issues/1124
type gsReaderAt struct {
	object  *storage.ObjectHandle
	context context.Context
	size    int64
	client  *storage.Client
}

// openGS parses a gs://bucket/object path and prepares a ReaderAt over it.
func openGS(path string) (*gsReaderAt, error) {
	trimmed := strings.TrimPrefix(path, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, pfx.Err(fmt.Errorf("%q is not of the form gs://bucket/object", path))
	}

	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, pfx.Err(err)
	}

	object := client.Bucket(parts[0]).Object(parts[1])
	attrs, err := object.Attrs(ctx)
	if err != nil {
		client.Close()
		return nil, pfx.Err(err)
	}

	return &gsReaderAt{
		object:  object,
		context: ctx,
		size:    attrs.Size,
		client:  client,
	}, nil
}

// ReadAt satisfies io.ReaderAt. Note that this is dependent upon making p a
// buffer of the desired length to be read by NewRangeReader.
func (g *gsReaderAt) ReadAt(p []byte, offset int64) (int, error) {
	if offset >= g.size {
		return 0, io.EOF
	}

	want := int64(len(p))
	short := false
	if offset+want > g.size {
		want = g.size - offset
		short = true
	}

	rdr, err := g.object.NewRangeReader(g.context, offset, want)
	if err != nil {
		return 0, pfx.Err(err)
	}
	defer rdr.Close()

	n, err := io.ReadFull(rdr, p[:want])
	if err != nil {
		return n, pfx.Err(err)
	}
	if short {
		return n, io.EOF
	}

	return n, nil
}

// Close satisfies io.Closer.
func (g *gsReaderAt) Close() error {
	return g.client.Close()
}
