package auditlog

import "context"

// Metadata describes the invocation that issued a provider call.
type Metadata struct {
	Command  string
	Args     string
	Provider string
}

type metadataKey struct{}

// WithMetadata attaches journal metadata to a context. Empty fields keep the
// value already attached, if any.
func WithMetadata(ctx context.Context, meta Metadata) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	existing, _ := ctx.Value(metadataKey{}).(Metadata)
	merged := Metadata{
		Command:  pick(meta.Command, existing.Command),
		Args:     pick(meta.Args, existing.Args),
		Provider: pick(meta.Provider, existing.Provider),
	}
	return context.WithValue(ctx, metadataKey{}, merged)
}

// MetadataFromContext returns journal metadata stored in the context.
func MetadataFromContext(ctx context.Context) Metadata {
	if ctx == nil {
		return Metadata{}
	}
	meta, _ := ctx.Value(metadataKey{}).(Metadata)
	return meta
}

// Stamp copies the context's metadata into entry fields that are still empty.
func Stamp(ctx context.Context, entry *Entry) {
	meta := MetadataFromContext(ctx)
	entry.Command = pick(entry.Command, meta.Command)
	entry.Args = pick(entry.Args, meta.Args)
	entry.Provider = pick(entry.Provider, meta.Provider)
}

func pick(next, fallback string) string {
	if next != "" {
		return next
	}
	return fallback
}
