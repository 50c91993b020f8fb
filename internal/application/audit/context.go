package audit

import "context"

// RequestMeta datos de la petición que originó la acción auditada.
type RequestMeta struct {
	UserID    string
	IPAddress string
	UserAgent string
}

type requestMetaKey struct{}

// WithRequestMeta adjunta los metadatos de la petición al contexto.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFrom devuelve los metadatos adjuntos al contexto, si existen.
func RequestMetaFrom(ctx context.Context) (RequestMeta, bool) {
	meta, ok := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta, ok
}
