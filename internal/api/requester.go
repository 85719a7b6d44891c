package api

import "context"

// Requester is the request surface resource helpers depend on.
//
// Execute is used for single-entity and unpaginated endpoints.
// ExecuteWithHeaders is used by paginated list endpoints so the response's
// pagination header can be reconciled with the body.
//
// Tests can satisfy it with a small fake instead of an HTTP server:
//
//	type fakeRequester struct{ body any; header http.Header }
//	func (f fakeRequester) Execute(context.Context, RequestSpec) (*RawResult, error) { ... }
type Requester interface {
	Execute(ctx context.Context, spec RequestSpec) (*RawResult, error)
	ExecuteWithHeaders(ctx context.Context, spec RequestSpec) (*RawResult, error)
}
