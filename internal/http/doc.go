// Package http provides HTTP handlers and middleware for the call routing
// administration API.
//
// The router exposes the following endpoints, all scoped to a tenant:
//   - POST /tenants/{tenantID}/packages: registers a routing package. Body:
//     {"name","timezone"}. Response: the `packageDTO` payload defined in
//     package_handler.go.
//   - GET /tenants/{tenantID}/packages: lists the tenant's packages.
//   - GET /tenants/{tenantID}/packages/{packageID}: returns the package with
//     its full profile/segment/choice tree.
//   - GET /tenants/{tenantID}/packages/{packageID}/routes: returns the legacy
//     weekly route rows produced by the last conversion.
//   - POST /tenants/{tenantID}/packages/{packageID}/timezone-conversions:
//     converts the package schedule into the requested timezone. Body:
//     {"timezone"}. On success the converted tree is persisted and returned;
//     unresolved exit references yield 422 with the conversion preview.
//   - GET /tenants/{tenantID}/packages/{packageID}/coverage: runs the coverage
//     checks and returns every finding.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
