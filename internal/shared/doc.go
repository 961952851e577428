// Package shared holds cross-cutting utilities that belong to no single
// domain package.
//
// The testutil subpackage provides the buffered slog handler and the
// dataset fixtures (canonical record sets, fused tables, artifact
// writers) the package tests build on. Nothing here may import other
// internal packages except pkg/contracts/domain, keeping it free of
// dependency cycles.
package shared
