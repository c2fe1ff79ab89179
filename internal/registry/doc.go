// Package registry maps the element names used in build scripts to the Go
// types that implement them.
//
// Modules register their task and data types at startup. Registration of a
// name twice is a programmer error and panics; names bound at runtime by the
// taskdef task go through Define instead, which returns errors. Validate
// checks that every registered task type can actually execute.
package registry
