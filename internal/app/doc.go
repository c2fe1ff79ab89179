// Package app wires the registry, the reference project, the bridge and the
// script runner into one build run, decoupled from the command line.
package app
