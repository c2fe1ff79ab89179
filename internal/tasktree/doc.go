/*
Package tasktree builds the host's in-memory shape of a task from a nested
description of its attributes and child elements.

A Spec keeps attributes and child groups apart, so "this key holds children"
is a property of the type rather than of the key. FromMap accepts the loose
map form used by scripts, where the empty key, all-whitespace keys and keys
starting with ChildMarker hold children:

	{"dir": "/tmp/x"}                                  one attribute
	{"": {"inner": [{"a": 1}, {"a": 2}]}}              two "inner" children

Builder.Build turns a Spec into a Node tree, mirroring every node into the
host's element tree and configuration wrappers as it goes. Sibling order is
preserved end to end because some host tasks are order-sensitive.
*/
package tasktree
