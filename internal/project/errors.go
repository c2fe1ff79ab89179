package project

import "fmt"

// UnsupportedElementError means a parent has no way to accept a nested element.
type UnsupportedElementError struct {
	Parent string
	Child  string
}

func (e *UnsupportedElementError) Error() string {
	return fmt.Sprintf("%s doesn't support the nested %q element", e.Parent, e.Child)
}

// NotATaskError means an element resolved to something that cannot execute.
type NotATaskError struct {
	Name string
	Type string
}

func (e *NotATaskError) Error() string {
	return fmt.Sprintf("%s (%s) is not a task and cannot be performed", e.Name, e.Type)
}
