// Package script loads HCL build scripts and runs them through the bridge.
//
// Top-level blocks are statements, run in file order:
//
//	property "out" { value = "target" }
//
//	taskdef "stamp" { type = "tasks.Stamp" }
//
//	task "mkdir" { dir = "$${out}/classes" }
//
//	task "copy" {
//	  todir = prop("out")
//	  fileset {
//	    dir      = "src"
//	    includes = ["**/*.go", "**/*.tmpl"]
//	  }
//	}
//
//	chain {
//	  task "delete" { dir = "build" }
//	  task "mkdir"  { dir = "build" }
//	}
//
//	echo { message = format("built %s", param.version) }
//
// Inside a task, attributes are task attributes and nested blocks are child
// elements. An attribute holding an object, or a list of objects, is a child
// group named after the attribute. List values of primitives are joined
// with commas. Null values are omitted. A single label on a nested block
// becomes its name attribute.
//
// Any statement may carry when = <bool>; it is skipped when false.
// Expressions see param.<name> from the command line and the functions
// prop, env, join, upper, lower, format, concat, coalesce and trimspace.
// Statements are evaluated just before they run, so prop sees properties
// defined by earlier statements. A task attribute may also hold $${name},
// which the host expands from its properties when the task is configured.
package script
