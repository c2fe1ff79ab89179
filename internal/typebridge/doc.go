/*
Package typebridge translates script values into the host's native Go types.

Host task objects are configured by name-keyed attributes, and each
attribute is strongly typed on the host side through a setter method
(SetDir(File), SetFork(bool), SetLevel(host.LogLevel), ...). Every attribute
write therefore goes through the same sequence:

 1. Find the setter for the attribute on the owner type (AttributeSetterType).
 2. Coerce the script value into the setter's parameter type (Coerce). Values
    that already are instances pass through untouched; anything else is
    constructed from the value.
 3. Invoke the setter (Set).

Types are resolved by name through a host.TypeTable, since Go has no
runtime lookup of types by name. Table is the stock implementation,
preloaded with the builtin primitive kinds.

Primitive conversions (string to int, number to string, string to bool, and
the range checks for narrow integer widths) are delegated to go-cty.
*/
package typebridge
